package recommend

import "errors"

// Errors collaborators wrap so the orchestrator can classify failures.
var (
	// ErrConfig marks missing or placeholder credentials. Detected before any
	// network call.
	ErrConfig = errors.New("not configured")

	// ErrParse marks a structured payload that could not be decoded.
	ErrParse = errors.New("unparseable response")

	// ErrEmptyResponse marks a response with no usable content.
	ErrEmptyResponse = errors.New("empty response")

	// ErrNoSongs is reported when none of the suggested songs could be found.
	ErrNoSongs = errors.New("no songs found")
)

// Kind classifies an orchestrator failure.
type Kind string

const (
	KindNone      Kind = ""
	KindTransport Kind = "transport"
	KindEmpty     Kind = "empty"
	KindParse     Kind = "parse"
	KindConfig    Kind = "config"
	KindNoSongs   Kind = "no_songs"
	KindPartial   Kind = "partial"
)

// Soft reports whether the kind is informational and fallback content is shown.
func (k Kind) Soft() bool {
	return k == KindEmpty || k == KindPartial
}

// Error is a classified failure of one orchestrator operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify maps a collaborator error onto a Kind. Unrecognised errors are
// treated as transport failures.
func Classify(err error) Kind {
	var e *Error
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &e):
		return e.Kind
	case errors.Is(err, ErrConfig):
		return KindConfig
	case errors.Is(err, ErrParse), errors.Is(err, ErrEmptyResponse):
		return KindParse
	case errors.Is(err, ErrNoSongs):
		return KindNoSongs
	default:
		return KindTransport
	}
}

func newError(op string, err error) *Error {
	return &Error{Kind: Classify(err), Op: op, Err: err}
}
