package recommend

// State is the observable output of an Orchestrator. Every field is replaced
// as a whole; snapshots returned to callers are deep copies.
type State struct {
	IsLoading       bool     `json:"isLoading"`
	ErrorMessage    string   `json:"errorMessage,omitempty"`
	ErrorKind       Kind     `json:"errorKind,omitempty"`
	Recommendations []Song   `json:"recommendations"`
	TrendingSongs   []Song   `json:"trendingSongs"`
	SearchResults   []Song   `json:"searchResults"`
	SearchError     string   `json:"searchError,omitempty"`
	AISummary       string   `json:"aiSummary,omitempty"`
	NowPlaying      *Song    `json:"nowPlaying,omitempty"`
	MissingSongs    []string `json:"missingSongs"`
	Version         uint64   `json:"version"`
}

func (s State) clone() State {
	out := s
	out.Recommendations = cloneSongs(s.Recommendations)
	out.TrendingSongs = cloneSongs(s.TrendingSongs)
	out.SearchResults = cloneSongs(s.SearchResults)
	out.MissingSongs = append([]string{}, s.MissingSongs...)
	if s.NowPlaying != nil {
		np := s.NowPlaying.clone()
		out.NowPlaying = &np
	}
	return out
}

func (s *State) setError(e *Error) {
	s.ErrorKind = e.Kind
	s.ErrorMessage = e.Error()
}

func (s *State) setMessage(kind Kind, msg string) {
	s.ErrorKind = kind
	s.ErrorMessage = msg
}

func (s *State) clearError() {
	s.ErrorKind = KindNone
	s.ErrorMessage = ""
}
