package ai

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/fake"

	"github.com/justestif/moodtune/internal/recommend"
)

// recordingModel captures the request and answers with a fixed reply.
type recordingModel struct {
	reply    *llms.ContentResponse
	err      error
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (m *recordingModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, opt := range options {
		opt(&m.opts)
	}
	return m.reply, m.err
}

func (m *recordingModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func textOf(mc llms.MessageContent) string {
	var b strings.Builder
	for _, p := range mc.Parts {
		if tc, ok := p.(llms.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

const validReply = `{"summary": "A bright day.", "suggestedSongs": ["Here Comes the Sun - The Beatles", "Walking on Sunshine - Katrina and the Waves", "Good as Hell - Lizzo"]}`

func TestClient_Recommend(t *testing.T) {
	c := NewWithModel(fake.NewFakeLLM([]string{"```json\n" + validReply + "\n```"}))

	got, err := c.Recommend(context.Background(), recommend.UserData{MoodScore: 80})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	want := recommend.Suggestion{
		Summary: "A bright day.",
		Songs: []string{
			"Here Comes the Sun - The Beatles",
			"Walking on Sunshine - Katrina and the Waves",
			"Good as Hell - Lizzo",
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Recommend() = %+v, want %+v", got, want)
	}
}

func TestClient_RecommendPrompt(t *testing.T) {
	m := &recordingModel{reply: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: validReply}},
	}}
	c := NewWithModel(m)

	data := recommend.UserData{
		MoodScore:    72,
		Keywords:     []string{"Hiking in the forest", "Reading a book"},
		Lyric:        "We are children unafraid of this world",
		Weather:      "Sunny, 24°C",
		MatchMood:    true,
		DominantMood: "relaxed",
	}
	if _, err := c.Recommend(context.Background(), data); err != nil {
		t.Fatal(err)
	}

	if len(m.messages) != 2 {
		t.Fatalf("sent %d messages, want 2", len(m.messages))
	}
	if m.messages[0].Role != llms.ChatMessageTypeSystem || m.messages[1].Role != llms.ChatMessageTypeHuman {
		t.Errorf("roles = %s, %s", m.messages[0].Role, m.messages[1].Role)
	}
	if !strings.Contains(textOf(m.messages[0]), "suggestedSongs") {
		t.Error("system prompt does not describe the response shape")
	}

	user := textOf(m.messages[1])
	for _, want := range []string{
		"Dominant mood: relaxed",
		"Mood score: 72",
		"Hiking in the forest, Reading a book",
		"We are children unafraid of this world",
		"Sunny, 24°C",
		"match the relaxed mood",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, user)
		}
	}

	if m.opts.Temperature != temperature || m.opts.MaxTokens != DefaultMaxTokens {
		t.Errorf("call options temperature=%v max_tokens=%d", m.opts.Temperature, m.opts.MaxTokens)
	}
}

func TestClient_RecommendHopefulPrompt(t *testing.T) {
	m := &recordingModel{reply: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: validReply}},
	}}
	if _, err := NewWithModel(m).Recommend(context.Background(), recommend.UserData{MoodScore: 20}); err != nil {
		t.Fatal(err)
	}
	user := textOf(m.messages[1])
	if strings.Contains(user, "Dominant mood") ||
		!strings.Contains(user, "stay true to the current mood") ||
		!strings.Contains(user, "do not counter it") {
		t.Errorf("unexpected prompt:\n%s", user)
	}
}

func TestClient_RecommendErrors(t *testing.T) {
	transport := errors.New("connection refused")
	tests := []struct {
		name  string
		model llms.Model
		want  error
		kind  recommend.Kind
	}{
		{"bad json", fake.NewFakeLLM([]string{"Sure! Here are some songs."}), ErrParse, recommend.KindParse},
		{"blank", fake.NewFakeLLM([]string{"   "}), ErrEmptyResponse, recommend.KindParse},
		{"no songs", fake.NewFakeLLM([]string{`{"summary": "hm", "suggestedSongs": []}`}), ErrEmptyResponse, recommend.KindParse},
		{"no choices", &recordingModel{reply: &llms.ContentResponse{}}, ErrEmptyResponse, recommend.KindParse},
		{"transport", &recordingModel{err: transport}, transport, recommend.KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWithModel(tt.model).Recommend(context.Background(), recommend.UserData{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if got := recommend.Classify(err); got != tt.kind {
				t.Errorf("Classify() = %s, want %s", got, tt.kind)
			}
		})
	}
}

func TestNew_MissingKey(t *testing.T) {
	for _, key := range []string{"", "  ", "your_openai_api_key", "<key>"} {
		c, err := New(Config{APIKey: key})
		if err != nil {
			t.Fatalf("New(%q) error = %v", key, err)
		}
		if c.Configured() {
			t.Errorf("New(%q) is configured", key)
		}
		_, err = c.Recommend(context.Background(), recommend.UserData{})
		if !errors.Is(err, ErrMissingAPIKey) || recommend.Classify(err) != recommend.KindConfig {
			t.Errorf("Recommend() with key %q error = %v, want config error", key, err)
		}
	}
}

func TestNew_WithKey(t *testing.T) {
	c, err := New(Config{APIKey: "sk-test", BaseURL: "http://127.0.0.1:1/v1"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !c.Configured() {
		t.Error("Configured() = false with a key")
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"single line", "```{\"a\":1}```", `{"a":1}`},
		{"padded", "\n  ```json\n{\"a\":1}```  \n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseSuggestion_DropsBlankSongs(t *testing.T) {
	s, err := ParseSuggestion(`{"summary": " ok ", "suggestedSongs": ["A - B", " ", ""]}`)
	if err != nil {
		t.Fatal(err)
	}
	if s.Summary != "ok" || !reflect.DeepEqual(s.Songs, []string{"A - B"}) {
		t.Errorf("ParseSuggestion() = %+v", s)
	}
}
