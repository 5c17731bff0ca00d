package recommend

import "strings"

// Song is a playable track as shown to the user.
type Song struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Artists    []string `json:"artists"`
	ImageURL   string   `json:"imageUrl,omitempty"`
	URI        string   `json:"uri,omitempty"`
	PreviewURL string   `json:"previewUrl,omitempty"`
}

// Artist returns the artists joined for display.
func (s Song) Artist() string {
	return strings.Join(s.Artists, ", ")
}

func (s Song) clone() Song {
	s.Artists = append([]string(nil), s.Artists...)
	return s
}

func cloneSongs(songs []Song) []Song {
	out := make([]Song, len(songs))
	for i, s := range songs {
		out[i] = s.clone()
	}
	return out
}

// defaultSongs is shown when every upstream source has failed and the user
// would otherwise be left with nothing.
var defaultSongs = []Song{
	{ID: "default-1", Title: "Here Comes the Sun", Artists: []string{"The Beatles"}},
	{ID: "default-2", Title: "Blinding Lights", Artists: []string{"The Weeknd"}},
	{ID: "default-3", Title: "Weightless", Artists: []string{"Marconi Union"}},
	{ID: "default-4", Title: "Someone Like You", Artists: []string{"Adele"}},
	{ID: "default-5", Title: "Uptown Funk", Artists: []string{"Mark Ronson", "Bruno Mars"}},
	{ID: "default-6", Title: "Holocene", Artists: []string{"Bon Iver"}},
	{ID: "default-7", Title: "Mr. Brightside", Artists: []string{"The Killers"}},
	{ID: "default-8", Title: "Clair de Lune", Artists: []string{"Claude Debussy"}},
}

// DefaultSongs returns a copy of the built-in fallback list.
func DefaultSongs() []Song {
	return cloneSongs(defaultSongs)
}

// SearchQuery turns a "Title - Artist" suggestion into a field-scoped search
// query. Strings without a separator are searched as-is.
func SearchQuery(suggestion string) string {
	s := strings.TrimSpace(suggestion)
	title, artist, ok := strings.Cut(s, " - ")
	if !ok {
		return s
	}
	return "track:" + strings.TrimSpace(title) + " artist:" + strings.TrimSpace(artist)
}
