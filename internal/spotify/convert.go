package spotify

import (
	"github.com/zmb3/spotify/v2"

	"github.com/justestif/moodtune/internal/recommend"
)

func convertFullTrack(t spotify.FullTrack) recommend.Song {
	s := convertSimpleTrack(t.SimpleTrack)
	s.ImageURL = firstImage(t.Album.Images)
	return s
}

// convertSimpleTrack maps a track onto a Song. The album cover and preview
// are optional.
func convertSimpleTrack(t spotify.SimpleTrack) recommend.Song {
	return recommend.Song{
		ID:         t.ID.String(),
		Title:      t.Name,
		Artists:    artistNames(t.Artists),
		ImageURL:   firstImage(t.Album.Images),
		URI:        string(t.URI),
		PreviewURL: t.PreviewURL,
	}
}

// convertAlbum maps a new release onto a Song. Albums have no preview.
func convertAlbum(a spotify.SimpleAlbum) recommend.Song {
	return recommend.Song{
		ID:       a.ID.String(),
		Title:    a.Name,
		Artists:  artistNames(a.Artists),
		ImageURL: firstImage(a.Images),
		URI:      string(a.URI),
	}
}

func artistNames(artists []spotify.SimpleArtist) []string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return names
}

func firstImage(images []spotify.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
