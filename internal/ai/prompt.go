package ai

import (
	"fmt"
	"strings"

	"github.com/justestif/moodtune/internal/recommend"
)

const systemPrompt = `You are a music curator. You recommend real, existing songs that fit a listener's mood.
Reply with JSON only, no prose and no code fences, in exactly this shape:
{"summary": "<one or two sentences about the listener's mood>", "suggestedSongs": ["Song Title - Artist", ...]}
Suggest between 3 and 5 songs. Every entry must be "Song Title - Artist".`

// userPrompt describes the listener. The dominant mood, when known, is
// stated ahead of the raw score.
func userPrompt(d recommend.UserData) string {
	var b strings.Builder

	if d.DominantMood != "" {
		fmt.Fprintf(&b, "Dominant mood: %s.\n", d.DominantMood)
	}
	fmt.Fprintf(&b, "Mood score: %.0f out of 100 (0 is very sad, 100 is very happy).\n", d.MoodScore)

	if len(d.Keywords) > 0 {
		fmt.Fprintf(&b, "Recent activities: %s.\n", strings.Join(d.Keywords, ", "))
	}
	if d.Lyric != "" {
		fmt.Fprintf(&b, "A lyric that resonates with them: %q.\n", d.Lyric)
	}
	if d.Weather != "" {
		fmt.Fprintf(&b, "Current weather: %s.\n", d.Weather)
	}

	mood := d.DominantMood
	if mood == "" {
		mood = "current"
	}
	if d.MatchMood {
		fmt.Fprintf(&b, "Pick songs that match the %s mood. Do not try to change it.\n", mood)
	} else {
		fmt.Fprintf(&b, "Pick songs that stay true to the %s mood and do not counter it. Within that mood, lean toward warmer, hopeful songs.\n", mood)
	}
	return b.String()
}
