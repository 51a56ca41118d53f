package subtitles

import (
	"math"
	"strconv"

	"clipper/internal/vtt"
)

// PlaceholderCues covers [0, duration] with cues every cadence seconds. The
// last cue ends exactly at duration. Each cue id is its start offset and its
// text is texts[pick(len(texts))].
func PlaceholderCues(duration, cadence float64, texts []string, pick func(n int) int) []vtt.Cue {
	if duration <= 0 || cadence <= 0 || len(texts) == 0 {
		return nil
	}
	count := int(math.Ceil(duration / cadence))
	cues := make([]vtt.Cue, 0, count)
	for i := 0; i < count; i++ {
		start := float64(i) * cadence
		end := math.Min(start+cadence, duration)
		idx := 0
		if pick != nil {
			idx = pick(len(texts))
		}
		if idx < 0 || idx >= len(texts) {
			idx = 0
		}
		cues = append(cues, vtt.Cue{
			ID:    strconv.FormatFloat(start, 'f', -1, 64),
			Start: start,
			End:   end,
			Text:  texts[idx],
		})
	}
	return cues
}
