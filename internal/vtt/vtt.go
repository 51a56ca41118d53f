package vtt

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Header is the first line of every WebVTT document.
const Header = "WEBVTT"

const timingArrow = "-->"

var cueIndexRe = regexp.MustCompile(`^\d+$`)

// Cue is one timed caption entry.
type Cue struct {
	ID    string  `json:"id"`
	Start float64 `json:"start_seconds"`
	End   float64 `json:"end_seconds"`
	Text  string  `json:"text"`
}

// Serialize renders cues as a WebVTT document.
func Serialize(cues []Cue) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n\n")
	for _, cue := range cues {
		b.WriteString(cue.ID)
		b.WriteByte('\n')
		b.WriteString(FormatTimestamp(cue.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(cue.End))
		b.WriteByte('\n')
		b.WriteString(cue.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// Parse extracts cues from WebVTT text. IDs are assigned sequentially from "0".
func Parse(text string) []Cue {
	var (
		cues []Cue
		open *Cue
	)
	closeCue := func() {
		if open != nil && open.Text != "" {
			open.ID = strconv.Itoa(len(cues))
			cues = append(cues, *open)
		}
		open = nil
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			closeCue()
			continue
		}
		if strings.HasPrefix(line, Header) && len(cues) == 0 && open == nil {
			continue
		}
		if strings.Contains(line, timingArrow) {
			closeCue()
			start, end, ok := parseTiming(line)
			if ok {
				open = &Cue{Start: start, End: end}
			}
			continue
		}
		if open == nil || cueIndexRe.MatchString(line) {
			continue
		}
		if open.Text == "" {
			open.Text = line
		} else {
			open.Text += " " + line
		}
	}
	closeCue()
	return cues
}

// ReadFile parses the WebVTT file at path.
func ReadFile(path string) ([]Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vtt: %w", err)
	}
	return Parse(string(data)), nil
}

// WriteFile serializes cues to path.
func WriteFile(path string, cues []Cue) error {
	if err := os.WriteFile(path, []byte(Serialize(cues)), 0o644); err != nil {
		return fmt.Errorf("write vtt: %w", err)
	}
	return nil
}

// FormatTimestamp renders seconds as HH:MM:SS.mmm. Fractional milliseconds are
// truncated; values within float error of a millisecond boundary land on it.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Floor(seconds*1000 + 1e-6))
	ms := total % 1000
	s := (total / 1000) % 60
	m := (total / 60000) % 60
	h := total / 3600000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// ParseTimestamp converts HH:MM:SS.mmm (or MM:SS.mmm) to seconds, keeping the
// fractional seconds as written. A comma decimal separator is accepted for
// SRT-style input.
func ParseTimestamp(value string) (float64, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if len(parts) == 2 {
		parts = append([]string{"0"}, parts...)
	}
	hours, errH := strconv.Atoi(parts[0])
	minutes, errM := strconv.Atoi(parts[1])
	secs, errS := strconv.ParseFloat(parts[2], 64)
	if errH != nil || errM != nil || errS != nil || hours < 0 || minutes < 0 || secs < 0 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60) + secs, nil
}

func parseTiming(line string) (float64, float64, bool) {
	left, right, found := strings.Cut(line, timingArrow)
	if !found {
		return 0, 0, false
	}
	fields := strings.Fields(right)
	if len(fields) == 0 {
		return 0, 0, false
	}
	start, err := ParseTimestamp(left)
	if err != nil {
		return 0, 0, false
	}
	end, err := ParseTimestamp(fields[0])
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}
