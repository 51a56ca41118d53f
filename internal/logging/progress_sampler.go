package logging

import (
	"math"
	"strings"
)

// ProgressSampler thins downloader progress to one line per percent step.
// yt-dlp restarts its counter for every format it fetches, so a drop back
// below the last emitted step counts as a new part and is logged.
type ProgressSampler struct {
	step  float64
	phase string
	last  int
	parts int
}

// NewProgressSampler emits whenever percent enters a new step (default 10).
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 {
		step = 10
	}
	return &ProgressSampler{step: step, last: -1}
}

// ShouldLog reports whether a progress line is worth logging. A negative
// percent means unknown and only a phase change can trigger it.
func (s *ProgressSampler) ShouldLog(percent float64, phase string) bool {
	if s == nil {
		return true
	}
	emit := false
	if phase = strings.TrimSpace(phase); phase != "" && phase != s.phase {
		s.phase, s.last, s.parts = phase, -1, 0
		emit = true
	}
	if percent < 0 {
		return emit
	}
	bucket := int(math.Min(percent, 100) / s.step)
	switch {
	case s.last < 0 || bucket > s.last:
		emit = true
	case bucket < s.last:
		s.parts++
		emit = true
	default:
		return emit
	}
	if s.parts == 0 && s.last < 0 {
		s.parts = 1
	}
	s.last = bucket
	return emit
}

// Parts returns how many download parts have been seen in the current phase.
func (s *ProgressSampler) Parts() int {
	if s == nil {
		return 0
	}
	return s.parts
}
