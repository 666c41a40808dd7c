package schedule

import (
	"fmt"
	"sort"
)

// Window is one proposed time window of a single day: a start in minutes
// since midnight and a duration in minutes.
type Window struct {
	StartMin    int
	DurationMin int
}

// Conflict describes one detected pair of intersecting windows.
type Conflict struct {
	FirstStart  string `json:"first_start"`
	SecondStart string `json:"second_start"`
	DurationMin int    `json:"duration_min"`
	Message     string `json:"message"`
}

// Result of an overlap validation run.
type Result struct {
	Valid     bool       `json:"valid"`
	Conflicts []Conflict `json:"conflicts,omitempty"`
}

// ParseClock converts a "HH:MM" string into minutes since midnight.
func ParseClock(clock string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(clock, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", clock, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q out of range", clock)
	}
	return h*60 + m, nil
}

// FormatClock converts minutes since midnight into "HH:MM".
func FormatClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// CheckOverlaps validates a batch of windows proposed for a single day.
//
// Windows are sorted by start time and each adjacent pair is checked for
// intersection. Only adjacent pairs are compared: when one long window covers
// two later non-overlapping windows, only the first collision is reported.
// That matches the established mentor-calendar behavior and callers rely on
// the first conflict being enough to reject the batch.
func CheckOverlaps(windows []Window) Result {
	if len(windows) <= 1 {
		return Result{Valid: true}
	}

	sorted := make([]Window, len(windows))
	copy(sorted, windows)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartMin < sorted[j].StartMin
	})

	var conflicts []Conflict
	for i := 1; i < len(sorted); i++ {
		prev, next := sorted[i-1], sorted[i]
		if prev.StartMin+prev.DurationMin > next.StartMin {
			conflicts = append(conflicts, Conflict{
				FirstStart:  FormatClock(prev.StartMin),
				SecondStart: FormatClock(next.StartMin),
				DurationMin: prev.DurationMin,
				Message: fmt.Sprintf(
					"slot at %s (%d min) overlaps the slot at %s",
					FormatClock(prev.StartMin), prev.DurationMin, FormatClock(next.StartMin),
				),
			})
		}
	}

	return Result{Valid: len(conflicts) == 0, Conflicts: conflicts}
}
