package availability

import "time"

// Interval is a half-open [Start, End) time range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Slots returns candidate start times within [windowStart, windowEnd) where a
// booking of length duration would not overlap any busy interval. A slot is
// emitted every step starting at windowStart and kept only when the whole
// booking fits inside the window and the start is strictly after now.
//
// A closed day is expressed by the caller as an empty window; a duration
// longer than the window yields no slots. All times must share a location.
func Slots(windowStart, windowEnd time.Time, duration, step time.Duration, busy []Interval, now time.Time) []time.Time {
	if duration <= 0 || step <= 0 {
		return nil
	}
	if !windowEnd.After(windowStart) {
		return nil
	}
	if windowStart.Add(duration).After(windowEnd) {
		return nil
	}

	var slots []time.Time
	for t := windowStart; !t.Add(duration).After(windowEnd); t = t.Add(step) {
		if !t.After(now) {
			continue
		}
		if !ConflictsAny(t, t.Add(duration), busy) {
			slots = append(slots, t)
		}
	}
	return slots
}

// Overlaps reports whether two half-open intervals share any instant.
// Touching boundaries (aEnd == bStart) are not overlaps.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ConflictsAny reports whether [start, end) overlaps any busy interval.
func ConflictsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}
