// Package calendar computes the date ranges and day buckets behind the
// month/week/day views. Navigation is pure date arithmetic, independent
// of which events exist.
package calendar

import (
	"sort"
	"time"

	"github.com/gfmachado/painel/internal/model"
	"github.com/gfmachado/painel/internal/projection"
)

type Granularity string

const (
	Month Granularity = "month"
	Week  Granularity = "week"
	Day   Granularity = "day"
)

// ParseGranularity falls back to Month on anything unknown.
func ParseGranularity(s string) Granularity {
	switch Granularity(s) {
	case Week:
		return Week
	case Day:
		return Day
	default:
		return Month
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Sunday on or before t.
func startOfWeek(t time.Time) time.Time {
	t = midnight(t)
	return t.AddDate(0, 0, -int(t.Weekday()))
}

// Range computes the inclusive date range to render for the anchor at
// the given granularity. The month range pads to full weeks before the
// 1st and after the last day, so its day count is a multiple of 7.
func Range(anchor time.Time, g Granularity) (time.Time, time.Time) {
	anchor = midnight(anchor)
	switch g {
	case Day:
		return anchor, anchor
	case Week:
		start := startOfWeek(anchor)
		return start, start.AddDate(0, 0, 6)
	default:
		first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		last := first.AddDate(0, 1, -1)
		start := startOfWeek(first)
		end := startOfWeek(last).AddDate(0, 0, 6)
		return start, end
	}
}

// Days expands an inclusive range into its day cells.
func Days(start, end time.Time) []time.Time {
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// Shift moves the anchor by delta units of the granularity. delta is -1
// for prev, +1 for next; Today is just a fresh anchor, no Shift needed.
// Month shifts land on the first of the target month so an end-of-month
// anchor cannot overflow past a shorter month.
func Shift(anchor time.Time, g Granularity, delta int) time.Time {
	anchor = midnight(anchor)
	switch g {
	case Day:
		return anchor.AddDate(0, 0, delta)
	case Week:
		return anchor.AddDate(0, 0, 7*delta)
	default:
		return time.Date(anchor.Year(), anchor.Month()+time.Month(delta), 1, 0, 0, 0, 0, anchor.Location())
	}
}

// Event is one execution period placed on a day cell.
type Event struct {
	TaskID    int64
	TaskName  string
	Status    string
	Date      string // YYYY-MM-DD
	StartTime string
	EndTime   string
}

// Bucket maps each day in [start,end] to its events, sorted by start
// time. Days without events are absent from the map; an empty range is
// a valid render, not an error.
func Bucket(tasks []model.Task, start, end time.Time) map[string][]Event {
	lo := start.Format("2006-01-02")
	hi := end.Format("2006-01-02")
	out := make(map[string][]Event)
	for _, t := range tasks {
		for _, p := range t.Periods {
			d := projection.NormalizeDate(p.Date)
			if d < lo || d > hi {
				continue
			}
			out[d] = append(out[d], Event{
				TaskID:    t.ID,
				TaskName:  t.Name,
				Status:    t.Status,
				Date:      d,
				StartTime: p.StartTime,
				EndTime:   p.EndTime,
			})
		}
	}
	for d := range out {
		evs := out[d]
		sort.SliceStable(evs, func(i, j int) bool { return evs[i].StartTime < evs[j].StartTime })
		out[d] = evs
	}
	return out
}
