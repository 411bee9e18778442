// Package projection derives the dashboard aggregates from an in-memory
// task list. Every function is pure: tasks in, numbers out, with the
// reference time passed explicitly so results are reproducible.
package projection

import (
	"math"
	"sort"
	"time"

	"github.com/gfmachado/painel/internal/model"
)

// NormalizeDate reduces a date value to YYYY-MM-DD. Values that do not
// parse as a date are truncated to their first 10 characters rather than
// discarded, matching the loose handling of mixed date/datetime strings
// coming from the store.
func NormalizeDate(s string) string {
	if s == "" {
		return ""
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("2006-01-02")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("2006-01-02")
	}
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

func dateOf(now time.Time) string {
	return now.Format("2006-01-02")
}

// StatusCount is one bucket of the status histogram.
type StatusCount struct {
	Status string
	Count  int
}

// StatusHistogram counts tasks per status. All seven statuses are
// present in the result, zeros included, in board order.
func StatusHistogram(tasks []model.Task) []StatusCount {
	counts := make(map[string]int, len(model.Statuses))
	for _, t := range tasks {
		counts[t.Status]++
	}
	out := make([]StatusCount, 0, len(model.Statuses))
	for _, s := range model.Statuses {
		out = append(out, StatusCount{Status: s, Count: counts[s]})
	}
	return out
}

// CompletionRate is done/(total-backlog) as a rounded integer percent.
// Backlog tasks have not entered the workflow, so they are excluded from
// the denominator. A backlog-only or empty set yields 0.
func CompletionRate(tasks []model.Task) int {
	total := len(tasks)
	var done, backlog int
	for _, t := range tasks {
		switch t.Status {
		case model.StatusConcluida:
			done++
		case model.StatusBacklog:
			backlog++
		}
	}
	denom := total - backlog
	if denom <= 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(denom) * 100))
}

// IsOverdue reports whether the task's effective due date is strictly
// before today. Terminal tasks (Concluída, Cancelada) are never overdue.
// A task with no due date at all is never overdue.
func IsOverdue(t model.Task, now time.Time) bool {
	if t.Status == model.StatusConcluida || t.Status == model.StatusCancelada {
		return false
	}
	due := NormalizeDate(t.EffectiveDueDate())
	if due == "" {
		return false
	}
	return due < dateOf(now)
}

// Overdue returns the overdue tasks in input order.
func Overdue(tasks []model.Task, now time.Time) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if IsOverdue(t, now) {
			out = append(out, t)
		}
	}
	return out
}

// LoadCount is one bar of a distribution (executor, sector or type).
type LoadCount struct {
	Key   string
	Label string
	Color string
	Count int
}

// ExecutorLoad counts task assignments per executor. A task with N
// executors contributes once to each of the N counters. Sorted by count
// descending (ties by key) and truncated to the top 8.
func ExecutorLoad(tasks []model.Task, memberNames map[string]string) []LoadCount {
	counts := make(map[string]int)
	for _, t := range tasks {
		for _, id := range t.ExecutorIDs {
			counts[id]++
		}
	}
	out := make([]LoadCount, 0, len(counts))
	for id, n := range counts {
		label := memberNames[id]
		if label == "" {
			label = id
		}
		out = append(out, LoadCount{Key: id, Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > 8 {
		out = out[:8]
	}
	return out
}

// Distribution counts tasks per sector or task type. With excludeDone
// set, Concluída tasks are left out. Sorted by count descending, ties by
// key.
func Distribution(tasks []model.Task, key func(model.Task) string, colors map[string]string, excludeDone bool) []LoadCount {
	counts := make(map[string]int)
	for _, t := range tasks {
		if excludeDone && t.Status == model.StatusConcluida {
			continue
		}
		k := key(t)
		if k == "" {
			continue
		}
		counts[k]++
	}
	out := make([]LoadCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, LoadCount{Key: k, Label: k, Color: colors[k], Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// DueOn returns tasks whose effective due date equals the given day.
func DueOn(tasks []model.Task, day time.Time) []model.Task {
	want := dateOf(day)
	var out []model.Task
	for _, t := range tasks {
		if NormalizeDate(t.EffectiveDueDate()) == want {
			out = append(out, t)
		}
	}
	return out
}

// FinishedYesterday selects tasks whose audit trail records a status
// change to Concluída dated yesterday. The audit rows are structured
// (field/new_value), so no summary-text matching is involved.
func FinishedYesterday(tasks []model.Task, audits []model.TaskAuditLog, now time.Time) []model.Task {
	yesterday := dateOf(now.AddDate(0, 0, -1))
	finished := make(map[int64]bool)
	for _, a := range audits {
		if a.Field == "status" && a.NewValue == model.StatusConcluida && dateOf(a.CreatedAt) == yesterday {
			finished[a.TaskID] = true
		}
	}
	var out []model.Task
	for _, t := range tasks {
		if finished[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// AgendaItem is one execution period scheduled for today.
type AgendaItem struct {
	TaskID    int64
	TaskName  string
	StartTime string
	EndTime   string
	Minutes   int
}

// Agenda is the day's planned work.
type Agenda struct {
	Items        []AgendaItem
	TotalMinutes int
	TaskCount    int
}

// TodayAgenda flattens all execution periods dated today, sorted by
// start time, with total planned minutes and the distinct task count.
func TodayAgenda(tasks []model.Task, now time.Time) Agenda {
	today := dateOf(now)
	var ag Agenda
	seen := make(map[int64]bool)
	for _, t := range tasks {
		for _, p := range t.Periods {
			if NormalizeDate(p.Date) != today {
				continue
			}
			m := periodMinutes(p)
			ag.Items = append(ag.Items, AgendaItem{
				TaskID:    t.ID,
				TaskName:  t.Name,
				StartTime: p.StartTime,
				EndTime:   p.EndTime,
				Minutes:   m,
			})
			ag.TotalMinutes += m
			if !seen[t.ID] {
				seen[t.ID] = true
				ag.TaskCount++
			}
		}
	}
	sort.SliceStable(ag.Items, func(i, j int) bool {
		return ag.Items[i].StartTime < ag.Items[j].StartTime
	})
	return ag
}

func periodMinutes(p model.ExecutionPeriod) int {
	start, err1 := time.Parse("15:04", p.StartTime)
	end, err2 := time.Parse("15:04", p.EndTime)
	if err1 != nil || err2 != nil || end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Minutes())
}

// Dashboard bundles everything the dashboard page renders.
type Dashboard struct {
	Total             int
	Histogram         []StatusCount
	CompletionRate    int
	Overdue           []model.Task
	ExecutorLoad      []LoadCount
	SectorLoad        []LoadCount
	TypeLoad          []LoadCount
	FinishedYesterday []model.Task
	DueToday          []model.Task
	DueTomorrow       []model.Task
	Agenda            Agenda
}

// Config carries the lookup tables the aggregates label themselves with.
type Config struct {
	MemberNames map[string]string
	SectorColor map[string]string
	TypeColor   map[string]string
	ExcludeDone bool
}

// Compute builds the full dashboard in one pass over the task list.
func Compute(tasks []model.Task, audits []model.TaskAuditLog, cfg Config, now time.Time) Dashboard {
	return Dashboard{
		Total:             len(tasks),
		Histogram:         StatusHistogram(tasks),
		CompletionRate:    CompletionRate(tasks),
		Overdue:           Overdue(tasks, now),
		ExecutorLoad:      ExecutorLoad(tasks, cfg.MemberNames),
		SectorLoad:        Distribution(tasks, func(t model.Task) string { return t.Sector }, cfg.SectorColor, cfg.ExcludeDone),
		TypeLoad:          Distribution(tasks, func(t model.Task) string { return t.TaskType }, cfg.TypeColor, cfg.ExcludeDone),
		FinishedYesterday: FinishedYesterday(tasks, audits, now),
		DueToday:          DueOn(tasks, now),
		DueTomorrow:       DueOn(tasks, now.AddDate(0, 0, 1)),
		Agenda:            TodayAgenda(tasks, now),
	}
}
