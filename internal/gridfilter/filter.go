// Package gridfilter applies the task grid's composable filters over an
// in-memory task list. All predicates combine with AND, an empty filter
// value means no restriction, and the result preserves input order.
package gridfilter

import (
	"strconv"
	"strings"
	"time"

	"github.com/gfmachado/painel/internal/model"
	"github.com/gfmachado/painel/internal/projection"
)

// Filter holds every grid predicate. Zero value matches everything.
type Filter struct {
	Description    string
	Projects       []string // project ids as strings
	Sectors        []string
	TaskTypes      []string
	Priorities     []string // "1".."4"
	Statuses       []string
	Executors      []string // user ids
	Situations     []string
	DueDate        string // YYYY-MM-DD, exact match on effective due date
	CompletionDate string // YYYY-MM-DD, exact match
}

// IsZero reports whether no predicate is set.
func (f Filter) IsZero() bool {
	return f.Description == "" && f.DueDate == "" && f.CompletionDate == "" &&
		len(f.Projects) == 0 && len(f.Sectors) == 0 && len(f.TaskTypes) == 0 &&
		len(f.Priorities) == 0 && len(f.Statuses) == 0 && len(f.Executors) == 0 &&
		len(f.Situations) == 0
}

// Situation derives the task's schedule state: Finalizada when done,
// Atrasada when the effective due date is strictly past, No Prazo
// otherwise. A task with no due date is No Prazo.
func Situation(t model.Task, now time.Time) string {
	if t.Status == model.StatusConcluida {
		return model.SituationFinalizada
	}
	due := projection.NormalizeDate(t.EffectiveDueDate())
	if due != "" && due < now.Format("2006-01-02") {
		return model.SituationAtrasada
	}
	return model.SituationNoPrazo
}

// Apply returns the tasks matching every set predicate, in input order.
func Apply(tasks []model.Task, f Filter, now time.Time) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, f, now) {
			out = append(out, t)
		}
	}
	return out
}

// Matches evaluates the conjunction of all set predicates for one task.
func Matches(t model.Task, f Filter, now time.Time) bool {
	if f.Description != "" &&
		!strings.Contains(strings.ToLower(t.Name), strings.ToLower(f.Description)) {
		return false
	}
	if !inSet(f.Projects, strconv.FormatInt(t.ProjectID, 10)) {
		return false
	}
	if !inSet(f.Sectors, t.Sector) {
		return false
	}
	if !inSet(f.TaskTypes, t.TaskType) {
		return false
	}
	if !inSet(f.Priorities, strconv.Itoa(t.Priority)) {
		return false
	}
	if !inSet(f.Statuses, t.Status) {
		return false
	}
	if len(f.Executors) > 0 && !intersects(f.Executors, t.ExecutorIDs) {
		return false
	}
	if !inSet(f.Situations, Situation(t, now)) {
		return false
	}
	if f.DueDate != "" && projection.NormalizeDate(t.EffectiveDueDate()) != f.DueDate {
		return false
	}
	if f.CompletionDate != "" && projection.NormalizeDate(t.CompletionDate) != f.CompletionDate {
		return false
	}
	return true
}

// inSet is the IN filter: an empty set means no restriction.
func inSet(set []string, v string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func intersects(set, values []string) bool {
	for _, s := range set {
		for _, v := range values {
			if s == v {
				return true
			}
		}
	}
	return false
}
