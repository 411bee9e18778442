package projection

import "github.com/gfmachado/painel/internal/model"

// Column is one kanban lane.
type Column struct {
	Status string
	Tasks  []model.Task
}

// Board groups the filtered task list into the seven fixed status
// columns, empty ones included. Column membership is re-derived from the
// source list on every render; within a column, input order is kept.
// Tasks with an unknown status are dropped (they cannot be rendered in a
// fixed-lane board), which the store's status CHECK constraint prevents
// from happening in practice.
func Board(tasks []model.Task) []Column {
	byStatus := make(map[string][]model.Task, len(model.Statuses))
	for _, t := range tasks {
		byStatus[t.Status] = append(byStatus[t.Status], t)
	}
	out := make([]Column, 0, len(model.Statuses))
	for _, s := range model.Statuses {
		out = append(out, Column{Status: s, Tasks: byStatus[s]})
	}
	return out
}
