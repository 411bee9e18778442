package projection

import (
	"testing"

	"github.com/gfmachado/painel/internal/model"
)

func TestBoardPartitionsTasksExactlyOnce(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Status: model.StatusBacklog},
		{ID: 2, Status: model.StatusConcluida},
		{ID: 3, Status: model.StatusEmExecucao},
		{ID: 4, Status: model.StatusEmExecucao},
		{ID: 5, Status: model.StatusCancelada},
	}
	cols := Board(tasks)
	if len(cols) != len(model.Statuses) {
		t.Fatalf("board has %d columns, want %d", len(cols), len(model.Statuses))
	}
	seen := make(map[int64]int)
	for _, c := range cols {
		for _, task := range c.Tasks {
			seen[task.ID]++
			if task.Status != c.Status {
				t.Errorf("task %d with status %q in column %q", task.ID, task.Status, c.Status)
			}
		}
	}
	for _, task := range tasks {
		if seen[task.ID] != 1 {
			t.Errorf("task %d appears %d times across columns, want exactly 1", task.ID, seen[task.ID])
		}
	}
}

func TestBoardIncludesEmptyColumns(t *testing.T) {
	cols := Board(nil)
	if len(cols) != len(model.Statuses) {
		t.Fatalf("empty board has %d columns, want %d", len(cols), len(model.Statuses))
	}
	for i, c := range cols {
		if c.Status != model.Statuses[i] {
			t.Errorf("column %d is %q, want %q", i, c.Status, model.Statuses[i])
		}
		if len(c.Tasks) != 0 {
			t.Errorf("column %q not empty", c.Status)
		}
	}
}

func TestBoardKeepsInputOrderWithinColumn(t *testing.T) {
	tasks := []model.Task{
		{ID: 7, Status: model.StatusPendente},
		{ID: 3, Status: model.StatusPendente},
		{ID: 5, Status: model.StatusPendente},
	}
	cols := Board(tasks)
	for _, c := range cols {
		if c.Status != model.StatusPendente {
			continue
		}
		want := []int64{7, 3, 5}
		for i, task := range c.Tasks {
			if task.ID != want[i] {
				t.Fatalf("column order %v, want %v", c.Tasks, want)
			}
		}
	}
}
