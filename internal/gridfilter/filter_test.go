package gridfilter

import (
	"reflect"
	"testing"
	"time"

	"github.com/gfmachado/painel/internal/model"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func day(offset int) string {
	return now.AddDate(0, 0, offset).Format("2006-01-02")
}

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: 1, ProjectID: 1, Name: "Relatório mensal", Sector: "TI", TaskType: "Operacional",
			Priority: 2, Status: model.StatusBacklog},
		{ID: 2, ProjectID: 1, Name: "Deploy produção", Sector: "TI", TaskType: "Projeto",
			Priority: 4, Status: model.StatusConcluida, CompletionDate: day(-2), DueDateOriginal: day(-5)},
		{ID: 3, ProjectID: 2, Name: "Treinamento equipe", Sector: "RH", TaskType: "Operacional",
			Priority: 3, Status: model.StatusEmExecucao, DueDateOriginal: day(-1),
			ExecutorIDs: []string{"u1", "u2"}},
		{ID: 4, ProjectID: 2, Name: "Revisar contrato", Sector: "Jurídico", TaskType: "Projeto",
			Priority: 1, Status: model.StatusPendente, DueDateOriginal: day(3),
			ExecutorIDs: []string{"u2"}},
	}
}

func ids(tasks []model.Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestEmptyFilterIsIdentity(t *testing.T) {
	tasks := sampleTasks()
	got := Apply(tasks, Filter{}, now)
	if !reflect.DeepEqual(ids(got), ids(tasks)) {
		t.Fatalf("empty filter changed the list: %v", ids(got))
	}
}

func TestDescriptionSubstringCaseInsensitive(t *testing.T) {
	got := Apply(sampleTasks(), Filter{Description: "RELATÓRIO"}, now)
	if !reflect.DeepEqual(ids(got), []int64{1}) {
		t.Fatalf("got %v, want [1]", ids(got))
	}
}

func TestStatusInFilter(t *testing.T) {
	got := Apply(sampleTasks(), Filter{Statuses: []string{model.StatusConcluida}}, now)
	if !reflect.DeepEqual(ids(got), []int64{2}) {
		t.Fatalf("got %v, want [2]", ids(got))
	}
}

func TestMultiValueFilters(t *testing.T) {
	tests := []struct {
		name string
		f    Filter
		want []int64
	}{
		{"projects", Filter{Projects: []string{"2"}}, []int64{3, 4}},
		{"sectors", Filter{Sectors: []string{"TI", "RH"}}, []int64{1, 2, 3}},
		{"task types", Filter{TaskTypes: []string{"Projeto"}}, []int64{2, 4}},
		{"priorities", Filter{Priorities: []string{"3", "4"}}, []int64{2, 3}},
		{"executors", Filter{Executors: []string{"u2"}}, []int64{3, 4}},
		{"due date", Filter{DueDate: day(3)}, []int64{4}},
		{"completion date", Filter{CompletionDate: day(-2)}, []int64{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(sampleTasks(), tt.f, now)
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("got %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestSituationDerivation(t *testing.T) {
	tests := []struct {
		name string
		task model.Task
		want string
	}{
		{"done is finalizada even when past due",
			model.Task{Status: model.StatusConcluida, DueDateOriginal: day(-10)},
			model.SituationFinalizada},
		{"past due is atrasada",
			model.Task{Status: model.StatusEmExecucao, DueDateOriginal: day(-1)},
			model.SituationAtrasada},
		{"current date overrides original",
			model.Task{Status: model.StatusEmExecucao, DueDateOriginal: day(-10), DueDateCurrent: day(5)},
			model.SituationNoPrazo},
		{"due today is no prazo",
			model.Task{Status: model.StatusPendente, DueDateOriginal: day(0)},
			model.SituationNoPrazo},
		{"no due dates at all is no prazo",
			model.Task{Status: model.StatusPendente},
			model.SituationNoPrazo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Situation(tt.task, now); got != tt.want {
				t.Errorf("Situation = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSituationFilter(t *testing.T) {
	got := Apply(sampleTasks(), Filter{Situations: []string{model.SituationAtrasada}}, now)
	if !reflect.DeepEqual(ids(got), []int64{3}) {
		t.Fatalf("got %v, want [3]", ids(got))
	}
}

// Applying predicates one at a time, in any order, must match applying
// the combined filter once.
func TestFilterCommutativity(t *testing.T) {
	tasks := sampleTasks()
	full := Filter{
		Sectors:    []string{"TI", "RH"},
		Statuses:   []string{model.StatusEmExecucao, model.StatusConcluida},
		Situations: []string{model.SituationAtrasada},
	}
	want := ids(Apply(tasks, full, now))

	orders := [][]Filter{
		{{Sectors: full.Sectors}, {Statuses: full.Statuses}, {Situations: full.Situations}},
		{{Situations: full.Situations}, {Sectors: full.Sectors}, {Statuses: full.Statuses}},
		{{Statuses: full.Statuses}, {Situations: full.Situations}, {Sectors: full.Sectors}},
	}
	for i, order := range orders {
		step := tasks
		for _, f := range order {
			step = Apply(step, f, now)
		}
		if !reflect.DeepEqual(ids(step), want) {
			t.Errorf("order %d yields %v, combined filter yields %v", i, ids(step), want)
		}
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	got := Apply(sampleTasks(), Filter{Sectors: []string{"TI", "RH", "Jurídico"}}, now)
	if !reflect.DeepEqual(ids(got), []int64{1, 2, 3, 4}) {
		t.Fatalf("order not preserved: %v", ids(got))
	}
}
