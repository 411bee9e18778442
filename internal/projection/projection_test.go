package projection

import (
	"testing"
	"time"

	"github.com/gfmachado/painel/internal/model"
)

var now = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC) // a Tuesday

func day(offset int) string {
	return now.AddDate(0, 0, offset).Format("2006-01-02")
}

func TestStatusHistogramCoversAllStatusesAndSumsToTotal(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Status: model.StatusBacklog},
		{ID: 2, Status: model.StatusConcluida},
		{ID: 3, Status: model.StatusEmExecucao},
		{ID: 4, Status: model.StatusEmExecucao},
	}
	hist := StatusHistogram(tasks)
	if len(hist) != len(model.Statuses) {
		t.Fatalf("histogram has %d buckets, want %d", len(hist), len(model.Statuses))
	}
	sum := 0
	for i, h := range hist {
		if h.Status != model.Statuses[i] {
			t.Errorf("bucket %d is %q, want %q", i, h.Status, model.Statuses[i])
		}
		sum += h.Count
	}
	if sum != len(tasks) {
		t.Errorf("histogram sums to %d, want %d", sum, len(tasks))
	}
}

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		name  string
		tasks []model.Task
		want  int
	}{
		{"empty", nil, 0},
		{"backlog only", []model.Task{{Status: model.StatusBacklog}, {Status: model.StatusBacklog}}, 0},
		{"backlog excluded from denominator", []model.Task{
			{ID: 1, Status: model.StatusBacklog},
			{ID: 2, Status: model.StatusConcluida},
			{ID: 3, Status: model.StatusEmExecucao},
		}, 50},
		{"all done", []model.Task{{Status: model.StatusConcluida}}, 100},
		{"rounding", []model.Task{
			{Status: model.StatusConcluida},
			{Status: model.StatusPendente},
			{Status: model.StatusPendente},
		}, 33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompletionRate(tt.tasks)
			if got != tt.want {
				t.Errorf("CompletionRate = %d, want %d", got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("CompletionRate = %d out of [0,100]", got)
			}
		})
	}
}

func TestOverdueExcludesTerminalStatuses(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Status: model.StatusEmExecucao, DueDateOriginal: day(-1)},
		{ID: 2, Status: model.StatusConcluida, DueDateOriginal: day(-30)},
		{ID: 3, Status: model.StatusCancelada, DueDateOriginal: day(-30)},
		{ID: 4, Status: model.StatusPendente, DueDateOriginal: day(1)},
		{ID: 5, Status: model.StatusPendente}, // no due date at all
	}
	got := Overdue(tasks, now)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("Overdue = %v, want exactly task 1", got)
	}
}

func TestOverdueUsesCurrentDueDateOverOriginal(t *testing.T) {
	task := model.Task{Status: model.StatusPendente, DueDateOriginal: day(-5), DueDateCurrent: day(2)}
	if IsOverdue(task, now) {
		t.Error("task rescheduled to the future reported overdue")
	}
	task = model.Task{Status: model.StatusPendente, DueDateOriginal: day(5), DueDateCurrent: day(-2)}
	if !IsOverdue(task, now) {
		t.Error("task rescheduled into the past not reported overdue")
	}
}

func TestOverdueIsDateOnly(t *testing.T) {
	// Due today, regardless of current time of day: not overdue.
	task := model.Task{Status: model.StatusPendente, DueDateOriginal: day(0)}
	if IsOverdue(task, now) {
		t.Error("task due today reported overdue")
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct{ in, want string }{
		{"2026-03-10", "2026-03-10"},
		{"2026-03-10T14:00:00Z", "2026-03-10"},
		{"2026-03-10 14:00:00", "2026-03-10"}, // unparseable, first 10 chars
		{"garbage", "garbage"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeDate(tt.in); got != tt.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExecutorLoadCountsPerAssignmentAndTruncates(t *testing.T) {
	var tasks []model.Task
	// u0..u9 where u_i is executor on i+1 tasks.
	for i := 0; i < 10; i++ {
		id := string(rune('a' + i))
		for j := 0; j <= i; j++ {
			tasks = append(tasks, model.Task{ExecutorIDs: []string{id}})
		}
	}
	// One task with two executors contributes to both.
	tasks = append(tasks, model.Task{ExecutorIDs: []string{"a", "b"}})
	load := ExecutorLoad(tasks, map[string]string{"j": "Julia"})
	if len(load) != 8 {
		t.Fatalf("ExecutorLoad returned %d entries, want 8", len(load))
	}
	if load[0].Key != "j" || load[0].Count != 10 {
		t.Errorf("top executor = %+v, want j with 10", load[0])
	}
	if load[0].Label != "Julia" {
		t.Errorf("label = %q, want member name", load[0].Label)
	}
	for i := 1; i < len(load); i++ {
		if load[i].Count > load[i-1].Count {
			t.Fatalf("load not sorted descending at %d", i)
		}
	}
}

func TestDistributionExcludeDone(t *testing.T) {
	tasks := []model.Task{
		{Sector: "TI", Status: model.StatusConcluida},
		{Sector: "TI", Status: model.StatusPendente},
		{Sector: "RH", Status: model.StatusPendente},
		{Status: model.StatusPendente}, // no sector, dropped
	}
	sector := func(t model.Task) string { return t.Sector }
	all := Distribution(tasks, sector, nil, false)
	if len(all) != 2 || all[0].Key != "TI" || all[0].Count != 2 {
		t.Fatalf("Distribution = %+v", all)
	}
	open := Distribution(tasks, sector, nil, true)
	for _, l := range open {
		if l.Count != 1 {
			t.Errorf("excludeDone: %s has count %d, want 1", l.Key, l.Count)
		}
	}
}

func TestDueTodayAndTomorrow(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, DueDateOriginal: day(0)},
		{ID: 2, DueDateOriginal: day(1)},
		{ID: 3, DueDateOriginal: day(-1), DueDateCurrent: day(0)},
		{ID: 4},
	}
	today := DueOn(tasks, now)
	if len(today) != 2 || today[0].ID != 1 || today[1].ID != 3 {
		t.Errorf("DueOn(today) = %v, want tasks 1 and 3", today)
	}
	tomorrow := DueOn(tasks, now.AddDate(0, 0, 1))
	if len(tomorrow) != 1 || tomorrow[0].ID != 2 {
		t.Errorf("DueOn(tomorrow) = %v, want task 2", tomorrow)
	}
}

func TestFinishedYesterdayUsesStructuredAuditRows(t *testing.T) {
	tasks := []model.Task{{ID: 1}, {ID: 2}, {ID: 3}}
	audits := []model.TaskAuditLog{
		{TaskID: 1, Field: "status", NewValue: model.StatusConcluida, CreatedAt: now.AddDate(0, 0, -1)},
		{TaskID: 2, Field: "status", NewValue: model.StatusConcluida, CreatedAt: now}, // today, not yesterday
		{TaskID: 3, Field: "priority", NewValue: "4", CreatedAt: now.AddDate(0, 0, -1)},
	}
	got := FinishedYesterday(tasks, audits, now)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("FinishedYesterday = %v, want exactly task 1", got)
	}
}

func TestTodayAgenda(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Name: "a", Periods: []model.ExecutionPeriod{
			{Date: day(0), StartTime: "14:00", EndTime: "15:30"},
			{Date: day(0), StartTime: "09:00", EndTime: "10:00"},
			{Date: day(1), StartTime: "09:00", EndTime: "10:00"},
		}},
		{ID: 2, Name: "b", Periods: []model.ExecutionPeriod{
			{Date: day(0), StartTime: "11:00", EndTime: "12:00"},
		}},
	}
	ag := TodayAgenda(tasks, now)
	if len(ag.Items) != 3 {
		t.Fatalf("agenda has %d items, want 3", len(ag.Items))
	}
	if ag.Items[0].StartTime != "09:00" || ag.Items[1].StartTime != "11:00" || ag.Items[2].StartTime != "14:00" {
		t.Errorf("agenda not sorted by start time: %+v", ag.Items)
	}
	if ag.TotalMinutes != 60+60+90 {
		t.Errorf("TotalMinutes = %d, want 210", ag.TotalMinutes)
	}
	if ag.TaskCount != 2 {
		t.Errorf("TaskCount = %d, want 2", ag.TaskCount)
	}
}

func TestComputeBundle(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Status: model.StatusBacklog},
		{ID: 2, Status: model.StatusConcluida},
		{ID: 3, Status: model.StatusEmExecucao, DueDateOriginal: day(-1)},
	}
	d := Compute(tasks, nil, Config{}, now)
	if d.CompletionRate != 50 {
		t.Errorf("CompletionRate = %d, want 50", d.CompletionRate)
	}
	if len(d.Overdue) != 1 || d.Overdue[0].ID != 3 {
		t.Errorf("Overdue = %v, want task 3", d.Overdue)
	}
	if d.Total != 3 {
		t.Errorf("Total = %d, want 3", d.Total)
	}
}
