package flow

import (
	"errors"
	"strings"
	"testing"

	"github.com/gfmachado/painel/internal/model"
)

func TestLevelsDiamondGraph(t *testing.T) {
	// Two roots at level 0; task 4 depends on both and still lands at
	// level 1 (max over dependency levels + 1, not sum).
	tasks := []model.Task{
		{ID: 1},
		{ID: 2},
		{ID: 3, Dependencies: []int64{1}},
		{ID: 4, Dependencies: []int64{1, 2}},
	}
	levels, err := Levels(tasks)
	if err != nil {
		t.Fatal(err)
	}
	want := map[int64]int{1: 0, 2: 0, 3: 1, 4: 1}
	for id, w := range want {
		if levels[id] != w {
			t.Errorf("level(%d) = %d, want %d", id, levels[id], w)
		}
	}
}

func TestLevelIsMaxPlusOneNotSum(t *testing.T) {
	tasks := []model.Task{
		{ID: 1},
		{ID: 2, Dependencies: []int64{1}},
		{ID: 3, Dependencies: []int64{1, 2}},
	}
	levels, err := Levels(tasks)
	if err != nil {
		t.Fatal(err)
	}
	if levels[3] != 2 {
		t.Fatalf("level(3) = %d, want 2 (1 + max(0,1))", levels[3])
	}
}

func TestLevelStrictlyAboveEachDependency(t *testing.T) {
	tasks := []model.Task{
		{ID: 1},
		{ID: 2, Dependencies: []int64{1}},
		{ID: 3, Dependencies: []int64{2}},
		{ID: 4, Dependencies: []int64{1, 3}},
		{ID: 5},
	}
	levels, err := Levels(tasks)
	if err != nil {
		t.Fatal(err)
	}
	for _, task := range tasks {
		for _, dep := range task.Dependencies {
			if levels[task.ID] <= levels[dep] {
				t.Errorf("level(%d)=%d not strictly above dependency %d at %d",
					task.ID, levels[task.ID], dep, levels[dep])
			}
		}
	}
}

func TestCycleReturnsErrorInsteadOfHanging(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Dependencies: []int64{3}},
		{ID: 2, Dependencies: []int64{1}},
		{ID: 3, Dependencies: []int64{2}},
	}
	_, err := Levels(tasks)
	if !errors.Is(err, ErrCyclicDependency) {
		t.Fatalf("err = %v, want ErrCyclicDependency", err)
	}
	if _, err := Build(tasks); !errors.Is(err, ErrCyclicDependency) {
		t.Fatalf("Build err = %v, want ErrCyclicDependency", err)
	}
}

func TestUnknownDependencyIgnored(t *testing.T) {
	tasks := []model.Task{{ID: 1, Dependencies: []int64{99}}}
	levels, err := Levels(tasks)
	if err != nil {
		t.Fatal(err)
	}
	if levels[1] != 0 {
		t.Fatalf("level(1) = %d, want 0 when only dependency is unknown", levels[1])
	}
}

func TestBlocked(t *testing.T) {
	byID := map[int64]model.Task{
		1: {ID: 1, Status: model.StatusConcluida},
		2: {ID: 2, Status: model.StatusEmExecucao},
	}
	if Blocked(model.Task{ID: 3, Dependencies: []int64{1}}, byID) {
		t.Error("task with only completed dependencies reported blocked")
	}
	if !Blocked(model.Task{ID: 4, Dependencies: []int64{1, 2}}, byID) {
		t.Error("task with an open dependency not reported blocked")
	}
	if Blocked(model.Task{ID: 5}, byID) {
		t.Error("task with no dependencies reported blocked")
	}
}

func TestBuildGeometry(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Name: "root"},
		{ID: 2, Name: "next", Dependencies: []int64{1}},
	}
	lt, err := Build(tasks)
	if err != nil {
		t.Fatal(err)
	}
	if len(lt.Nodes) != 2 || len(lt.Edges) != 1 {
		t.Fatalf("layout has %d nodes, %d edges", len(lt.Nodes), len(lt.Edges))
	}
	var root, next Node
	for _, n := range lt.Nodes {
		switch n.Task.ID {
		case 1:
			root = n
		case 2:
			next = n
		}
	}
	if next.X <= root.X {
		t.Errorf("dependent at x=%d not right of dependency at x=%d", next.X, root.X)
	}
	e := lt.Edges[0]
	if e.FromID != 1 || e.ToID != 2 {
		t.Errorf("edge = %+v", e)
	}
	if !strings.HasPrefix(e.Path, "M ") || !strings.Contains(e.Path, " C ") {
		t.Errorf("connector is not a cubic Bezier path: %q", e.Path)
	}
	if lt.Width <= 0 || lt.Height <= 0 {
		t.Errorf("degenerate canvas %dx%d", lt.Width, lt.Height)
	}
}

func TestBuildEmpty(t *testing.T) {
	lt, err := Build(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(lt.Nodes) != 0 || lt.Width != 0 {
		t.Fatalf("empty build = %+v", lt)
	}
}
