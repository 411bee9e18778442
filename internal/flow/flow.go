// Package flow lays out the task dependency graph: topological leveling,
// blocked detection and the geometry the flow view renders as SVG.
package flow

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gfmachado/painel/internal/model"
)

// ErrCyclicDependency is returned when the dependency graph contains a
// cycle. Leveling guards against recursing into a cycle instead of
// looping forever.
var ErrCyclicDependency = errors.New("cyclic dependency")

// Levels assigns each task its layer: tasks with no dependencies are
// level 0, otherwise level = 1 + max over dependency levels. Edges to
// unknown task ids are ignored.
func Levels(tasks []model.Task) (map[int64]int, error) {
	byID := make(map[int64]model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	levels := make(map[int64]int, len(tasks))
	state := make(map[int64]int, len(tasks)) // 0 unvisited, 1 in stack, 2 done

	var visit func(id int64) (int, error)
	visit = func(id int64) (int, error) {
		switch state[id] {
		case 1:
			return 0, fmt.Errorf("%w: task %d", ErrCyclicDependency, id)
		case 2:
			return levels[id], nil
		}
		state[id] = 1
		level := 0
		for _, dep := range byID[id].Dependencies {
			if _, ok := byID[dep]; !ok {
				continue
			}
			dl, err := visit(dep)
			if err != nil {
				return 0, err
			}
			if dl+1 > level {
				level = dl + 1
			}
		}
		state[id] = 2
		levels[id] = level
		return level, nil
	}

	for _, t := range tasks {
		if _, err := visit(t.ID); err != nil {
			return nil, err
		}
	}
	return levels, nil
}

// Blocked reports whether any dependency of the task is not yet in the
// Concluída terminal state.
func Blocked(t model.Task, byID map[int64]model.Task) bool {
	for _, dep := range t.Dependencies {
		d, ok := byID[dep]
		if !ok {
			continue
		}
		if d.Status != model.StatusConcluida {
			return true
		}
	}
	return false
}

// Box geometry, in SVG user units.
const (
	BoxWidth  = 180
	BoxHeight = 64
	ColGap    = 80
	RowGap    = 24
	Margin    = 20
)

// Node is one positioned task box.
type Node struct {
	Task    model.Task
	Level   int
	X, Y    int
	Blocked bool
}

// Edge is one dependency connector, drawn from the dependency's right
// edge to the dependent's left edge.
type Edge struct {
	FromID int64
	ToID   int64
	Path   string // SVG path data, cubic Bezier
}

// Layout is the fully computed flow chart.
type Layout struct {
	Nodes  []Node
	Edges  []Edge
	Width  int
	Height int
}

// Build levels the graph and positions each level as a column, tasks
// within a column ordered by id. Returns ErrCyclicDependency on cycles.
func Build(tasks []model.Task) (*Layout, error) {
	levels, err := Levels(tasks)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	byLevel := make(map[int][]model.Task)
	maxLevel := 0
	for _, t := range tasks {
		l := levels[t.ID]
		byLevel[l] = append(byLevel[l], t)
		if l > maxLevel {
			maxLevel = l
		}
	}

	lt := &Layout{}
	pos := make(map[int64]Node, len(tasks))
	maxRows := 0
	for l := 0; l <= maxLevel; l++ {
		col := byLevel[l]
		sort.Slice(col, func(i, j int) bool { return col[i].ID < col[j].ID })
		if len(col) > maxRows {
			maxRows = len(col)
		}
		for row, t := range col {
			n := Node{
				Task:    t,
				Level:   l,
				X:       Margin + l*(BoxWidth+ColGap),
				Y:       Margin + row*(BoxHeight+RowGap),
				Blocked: Blocked(t, byID),
			}
			pos[t.ID] = n
			lt.Nodes = append(lt.Nodes, n)
		}
	}

	for _, t := range tasks {
		to := pos[t.ID]
		for _, dep := range t.Dependencies {
			from, ok := pos[dep]
			if !ok {
				continue
			}
			lt.Edges = append(lt.Edges, Edge{
				FromID: dep,
				ToID:   t.ID,
				Path:   connector(from, to),
			})
		}
	}

	if len(tasks) > 0 {
		lt.Width = Margin*2 + (maxLevel+1)*BoxWidth + maxLevel*ColGap
		lt.Height = Margin*2 + maxRows*BoxHeight + (maxRows-1)*RowGap
	}
	return lt, nil
}

// connector builds a cubic Bezier from the right edge midpoint of the
// dependency box to the left edge midpoint of the dependent box.
func connector(from, to Node) string {
	x1 := from.X + BoxWidth
	y1 := from.Y + BoxHeight/2
	x2 := to.X
	y2 := to.Y + BoxHeight/2
	dx := (x2 - x1) / 2
	if dx < 24 {
		dx = 24
	}
	return fmt.Sprintf("M %d %d C %d %d, %d %d, %d %d",
		x1, y1, x1+dx, y1, x2-dx, y2, x2, y2)
}
