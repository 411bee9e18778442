package main

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gfmachado/painel/internal/calendar"
	"github.com/gfmachado/painel/internal/flow"
	"github.com/gfmachado/painel/internal/gridfilter"
	"github.com/gfmachado/painel/internal/model"
	"github.com/gfmachado/painel/internal/projection"
)

// buildFilter reads the grid filter out of the query string. Absent
// parameters leave their predicate unset.
func buildFilter(q url.Values) gridfilter.Filter {
	return gridfilter.Filter{
		Description:    q.Get("description"),
		Projects:       q["project"],
		Sectors:        q["sector"],
		TaskTypes:      q["task_type"],
		Priorities:     q["priority"],
		Statuses:       q["status"],
		Executors:      q["executor"],
		Situations:     q["situation"],
		DueDate:        q.Get("due_date"),
		CompletionDate: q.Get("completion_date"),
	}
}

func handleTasks(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	data := tasksViewData(r, ws)
	data["User"] = u
	if isHTMX(r) {
		renderTemplate(w, "tasks_view.html", data)
		return
	}
	renderTemplate(w, "tasks.html", data)
}

func renderTasksPartial(w http.ResponseWriter, r *http.Request, wsID int64) {
	u := currentUser(r)
	ws, _ := workspaceForUser(r.PathValue("id"), u)
	if ws == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	data := tasksViewData(r, ws)
	data["User"] = u
	renderTemplate(w, "tasks_view.html", data)
}

// tasksViewData assembles everything the grid page and its partial
// render: the filtered list plus whichever projection the current view
// mode needs.
func tasksViewData(r *http.Request, ws *model.Workspace) map[string]any {
	q := r.URL.Query()
	now := time.Now()

	f := buildFilter(q)
	tasks := workspaceTasks(ws.ID)
	filtered := gridfilter.Apply(tasks, f, now)

	view := q.Get("view")
	switch view {
	case "kanban", "calendar", "flow":
	default:
		view = "list"
	}

	situations := make(map[int64]string, len(filtered))
	for _, t := range filtered {
		situations[t.ID] = gridfilter.Situation(t, now)
	}

	data := map[string]any{
		"Workspace":  ws,
		"View":       view,
		"Filter":     f,
		"Tasks":      filtered,
		"Situations": situations,
		"Projects":   workspaceProjects(ws.ID),
		"Members":    workspaceMembers(ws.ID),
		"Sectors":    workspaceTags(ws.ID, "sector"),
		"TaskTypes":  workspaceTags(ws.ID, "task_type"),
		"Statuses":   model.Statuses,
		"MemberName": memberNameMap(ws.ID),
		"Query":      q.Encode(),
	}

	switch view {
	case "kanban":
		data["Columns"] = projection.Board(filtered)
	case "calendar":
		g := calendar.ParseGranularity(q.Get("g"))
		anchor := now
		if a, err := time.Parse("2006-01-02", q.Get("anchor")); err == nil {
			anchor = a
		}
		start, end := calendar.Range(anchor, g)
		data["Granularity"] = string(g)
		data["Anchor"] = anchor.Format("2006-01-02")
		data["PrevAnchor"] = calendar.Shift(anchor, g, -1).Format("2006-01-02")
		data["NextAnchor"] = calendar.Shift(anchor, g, 1).Format("2006-01-02")
		data["TodayAnchor"] = now.Format("2006-01-02")
		data["Days"] = calendar.Days(start, end)
		data["Buckets"] = calendar.Bucket(filtered, start, end)
		data["AnchorMonth"] = anchor.Format("01/2006")
	case "flow":
		layout, err := flow.Build(filtered)
		if errors.Is(err, flow.ErrCyclicDependency) {
			data["FlowError"] = "As dependências formam um ciclo. Remova uma dependência para visualizar o fluxo."
		} else if err == nil {
			data["Flow"] = layout
		}
	}

	return data
}
