package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gfmachado/painel/internal/gridfilter"
	"github.com/gfmachado/painel/internal/model"
	"github.com/gfmachado/painel/internal/projection"
	"github.com/gfmachado/painel/internal/summary"
)

func dashboardData(ws *model.Workspace, excludeDone bool) map[string]any {
	now := time.Now()
	tasks := workspaceTasks(ws.ID)
	d := projection.Compute(tasks, workspaceAudits(ws.ID), projection.Config{
		MemberNames: memberNameMap(ws.ID),
		SectorColor: tagColorMap(ws.ID, "sector"),
		TypeColor:   tagColorMap(ws.ID, "task_type"),
		ExcludeDone: excludeDone,
	}, now)
	return map[string]any{
		"Workspace":   ws,
		"Dashboard":   d,
		"ExcludeDone": excludeDone,
		"Projects":    workspaceProjects(ws.ID),
		"Members":     workspaceMembers(ws.ID),
		"Today":       now.Format("02/01/2006"),
	}
}

func handleWorkspace(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	ws.MemberRole = role
	data := dashboardData(ws, r.URL.Query().Get("open_only") == "1")
	data["User"] = u
	data["IsOwner"] = role == "owner" || role == "admin"
	if isHTMX(r) {
		renderTemplate(w, "dashboard_panels.html", data)
		return
	}
	renderTemplate(w, "dashboard.html", data)
}

// handleDashboardPrint renders the dashboard without chrome for the
// browser's print-to-PDF.
func handleDashboardPrint(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	data := dashboardData(ws, false)
	data["User"] = u
	renderTemplate(w, "dashboard_print.html", data)
}

// handleSummary calls the external summarization relay for the given
// date range. Failures become the error text of the partial; nothing is
// retried, the user re-clicks to try again.
func handleSummary(w http.ResponseWriter, r *http.Request) {
	const op = "dashboard.handleSummary"
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if cfg.Summary.Endpoint == "" {
		renderTemplate(w, "summary.html", map[string]any{"Error": "Serviço de resumo não configurado"})
		return
	}

	from := r.FormValue("from")
	to := r.FormValue("to")
	if from == "" || to == "" {
		renderTemplate(w, "summary.html", map[string]any{"Error": "Informe o período do resumo"})
		return
	}

	now := time.Now()
	req := summary.Request{Workspace: ws.Name, From: from, To: to}
	for _, t := range workspaceTasks(ws.ID) {
		req.Tasks = append(req.Tasks, summary.TaskLine{
			Name:      t.Name,
			Status:    t.Status,
			Sector:    t.Sector,
			DueDate:   t.EffectiveDueDate(),
			Situation: gridfilter.Situation(t, now),
		})
	}

	client := summary.NewClient(cfg.Summary.Endpoint, cfg.Summary.APIKey, cfg.Summary.Model)
	text, err := client.Generate(r.Context(), req)
	if err != nil {
		logger.WithField("op", op).WithError(err).Warn("summary generation failed")
		var se *summary.Error
		msg := "Falha ao gerar o resumo"
		if errors.As(err, &se) {
			msg = se.UserMessage()
		}
		renderTemplate(w, "summary.html", map[string]any{"Error": msg})
		return
	}
	renderTemplate(w, "summary.html", map[string]any{"Summary": text})
}
