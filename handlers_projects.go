package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gfmachado/painel/internal/model"
)

func handleCreateProject(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		http.Error(w, "Nome obrigatório", http.StatusBadRequest)
		return
	}
	db.Exec("INSERT INTO projects (workspace_id, name, summary) VALUES (?, ?, ?)",
		ws.ID, name, strings.TrimSpace(r.FormValue("summary")))
	http.Redirect(w, r, wsPath(ws.ID, ""), http.StatusSeeOther)
}

func handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	pid, _ := strconv.ParseInt(r.PathValue("pid"), 10, 64)
	field := r.FormValue("field")
	value := r.FormValue("value")

	switch field {
	case "name":
		if strings.TrimSpace(value) == "" {
			http.Error(w, "Nome obrigatório", http.StatusBadRequest)
			return
		}
		db.Exec("UPDATE projects SET name = ? WHERE id = ? AND workspace_id = ?", value, pid, ws.ID)
	case "summary":
		db.Exec("UPDATE projects SET summary = ? WHERE id = ? AND workspace_id = ?", value, pid, ws.ID)
	case "status":
		db.Exec("UPDATE projects SET status = ? WHERE id = ? AND workspace_id = ?", value, pid, ws.ID)
	case "view_mode":
		switch value {
		case "list", "kanban", "calendar", "flow":
			db.Exec("UPDATE projects SET view_mode = ? WHERE id = ? AND workspace_id = ?", value, pid, ws.ID)
		}
	}
	http.Redirect(w, r, wsPath(ws.ID, ""), http.StatusSeeOther)
}

func handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || (role != "owner" && u.Role != "admin") {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	pid, _ := strconv.ParseInt(r.PathValue("pid"), 10, 64)
	db.Exec("DELETE FROM projects WHERE id = ? AND workspace_id = ?", pid, ws.ID)
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", wsPath(ws.ID, ""))
		return
	}
	http.Redirect(w, r, wsPath(ws.ID, ""), http.StatusSeeOther)
}

func workspaceProjects(workspaceID int64) []model.Project {
	rows, err := db.Query(`
		SELECT id, workspace_id, name, summary, status, view_mode, created_at
		FROM projects
		WHERE workspace_id = ?
		ORDER BY name`, workspaceID)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []model.Project
	for rows.Next() {
		var p model.Project
		rows.Scan(&p.ID, &p.WorkspaceID, &p.Name, &p.Summary, &p.Status, &p.ViewMode, &p.CreatedAt)
		out = append(out, p)
	}
	return out
}
