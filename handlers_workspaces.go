package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gfmachado/painel/internal/model"
	"github.com/google/uuid"
)

func handleWorkspaces(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	renderTemplate(w, "workspaces.html", map[string]any{
		"User":       u,
		"Workspaces": userWorkspaces(u),
	})
}

func handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		http.Error(w, "Nome obrigatório", http.StatusBadRequest)
		return
	}
	desc := strings.TrimSpace(r.FormValue("description"))

	res, err := db.Exec("INSERT INTO workspaces (name, description) VALUES (?, ?)", name, desc)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	wid, _ := res.LastInsertId()
	db.Exec("INSERT INTO workspace_members (workspace_id, user_id, role) VALUES (?, ?, 'owner')", wid, u.ID)

	http.Redirect(w, r, "/workspaces/"+strconv.FormatInt(wid, 10), http.StatusSeeOther)
}

func handleUpdateWorkspace(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || (role != "owner" && u.Role != "admin") {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		http.Error(w, "Nome obrigatório", http.StatusBadRequest)
		return
	}
	db.Exec("UPDATE workspaces SET name = ?, description = ? WHERE id = ?",
		name, strings.TrimSpace(r.FormValue("description")), ws.ID)
	http.Redirect(w, r, wsPath(ws.ID, "/settings"), http.StatusSeeOther)
}

// handleDeleteWorkspace removes the workspace; projects, tasks and
// everything below go with it via the cascade.
func handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || (role != "owner" && u.Role != "admin") {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	db.Exec("DELETE FROM workspaces WHERE id = ?", ws.ID)
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/workspaces")
		return
	}
	http.Redirect(w, r, "/workspaces", http.StatusSeeOther)
}

func handleWorkspaceSettings(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || (role != "owner" && u.Role != "admin") {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if r.Method == "POST" {
		switch r.FormValue("action") {
		case "invite_member":
			email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
			memberRole := r.FormValue("role")
			if memberRole != "owner" {
				memberRole = "member"
			}
			if email == "" {
				http.Error(w, "Email obrigatório", http.StatusBadRequest)
				return
			}
			token := uuid.NewString()
			db.Exec("INSERT INTO workspace_invites (workspace_id, email, role, token) VALUES (?, ?, ?, ?)",
				ws.ID, email, memberRole, token)
			go sendInviteEmail(email, token, ws.Name)
		case "remove_member":
			db.Exec("DELETE FROM workspace_members WHERE workspace_id = ? AND user_id = ?",
				ws.ID, r.FormValue("user_id"))
		case "change_role":
			memberRole := r.FormValue("role")
			if memberRole == "owner" || memberRole == "member" {
				db.Exec("UPDATE workspace_members SET role = ? WHERE workspace_id = ? AND user_id = ?",
					memberRole, ws.ID, r.FormValue("user_id"))
			}
		case "add_tag":
			kind := r.FormValue("kind")
			name := strings.TrimSpace(r.FormValue("name"))
			color := r.FormValue("color")
			if (kind == "sector" || kind == "task_type") && name != "" {
				if color == "" {
					color = "#94a3b8"
				}
				db.Exec("INSERT OR REPLACE INTO workspace_tags (workspace_id, kind, name, color) VALUES (?, ?, ?, ?)",
					ws.ID, kind, name, color)
			}
		case "remove_tag":
			db.Exec("DELETE FROM workspace_tags WHERE id = ? AND workspace_id = ?",
				r.FormValue("tag_id"), ws.ID)
		}
		http.Redirect(w, r, wsPath(ws.ID, "/settings"), http.StatusSeeOther)
		return
	}

	renderTemplate(w, "workspace_settings.html", map[string]any{
		"User":      u,
		"Workspace": ws,
		"Members":   workspaceMembers(ws.ID),
		"Invites":   pendingInvites(ws.ID),
		"Sectors":   workspaceTags(ws.ID, "sector"),
		"TaskTypes": workspaceTags(ws.ID, "task_type"),
		"Projects":  workspaceProjects(ws.ID),
	})
}

func wsPath(id int64, suffix string) string {
	return "/workspaces/" + strconv.FormatInt(id, 10) + suffix
}

func userWorkspaces(u *model.User) []model.Workspace {
	var query string
	if u.Role == "admin" {
		query = `SELECT w.id, w.name, w.description, w.created_at, COALESCE(wm.role, 'admin')
			FROM workspaces w
			LEFT JOIN workspace_members wm ON wm.workspace_id = w.id AND wm.user_id = ?
			ORDER BY w.name`
	} else {
		query = `SELECT w.id, w.name, w.description, w.created_at, wm.role
			FROM workspaces w
			JOIN workspace_members wm ON wm.workspace_id = w.id AND wm.user_id = ?
			ORDER BY w.name`
	}
	rows, err := db.Query(query, u.ID)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []model.Workspace
	for rows.Next() {
		var ws model.Workspace
		rows.Scan(&ws.ID, &ws.Name, &ws.Description, &ws.CreatedAt, &ws.MemberRole)
		out = append(out, ws)
	}
	return out
}

func workspaceForUser(idStr string, u *model.User) (*model.Workspace, string) {
	id, _ := strconv.ParseInt(idStr, 10, 64)
	var ws model.Workspace
	err := db.QueryRow("SELECT id, name, description, created_at FROM workspaces WHERE id = ?", id).
		Scan(&ws.ID, &ws.Name, &ws.Description, &ws.CreatedAt)
	if err != nil {
		return nil, ""
	}
	var role string
	err = db.QueryRow("SELECT role FROM workspace_members WHERE workspace_id = ? AND user_id = ?", ws.ID, u.ID).Scan(&role)
	if err != nil {
		if u.Role == "admin" {
			return &ws, "admin"
		}
		return nil, ""
	}
	return &ws, role
}

func workspaceMembers(workspaceID int64) []model.WorkspaceMember {
	rows, err := db.Query(`
		SELECT wm.id, wm.workspace_id, wm.user_id, wm.role,
			u.id, u.email, u.name, u.title, u.avatar_url, u.phone, u.password_set, u.role
		FROM workspace_members wm
		JOIN users u ON u.id = wm.user_id
		WHERE wm.workspace_id = ?
		ORDER BY wm.role, u.name`, workspaceID)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []model.WorkspaceMember
	for rows.Next() {
		var m model.WorkspaceMember
		var u model.User
		rows.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role,
			&u.ID, &u.Email, &u.Name, &u.Title, &u.AvatarURL, &u.Phone, &u.PasswordSet, &u.Role)
		m.User = &u
		out = append(out, m)
	}
	return out
}

// profilesWithEmail is the member lookup behind assignment pickers and
// member lists, joining profile fields with the account email.
func profilesWithEmail(userIDs []string) []model.Profile {
	if len(userIDs) == 0 {
		return nil
	}
	query := `SELECT id, name, title, avatar_url, phone, email, password_set
		FROM users WHERE id IN (?` + strings.Repeat(",?", len(userIDs)-1) + `)`
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []model.Profile
	for rows.Next() {
		var p model.Profile
		rows.Scan(&p.UserID, &p.FullName, &p.Title, &p.AvatarURL, &p.Phone, &p.Email, &p.PasswordSet)
		out = append(out, p)
	}
	return out
}

func pendingInvites(workspaceID int64) []model.WorkspaceInvite {
	rows, err := db.Query(`
		SELECT id, workspace_id, email, role, token, created_at
		FROM workspace_invites
		WHERE workspace_id = ? AND accepted_at IS NULL
		ORDER BY created_at DESC`, workspaceID)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []model.WorkspaceInvite
	for rows.Next() {
		var inv model.WorkspaceInvite
		rows.Scan(&inv.ID, &inv.WorkspaceID, &inv.Email, &inv.Role, &inv.Token, &inv.CreatedAt)
		out = append(out, inv)
	}
	return out
}

func workspaceTags(workspaceID int64, kind string) []model.WorkspaceTag {
	rows, err := db.Query(`
		SELECT id, workspace_id, kind, name, color
		FROM workspace_tags
		WHERE workspace_id = ? AND kind = ?
		ORDER BY name`, workspaceID, kind)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []model.WorkspaceTag
	for rows.Next() {
		var t model.WorkspaceTag
		rows.Scan(&t.ID, &t.WorkspaceID, &t.Kind, &t.Name, &t.Color)
		out = append(out, t)
	}
	return out
}

func tagColorMap(workspaceID int64, kind string) map[string]string {
	out := make(map[string]string)
	for _, t := range workspaceTags(workspaceID, kind) {
		out[t.Name] = t.Color
	}
	return out
}

func memberNameMap(workspaceID int64) map[string]string {
	out := make(map[string]string)
	for _, m := range workspaceMembers(workspaceID) {
		if m.User != nil {
			out[m.UserID] = m.User.Name
		}
	}
	return out
}
