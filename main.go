package main

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
)

//go:embed static/*
var staticFS embed.FS

func main() {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	loadConfig(configPath)
	setupLogger()
	initDB(cfg.DBPath)
	initTemplates()

	// Sync admin users from config
	for _, email := range cfg.AdminEmails {
		email = strings.TrimSpace(strings.ToLower(email))
		if email == "" {
			continue
		}
		var exists bool
		db.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)", email).Scan(&exists)
		if !exists {
			name := strings.Split(email, "@")[0]
			db.Exec("INSERT INTO users (id, email, name, role) VALUES (?, ?, ?, 'admin')",
				uuid.NewString(), email, name)
			logger.Infof("Created admin user: %s", email)
		} else {
			db.Exec("UPDATE users SET role = 'admin' WHERE email = ?", email)
		}
	}

	mux := http.NewServeMux()

	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Auth routes (public)
	mux.HandleFunc("GET /login", handleLogin)
	mux.HandleFunc("POST /login", handleLogin)
	mux.HandleFunc("GET /invite/{token}", handleInvite)
	mux.HandleFunc("POST /invite/{token}", handleInvite)
	mux.HandleFunc("POST /logout", handleLogout)

	// Authenticated routes
	app := http.NewServeMux()
	app.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/workspaces", http.StatusSeeOther)
	})
	app.HandleFunc("GET /workspaces", handleWorkspaces)
	app.HandleFunc("POST /workspaces", handleCreateWorkspace)
	app.HandleFunc("GET /workspaces/{id}", handleWorkspace)
	app.HandleFunc("POST /workspaces/{id}", handleUpdateWorkspace)
	app.HandleFunc("DELETE /workspaces/{id}", handleDeleteWorkspace)
	app.HandleFunc("GET /workspaces/{id}/settings", handleWorkspaceSettings)
	app.HandleFunc("POST /workspaces/{id}/settings", handleWorkspaceSettings)
	app.HandleFunc("GET /workspaces/{id}/print", handleDashboardPrint)
	app.HandleFunc("POST /workspaces/{id}/summary", handleSummary)
	app.HandleFunc("GET /workspaces/{id}/export.csv", handleExportCSV)

	// Projects
	app.HandleFunc("POST /workspaces/{id}/projects", handleCreateProject)
	app.HandleFunc("POST /workspaces/{id}/projects/{pid}", handleUpdateProject)
	app.HandleFunc("DELETE /workspaces/{id}/projects/{pid}", handleDeleteProject)

	// Task grid and views
	app.HandleFunc("GET /workspaces/{id}/tasks", handleTasks)
	app.HandleFunc("POST /workspaces/{id}/tasks", handleCreateTask)
	app.HandleFunc("GET /workspaces/{id}/tasks/{tid}", handleTask)
	app.HandleFunc("POST /workspaces/{id}/tasks/{tid}", handleUpdateTask)
	app.HandleFunc("PUT /workspaces/{id}/tasks/{tid}", handleUpdateTask)
	app.HandleFunc("DELETE /workspaces/{id}/tasks/{tid}", handleDeleteTask)

	// Comments
	app.HandleFunc("POST /workspaces/{id}/tasks/{tid}/comments", handleAddComment)
	app.HandleFunc("POST /workspaces/{id}/tasks/{tid}/comments/{cid}", handleEditComment)
	app.HandleFunc("DELETE /workspaces/{id}/tasks/{tid}/comments/{cid}", handleDeleteComment)

	// Execution periods
	app.HandleFunc("POST /workspaces/{id}/tasks/{tid}/periods", handleAddPeriod)
	app.HandleFunc("DELETE /workspaces/{id}/tasks/{tid}/periods/{pid}", handleDeletePeriod)

	// Dependencies
	app.HandleFunc("POST /workspaces/{id}/tasks/{tid}/dependencies", handleAddDependency)
	app.HandleFunc("DELETE /workspaces/{id}/tasks/{tid}/dependencies/{dep}", handleDeleteDependency)

	// Time tracking
	app.HandleFunc("POST /workspaces/{id}/tasks/{tid}/timer/start", handleStartTimer)
	app.HandleFunc("POST /workspaces/{id}/tasks/{tid}/timer/stop", handleStopTimer)
	app.HandleFunc("POST /workspaces/{id}/tasks/{tid}/time", handleAddTimeEntry)

	// Feed
	app.HandleFunc("GET /workspaces/{id}/feed", handleFeed)
	app.HandleFunc("POST /workspaces/{id}/feed", handleCreatePost)
	app.HandleFunc("POST /workspaces/{id}/feed/{pid}", handleUpdatePost)
	app.HandleFunc("DELETE /workspaces/{id}/feed/{pid}", handleDeletePost)

	mux.Handle("/", authMiddleware(app))

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Infof("Painel running on %s", addr)
	logger.Fatal(http.ListenAndServe(addr, mux))
}
