package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gfmachado/painel/internal/model"
)

func handleFeed(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	renderTemplate(w, "feed.html", map[string]any{
		"User":      u,
		"Workspace": ws,
		"Posts":     feedPosts(ws.ID),
		"Tasks":     workspaceTasks(ws.ID),
		"Members":   workspaceMembers(ws.ID),
	})
}

func handleCreatePost(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	content := strings.TrimSpace(r.FormValue("content"))
	if content == "" {
		http.Error(w, "Conteúdo obrigatório", http.StatusBadRequest)
		return
	}
	res, err := db.Exec("INSERT INTO feed_posts (workspace_id, content, created_by) VALUES (?, ?, ?)",
		ws.ID, content, u.ID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	pid, _ := res.LastInsertId()
	setPostMentions(pid, r.Form["task_id"], r.Form["mention_id"])
	http.Redirect(w, r, wsPath(ws.ID, "/feed"), http.StatusSeeOther)
}

// handleUpdatePost edits content and mentions; author only.
func handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	pid, _ := strconv.ParseInt(r.PathValue("pid"), 10, 64)
	content := strings.TrimSpace(r.FormValue("content"))
	if content == "" {
		http.Error(w, "Conteúdo obrigatório", http.StatusBadRequest)
		return
	}
	res, err := db.Exec(`UPDATE feed_posts SET content = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND workspace_id = ? AND created_by = ?`, content, pid, ws.ID, u.ID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	setPostMentions(pid, r.Form["task_id"], r.Form["mention_id"])
	http.Redirect(w, r, wsPath(ws.ID, "/feed"), http.StatusSeeOther)
}

func handleDeletePost(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	pid, _ := strconv.ParseInt(r.PathValue("pid"), 10, 64)
	res, err := db.Exec("DELETE FROM feed_posts WHERE id = ? AND workspace_id = ? AND created_by = ?",
		pid, ws.ID, u.ID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", wsPath(ws.ID, "/feed"))
		return
	}
	http.Redirect(w, r, wsPath(ws.ID, "/feed"), http.StatusSeeOther)
}

func setPostMentions(postID int64, taskIDs, userIDs []string) {
	db.Exec("DELETE FROM feed_post_tasks WHERE post_id = ?", postID)
	db.Exec("DELETE FROM feed_post_mentions WHERE post_id = ?", postID)
	for _, tid := range taskIDs {
		if tid != "" {
			db.Exec("INSERT OR IGNORE INTO feed_post_tasks (post_id, task_id) VALUES (?, ?)", postID, tid)
		}
	}
	for _, uid := range userIDs {
		if uid != "" {
			db.Exec("INSERT OR IGNORE INTO feed_post_mentions (post_id, user_id) VALUES (?, ?)", postID, uid)
		}
	}
}

func feedPosts(workspaceID int64) []model.FeedPost {
	rows, err := db.Query(`
		SELECT p.id, p.workspace_id, p.content, p.created_by, p.created_at, p.updated_at, u.name, u.email
		FROM feed_posts p
		JOIN users u ON u.id = p.created_by
		WHERE p.workspace_id = ?
		ORDER BY p.created_at DESC`, workspaceID)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var posts []model.FeedPost
	index := make(map[int64]int)
	for rows.Next() {
		var p model.FeedPost
		var u model.User
		rows.Scan(&p.ID, &p.WorkspaceID, &p.Content, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt, &u.Name, &u.Email)
		u.ID = p.CreatedBy
		p.Author = &u
		index[p.ID] = len(posts)
		posts = append(posts, p)
	}
	if len(posts) == 0 {
		return nil
	}

	trows, err := db.Query(`
		SELECT pt.post_id, pt.task_id FROM feed_post_tasks pt
		JOIN feed_posts p ON p.id = pt.post_id
		WHERE p.workspace_id = ?`, workspaceID)
	if err == nil {
		defer trows.Close()
		for trows.Next() {
			var pid, tid int64
			trows.Scan(&pid, &tid)
			if i, ok := index[pid]; ok {
				posts[i].TaskIDs = append(posts[i].TaskIDs, tid)
			}
		}
	}

	mrows, err := db.Query(`
		SELECT pm.post_id, pm.user_id FROM feed_post_mentions pm
		JOIN feed_posts p ON p.id = pm.post_id
		WHERE p.workspace_id = ?`, workspaceID)
	if err == nil {
		defer mrows.Close()
		for mrows.Next() {
			var pid int64
			var uid string
			mrows.Scan(&pid, &uid)
			if i, ok := index[pid]; ok {
				posts[i].MentionedUserIDs = append(posts[i].MentionedUserIDs, uid)
			}
		}
	}

	return posts
}
