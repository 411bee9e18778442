package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gfmachado/painel/internal/model"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "painel-test")
	if err != nil {
		panic(err)
	}
	initDB(filepath.Join(dir, "test.db"))
	code := m.Run()
	db.Close()
	os.RemoveAll(dir)
	os.Exit(code)
}

// seedTask builds a workspace with one member, one project and one task,
// returning the member and the ids needed to hit the task routes.
func seedTask(t *testing.T) (*model.User, int64, int64) {
	t.Helper()
	u := &model.User{ID: "u-" + t.Name(), Email: strings.ToLower(t.Name()) + "@example.com", Name: "Tester"}
	if _, err := db.Exec("INSERT INTO users (id, email, name) VALUES (?, ?, ?)", u.ID, u.Email, u.Name); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	res, err := db.Exec("INSERT INTO workspaces (name) VALUES (?)", "WS "+t.Name())
	if err != nil {
		t.Fatalf("seed workspace: %v", err)
	}
	wsID, _ := res.LastInsertId()
	db.Exec("INSERT INTO workspace_members (workspace_id, user_id, role) VALUES (?, ?, 'owner')", wsID, u.ID)
	res, err = db.Exec("INSERT INTO projects (workspace_id, name) VALUES (?, ?)", wsID, "Projeto")
	if err != nil {
		t.Fatalf("seed project: %v", err)
	}
	pid, _ := res.LastInsertId()
	res, err = db.Exec(`INSERT INTO tasks (project_id, name, priority, status, due_date_current, estimated_minutes)
		VALUES (?, 'Tarefa', 2, 'Pendente', '2026-05-01', 60)`, pid)
	if err != nil {
		t.Fatalf("seed task: %v", err)
	}
	tid, _ := res.LastInsertId()
	return u, wsID, tid
}

func postTaskField(u *model.User, wsID, tid int64, form url.Values) *httptest.ResponseRecorder {
	r := httptest.NewRequest("POST", "/workspaces/"+strconv.FormatInt(wsID, 10)+"/tasks/"+strconv.FormatInt(tid, 10),
		strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.SetPathValue("id", strconv.FormatInt(wsID, 10))
	r.SetPathValue("tid", strconv.FormatInt(tid, 10))
	r = r.WithContext(context.WithValue(r.Context(), userKey, u))
	w := httptest.NewRecorder()
	handleUpdateTask(w, r)
	return w
}

func countRows(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestUpdateTaskRejectsInvalidFieldValues(t *testing.T) {
	u, wsID, tid := seedTask(t)
	tests := []struct {
		field, value string
	}{
		{"priority", "0"},
		{"priority", "9"},
		{"priority", "alta"},
		{"estimated_minutes", "-5"},
	}
	for _, tt := range tests {
		w := postTaskField(u, wsID, tid, url.Values{"field": {tt.field}, "value": {tt.value}})
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s=%q: status %d, want %d", tt.field, tt.value, w.Code, http.StatusBadRequest)
		}
	}
	task := taskInWorkspace(tid, wsID)
	if task.Priority != 2 || task.EstimatedMinutes != 60 {
		t.Errorf("rejected values mutated the task: priority=%d estimated=%d", task.Priority, task.EstimatedMinutes)
	}
	if n := countRows(t, "SELECT COUNT(*) FROM task_audit_logs WHERE task_id = ?", tid); n != 0 {
		t.Errorf("rejected values wrote %d audit rows", n)
	}
}

func TestUpdateTaskDueDateUnchangedIsNoop(t *testing.T) {
	u, wsID, tid := seedTask(t)

	w := postTaskField(u, wsID, tid, url.Values{
		"field": {"due_date_current"}, "value": {"2026-05-01"}, "reason": {"sem motivo"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status %d, want %d", w.Code, http.StatusSeeOther)
	}
	if n := countRows(t, "SELECT COUNT(*) FROM task_due_date_changes WHERE task_id = ?", tid); n != 0 {
		t.Errorf("unchanged due date recorded %d change rows", n)
	}
	if n := countRows(t, "SELECT COUNT(*) FROM task_audit_logs WHERE task_id = ?", tid); n != 0 {
		t.Errorf("unchanged due date wrote %d audit rows", n)
	}

	postTaskField(u, wsID, tid, url.Values{
		"field": {"due_date_current"}, "value": {"2026-05-10"}, "reason": {"cliente pediu"},
	})
	if n := countRows(t, "SELECT COUNT(*) FROM task_due_date_changes WHERE task_id = ?", tid); n != 1 {
		t.Errorf("real due date change recorded %d change rows, want 1", n)
	}
	if got := taskInWorkspace(tid, wsID).DueDateCurrent; got != "2026-05-10" {
		t.Errorf("due_date_current = %q, want 2026-05-10", got)
	}
}
