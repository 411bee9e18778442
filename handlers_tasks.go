package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gfmachado/painel/internal/gridfilter"
	"github.com/gfmachado/painel/internal/model"
)

func handleCreateTask(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		http.Error(w, "Descrição obrigatória", http.StatusBadRequest)
		return
	}
	pid, _ := strconv.ParseInt(r.FormValue("project_id"), 10, 64)
	if !projectInWorkspace(pid, ws.ID) {
		http.Error(w, "Projeto inválido", http.StatusBadRequest)
		return
	}
	priority, _ := strconv.Atoi(r.FormValue("priority"))
	if priority < 1 || priority > 4 {
		priority = 2
	}
	status := r.FormValue("status")
	if !validStatus(status) {
		status = model.StatusBacklog
	}
	estimated, _ := strconv.Atoi(r.FormValue("estimated_minutes"))

	res, err := db.Exec(`INSERT INTO tasks
		(project_id, name, sector, task_type, priority, status, start_date, due_date_original, estimated_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pid, name, r.FormValue("sector"), r.FormValue("task_type"), priority, status,
		r.FormValue("start_date"), r.FormValue("due_date"), estimated)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	tid, _ := res.LastInsertId()

	for _, role := range []string{model.RoleExecutor, model.RoleValidator, model.RoleInform} {
		for _, uid := range r.Form[role+"_ids"] {
			db.Exec("INSERT OR IGNORE INTO task_assignments (task_id, user_id, role) VALUES (?, ?, ?)", tid, uid, role)
		}
	}
	auditChange(tid, "created", "", name, u.ID)

	redirectToTasks(w, r, ws.ID)
}

func validStatus(s string) bool {
	for _, st := range model.Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// handleUpdateTask dispatches a single-field mutation. Every change
// writes an audit row; status and due-date changes carry extra
// bookkeeping (completion stamp, due-date-change record).
func handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	tid, _ := strconv.ParseInt(r.PathValue("tid"), 10, 64)
	task := taskInWorkspace(tid, ws.ID)
	if task == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	field := r.FormValue("field")
	value := r.FormValue("value")

	switch field {
	case "name":
		if strings.TrimSpace(value) == "" {
			http.Error(w, "Descrição obrigatória", http.StatusBadRequest)
			return
		}
		updateTaskField(tid, "name", task.Name, value, u.ID)
	case "sector":
		updateTaskField(tid, "sector", task.Sector, value, u.ID)
	case "task_type":
		updateTaskField(tid, "task_type", task.TaskType, value, u.ID)
	case "priority":
		p, _ := strconv.Atoi(value)
		if p < 1 || p > 4 {
			http.Error(w, "Prioridade inválida", http.StatusBadRequest)
			return
		}
		updateTaskField(tid, "priority", strconv.Itoa(task.Priority), value, u.ID)
	case "status":
		if !validStatus(value) {
			http.Error(w, "Status inválido", http.StatusBadRequest)
			return
		}
		changeTaskStatus(task, value, u.ID)
	case "start_date":
		updateTaskField(tid, "start_date", task.StartDate, value, u.ID)
	case "due_date_original":
		updateTaskField(tid, "due_date_original", task.DueDateOriginal, value, u.ID)
	case "due_date_current":
		if value != task.DueDateCurrent {
			db.Exec("UPDATE tasks SET due_date_current = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", value, tid)
			db.Exec("INSERT INTO task_due_date_changes (task_id, previous_date, new_date, reason) VALUES (?, ?, ?, ?)",
				tid, task.EffectiveDueDate(), value, r.FormValue("reason"))
			auditChange(tid, "due_date_current", task.DueDateCurrent, value, u.ID)
		}
	case "estimated_minutes":
		m, _ := strconv.Atoi(value)
		if m < 0 {
			http.Error(w, "Estimativa inválida", http.StatusBadRequest)
			return
		}
		updateTaskField(tid, "estimated_minutes", strconv.Itoa(task.EstimatedMinutes), strconv.Itoa(m), u.ID)
	case "executor_ids", "validator_ids", "inform_ids":
		setAssignments(tid, strings.TrimSuffix(field, "_ids"), r.Form["value"], u.ID)
	default:
		http.Error(w, "Campo desconhecido", http.StatusBadRequest)
		return
	}

	redirectToTasks(w, r, ws.ID)
}

// updateTaskField writes the column and its audit row. Column names are
// fixed by the callers above, never user input.
func updateTaskField(tid int64, column, oldValue, newValue, by string) {
	if oldValue == newValue {
		return
	}
	db.Exec("UPDATE tasks SET "+column+" = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", newValue, tid)
	auditChange(tid, column, oldValue, newValue, by)
}

func changeTaskStatus(task *model.Task, status, by string) {
	if task.Status == status {
		return
	}
	completion := task.CompletionDate
	if status == model.StatusConcluida {
		completion = time.Now().Format("2006-01-02")
	} else if task.Status == model.StatusConcluida {
		completion = ""
	}
	db.Exec("UPDATE tasks SET status = ?, completion_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		status, completion, task.ID)
	auditChange(task.ID, "status", task.Status, status, by)
}

func setAssignments(tid int64, role string, userIDs []string, by string) {
	db.Exec("DELETE FROM task_assignments WHERE task_id = ? AND role = ?", tid, role)
	for _, uid := range userIDs {
		if uid == "" {
			continue
		}
		db.Exec("INSERT OR IGNORE INTO task_assignments (task_id, user_id, role) VALUES (?, ?, ?)", tid, uid, role)
	}
	auditChange(tid, role+"_ids", "", strings.Join(userIDs, ","), by)
}

func auditChange(taskID int64, field, oldValue, newValue, by string) {
	db.Exec("INSERT INTO task_audit_logs (task_id, field, old_value, new_value, changed_by) VALUES (?, ?, ?, ?, ?)",
		taskID, field, oldValue, newValue, by)
}

func handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	tid, _ := strconv.ParseInt(r.PathValue("tid"), 10, 64)
	if taskInWorkspace(tid, ws.ID) == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	db.Exec("DELETE FROM tasks WHERE id = ?", tid)
	redirectToTasks(w, r, ws.ID)
}

func handleTask(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	tid, _ := strconv.ParseInt(r.PathValue("tid"), 10, 64)
	task := taskInWorkspace(tid, ws.ID)
	if task == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	var running *model.TaskTimer
	var t model.TaskTimer
	err := db.QueryRow("SELECT id, task_id, user_id, started_at FROM task_timers WHERE task_id = ? AND user_id = ?",
		tid, u.ID).Scan(&t.ID, &t.TaskID, &t.UserID, &t.StartedAt)
	if err == nil {
		running = &t
	}

	var assigneeIDs []string
	assigneeIDs = append(assigneeIDs, task.ExecutorIDs...)
	assigneeIDs = append(assigneeIDs, task.ValidatorIDs...)
	assigneeIDs = append(assigneeIDs, task.InformIDs...)

	renderTemplate(w, "task.html", map[string]any{
		"User":           u,
		"Workspace":      ws,
		"Task":           task,
		"Assignees":      profilesWithEmail(assigneeIDs),
		"Situation":      gridfilter.Situation(*task, time.Now()),
		"Comments":       taskComments(tid),
		"TimeEntries":    taskTimeEntries(tid),
		"DueDateChanges": taskDueDateChanges(tid),
		"Audits":         taskAudits(tid),
		"Dependencies":   dependencyOptions(ws.ID, tid),
		"Members":        workspaceMembers(ws.ID),
		"Projects":       workspaceProjects(ws.ID),
		"Sectors":        workspaceTags(ws.ID, "sector"),
		"TaskTypes":      workspaceTags(ws.ID, "task_type"),
		"Statuses":       model.Statuses,
		"RunningTimer":   running,
	})
}

// Comments

func handleAddComment(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	tid, _ := strconv.ParseInt(r.PathValue("tid"), 10, 64)
	if taskInWorkspace(tid, ws.ID) == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	content := strings.TrimSpace(r.FormValue("content"))
	if content == "" {
		http.Error(w, "Comentário vazio", http.StatusBadRequest)
		return
	}
	db.Exec("INSERT INTO task_comments (task_id, content, created_by) VALUES (?, ?, ?)", tid, content, u.ID)
	http.Redirect(w, r, taskPath(ws.ID, tid), http.StatusSeeOther)
}

// handleEditComment updates the content; only the author may edit.
func handleEditComment(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	tid, _ := strconv.ParseInt(r.PathValue("tid"), 10, 64)
	cid, _ := strconv.ParseInt(r.PathValue("cid"), 10, 64)
	content := strings.TrimSpace(r.FormValue("content"))
	if content == "" {
		http.Error(w, "Comentário vazio", http.StatusBadRequest)
		return
	}
	res, err := db.Exec(`UPDATE task_comments SET content = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND task_id = ? AND created_by = ?`, content, cid, tid, u.ID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	http.Redirect(w, r, taskPath(ws.ID, tid), http.StatusSeeOther)
}

func handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	tid, _ := strconv.ParseInt(r.PathValue("tid"), 10, 64)
	cid, _ := strconv.ParseInt(r.PathValue("cid"), 10, 64)
	res, err := db.Exec("DELETE FROM task_comments WHERE id = ? AND task_id = ? AND created_by = ?", cid, tid, u.ID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	redirectToTask(w, r, ws.ID, tid)
}

// Execution periods

func handleAddPeriod(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	tid, _ := strconv.ParseInt(r.PathValue("tid"), 10, 64)
	if taskInWorkspace(tid, ws.ID) == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	date := r.FormValue("date")
	start := r.FormValue("start_time")
	end := r.FormValue("end_time")
	if date == "" || start == "" || end == "" {
		http.Error(w, "Data e horários obrigatórios", http.StatusBadRequest)
		return
	}
	db.Exec("INSERT INTO task_periods (task_id, date, start_time, end_time) VALUES (?, ?, ?, ?)",
		tid, date, start, end)
	http.Redirect(w, r, taskPath(ws.ID, tid), http.StatusSeeOther)
}

func handleDeletePeriod(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	tid, _ := strconv.ParseInt(r.PathValue("tid"), 10, 64)
	pid, _ := strconv.ParseInt(r.PathValue("pid"), 10, 64)
	db.Exec("DELETE FROM task_periods WHERE id = ? AND task_id = ?", pid, tid)
	redirectToTask(w, r, ws.ID, tid)
}

// Dependencies

// handleAddDependency links a prerequisite. Self-edges are rejected;
// full cycle detection happens at render time in the flow view.
func handleAddDependency(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	tid, _ := strconv.ParseInt(r.PathValue("tid"), 10, 64)
	dep, _ := strconv.ParseInt(r.FormValue("depends_on"), 10, 64)
	if dep == tid {
		http.Error(w, "Uma tarefa não pode depender dela mesma", http.StatusBadRequest)
		return
	}
	if taskInWorkspace(tid, ws.ID) == nil || taskInWorkspace(dep, ws.ID) == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	db.Exec("INSERT OR IGNORE INTO task_dependencies (task_id, depends_on) VALUES (?, ?)", tid, dep)
	http.Redirect(w, r, taskPath(ws.ID, tid), http.StatusSeeOther)
}

func handleDeleteDependency(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	tid, _ := strconv.ParseInt(r.PathValue("tid"), 10, 64)
	dep, _ := strconv.ParseInt(r.PathValue("dep"), 10, 64)
	db.Exec("DELETE FROM task_dependencies WHERE task_id = ? AND depends_on = ?", tid, dep)
	redirectToTask(w, r, ws.ID, tid)
}

// Time tracking

func handleStartTimer(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	tid, _ := strconv.ParseInt(r.PathValue("tid"), 10, 64)
	if taskInWorkspace(tid, ws.ID) == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	db.Exec("INSERT OR IGNORE INTO task_timers (task_id, user_id, started_at) VALUES (?, ?, ?)",
		tid, u.ID, time.Now().UTC())
	http.Redirect(w, r, taskPath(ws.ID, tid), http.StatusSeeOther)
}

// handleStopTimer closes the running timer. Duration is the timestamp
// delta at stop time; the ticking display in the page is cosmetic only.
func handleStopTimer(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	tid, _ := strconv.ParseInt(r.PathValue("tid"), 10, 64)

	var timerID int64
	var startedAt time.Time
	err := db.QueryRow("SELECT id, started_at FROM task_timers WHERE task_id = ? AND user_id = ?", tid, u.ID).
		Scan(&timerID, &startedAt)
	if err != nil {
		http.Error(w, "Nenhum cronômetro em andamento", http.StatusBadRequest)
		return
	}
	now := time.Now().UTC()
	minutes := int(now.Sub(startedAt).Minutes())
	if minutes < 1 {
		minutes = 1
	}
	db.Exec(`INSERT INTO task_time_entries (task_id, user_id, started_at, ended_at, duration_minutes, source, note)
		VALUES (?, ?, ?, ?, ?, 'timer', ?)`, tid, u.ID, startedAt, now, minutes, r.FormValue("note"))
	db.Exec("DELETE FROM task_timers WHERE id = ?", timerID)
	http.Redirect(w, r, taskPath(ws.ID, tid), http.StatusSeeOther)
}

func handleAddTimeEntry(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	ws, role := workspaceForUser(r.PathValue("id"), u)
	if ws == nil || role == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	tid, _ := strconv.ParseInt(r.PathValue("tid"), 10, 64)
	if taskInWorkspace(tid, ws.ID) == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	minutes, _ := strconv.Atoi(r.FormValue("duration_minutes"))
	if minutes <= 0 {
		http.Error(w, "Duração inválida", http.StatusBadRequest)
		return
	}
	now := time.Now().UTC()
	db.Exec(`INSERT INTO task_time_entries (task_id, user_id, started_at, ended_at, duration_minutes, source, note)
		VALUES (?, ?, ?, ?, ?, 'manual', ?)`,
		tid, u.ID, now.Add(-time.Duration(minutes)*time.Minute), now, minutes, r.FormValue("note"))
	http.Redirect(w, r, taskPath(ws.ID, tid), http.StatusSeeOther)
}

func taskPath(wsID, tid int64) string {
	return wsPath(wsID, "/tasks/"+strconv.FormatInt(tid, 10))
}

func redirectToTask(w http.ResponseWriter, r *http.Request, wsID, tid int64) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", taskPath(wsID, tid))
		return
	}
	http.Redirect(w, r, taskPath(wsID, tid), http.StatusSeeOther)
}

// redirectToTasks sends the browser back to the task grid, re-rendering
// the partial when the request came from HTMX.
func redirectToTasks(w http.ResponseWriter, r *http.Request, wsID int64) {
	if isHTMX(r) {
		renderTasksPartial(w, r, wsID)
		return
	}
	target := r.FormValue("return")
	if target == "" {
		target = wsPath(wsID, "/tasks")
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Loaders

func projectInWorkspace(projectID, wsID int64) bool {
	var ok bool
	db.QueryRow("SELECT EXISTS(SELECT 1 FROM projects WHERE id = ? AND workspace_id = ?)", projectID, wsID).Scan(&ok)
	return ok
}

// workspaceTasks loads the denormalized in-memory task list the engines
// operate on: base rows plus assignments, periods, dependencies and
// accumulated time, in four batch queries.
func workspaceTasks(wsID int64) []model.Task {
	rows, err := db.Query(`
		SELECT t.id, t.project_id, p.name, t.name, t.sector, t.task_type, t.priority, t.status,
			t.start_date, t.due_date_original, t.due_date_current, t.completion_date,
			t.estimated_minutes, t.created_at, t.updated_at
		FROM tasks t
		JOIN projects p ON p.id = t.project_id
		WHERE p.workspace_id = ?
		ORDER BY t.created_at, t.id`, wsID)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var tasks []model.Task
	index := make(map[int64]int)
	for rows.Next() {
		var t model.Task
		rows.Scan(&t.ID, &t.ProjectID, &t.ProjectName, &t.Name, &t.Sector, &t.TaskType,
			&t.Priority, &t.Status, &t.StartDate, &t.DueDateOriginal, &t.DueDateCurrent,
			&t.CompletionDate, &t.EstimatedMinutes, &t.CreatedAt, &t.UpdatedAt)
		index[t.ID] = len(tasks)
		tasks = append(tasks, t)
	}
	if len(tasks) == 0 {
		return nil
	}

	arows, err := db.Query(`
		SELECT a.task_id, a.user_id, a.role FROM task_assignments a
		JOIN tasks t ON t.id = a.task_id
		JOIN projects p ON p.id = t.project_id
		WHERE p.workspace_id = ?`, wsID)
	if err == nil {
		defer arows.Close()
		for arows.Next() {
			var tid int64
			var uid, role string
			arows.Scan(&tid, &uid, &role)
			i, ok := index[tid]
			if !ok {
				continue
			}
			switch role {
			case model.RoleExecutor:
				tasks[i].ExecutorIDs = append(tasks[i].ExecutorIDs, uid)
			case model.RoleValidator:
				tasks[i].ValidatorIDs = append(tasks[i].ValidatorIDs, uid)
			case model.RoleInform:
				tasks[i].InformIDs = append(tasks[i].InformIDs, uid)
			}
		}
	}

	prows, err := db.Query(`
		SELECT pe.id, pe.task_id, pe.date, pe.start_time, pe.end_time FROM task_periods pe
		JOIN tasks t ON t.id = pe.task_id
		JOIN projects p ON p.id = t.project_id
		WHERE p.workspace_id = ?
		ORDER BY pe.date, pe.start_time`, wsID)
	if err == nil {
		defer prows.Close()
		for prows.Next() {
			var ep model.ExecutionPeriod
			prows.Scan(&ep.ID, &ep.TaskID, &ep.Date, &ep.StartTime, &ep.EndTime)
			if i, ok := index[ep.TaskID]; ok {
				tasks[i].Periods = append(tasks[i].Periods, ep)
			}
		}
	}

	drows, err := db.Query(`
		SELECT d.task_id, d.depends_on FROM task_dependencies d
		JOIN tasks t ON t.id = d.task_id
		JOIN projects p ON p.id = t.project_id
		WHERE p.workspace_id = ?`, wsID)
	if err == nil {
		defer drows.Close()
		for drows.Next() {
			var tid, dep int64
			drows.Scan(&tid, &dep)
			if i, ok := index[tid]; ok {
				tasks[i].Dependencies = append(tasks[i].Dependencies, dep)
			}
		}
	}

	mrows, err := db.Query(`
		SELECT e.task_id, SUM(e.duration_minutes) FROM task_time_entries e
		JOIN tasks t ON t.id = e.task_id
		JOIN projects p ON p.id = t.project_id
		WHERE p.workspace_id = ?
		GROUP BY e.task_id`, wsID)
	if err == nil {
		defer mrows.Close()
		for mrows.Next() {
			var tid int64
			var minutes int
			mrows.Scan(&tid, &minutes)
			if i, ok := index[tid]; ok {
				tasks[i].ActualMinutes = minutes
			}
		}
	}

	return tasks
}

func taskInWorkspace(tid, wsID int64) *model.Task {
	for _, t := range workspaceTasks(wsID) {
		if t.ID == tid {
			return &t
		}
	}
	return nil
}

func taskComments(tid int64) []model.TaskComment {
	rows, err := db.Query(`
		SELECT c.id, c.task_id, c.content, c.created_by, c.created_at, c.updated_at, u.name, u.email
		FROM task_comments c
		JOIN users u ON u.id = c.created_by
		WHERE c.task_id = ?
		ORDER BY c.created_at`, tid)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []model.TaskComment
	for rows.Next() {
		var c model.TaskComment
		var u model.User
		rows.Scan(&c.ID, &c.TaskID, &c.Content, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt, &u.Name, &u.Email)
		u.ID = c.CreatedBy
		c.Author = &u
		out = append(out, c)
	}
	return out
}

func taskTimeEntries(tid int64) []model.TaskTimeEntry {
	rows, err := db.Query(`
		SELECT id, task_id, user_id, started_at, ended_at, duration_minutes, source, note
		FROM task_time_entries
		WHERE task_id = ?
		ORDER BY started_at DESC`, tid)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []model.TaskTimeEntry
	for rows.Next() {
		var e model.TaskTimeEntry
		rows.Scan(&e.ID, &e.TaskID, &e.UserID, &e.StartedAt, &e.EndedAt, &e.DurationMinutes, &e.Source, &e.Note)
		out = append(out, e)
	}
	return out
}

func taskDueDateChanges(tid int64) []model.TaskDueDateChange {
	rows, err := db.Query(`
		SELECT id, task_id, previous_date, new_date, reason, created_at
		FROM task_due_date_changes
		WHERE task_id = ?
		ORDER BY created_at DESC`, tid)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []model.TaskDueDateChange
	for rows.Next() {
		var c model.TaskDueDateChange
		rows.Scan(&c.ID, &c.TaskID, &c.PreviousDate, &c.NewDate, &c.Reason, &c.CreatedAt)
		out = append(out, c)
	}
	return out
}

func taskAudits(tid int64) []model.TaskAuditLog {
	rows, err := db.Query(`
		SELECT id, task_id, field, old_value, new_value, changed_by, created_at
		FROM task_audit_logs
		WHERE task_id = ?
		ORDER BY created_at DESC`, tid)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []model.TaskAuditLog
	for rows.Next() {
		var a model.TaskAuditLog
		rows.Scan(&a.ID, &a.TaskID, &a.Field, &a.OldValue, &a.NewValue, &a.ChangedBy, &a.CreatedAt)
		out = append(out, a)
	}
	return out
}

func workspaceAudits(wsID int64) []model.TaskAuditLog {
	rows, err := db.Query(`
		SELECT a.id, a.task_id, a.field, a.old_value, a.new_value, a.changed_by, a.created_at
		FROM task_audit_logs a
		JOIN tasks t ON t.id = a.task_id
		JOIN projects p ON p.id = t.project_id
		WHERE p.workspace_id = ?`, wsID)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []model.TaskAuditLog
	for rows.Next() {
		var a model.TaskAuditLog
		rows.Scan(&a.ID, &a.TaskID, &a.Field, &a.OldValue, &a.NewValue, &a.ChangedBy, &a.CreatedAt)
		out = append(out, a)
	}
	return out
}

// dependencyOptions lists the other tasks in the workspace, flagging the
// ones the task already depends on.
type dependencyOption struct {
	Task  model.Task
	IsDep bool
}

func dependencyOptions(wsID, tid int64) []dependencyOption {
	var current map[int64]bool
	tasks := workspaceTasks(wsID)
	for _, t := range tasks {
		if t.ID == tid {
			current = make(map[int64]bool, len(t.Dependencies))
			for _, d := range t.Dependencies {
				current[d] = true
			}
		}
	}
	var out []dependencyOption
	for _, t := range tasks {
		if t.ID == tid {
			continue
		}
		out = append(out, dependencyOption{Task: t, IsDep: current[t.ID]})
	}
	return out
}
