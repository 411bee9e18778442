package model

import "time"

// Task statuses, in board column order.
const (
	StatusBacklog     = "Backlog"
	StatusPendente    = "Pendente"
	StatusEmExecucao  = "Em Execução"
	StatusEmValidacao = "Em Validação"
	StatusConcluida   = "Concluída"
	StatusBloqueada   = "Bloqueada"
	StatusCancelada   = "Cancelada"
)

// Statuses is the fixed column/bucket order used by every view.
var Statuses = []string{
	StatusBacklog,
	StatusPendente,
	StatusEmExecucao,
	StatusEmValidacao,
	StatusConcluida,
	StatusBloqueada,
	StatusCancelada,
}

// Derived situations (never stored).
const (
	SituationNoPrazo    = "No Prazo"
	SituationAtrasada   = "Atrasada"
	SituationFinalizada = "Finalizada"
)

// Priorities, 1..4.
var PriorityLabels = map[int]string{
	1: "Baixa",
	2: "Média",
	3: "Alta",
	4: "Urgente",
}

// Assignment roles on a task.
const (
	RoleExecutor  = "executor"
	RoleValidator = "validator"
	RoleInform    = "inform"
)

type User struct {
	ID          string
	Email       string
	Name        string
	Title       string
	AvatarURL   string
	Phone       string
	PasswordSet bool
	Role        string
	CreatedAt   time.Time
}

// Profile is the member lookup row returned by profilesWithEmail,
// mirroring the get_profiles_with_email join.
type Profile struct {
	UserID      string
	FullName    string
	Title       string
	AvatarURL   string
	Phone       string
	Email       string
	PasswordSet bool
}

type Session struct {
	ID        int64
	UserID    string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Workspace struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	MemberRole  string // populated by query context
}

type WorkspaceMember struct {
	ID          int64
	WorkspaceID int64
	UserID      string
	Role        string
	User        *User // joined
}

type WorkspaceInvite struct {
	ID          int64
	WorkspaceID int64
	Email       string
	Role        string
	Token       string
	CreatedAt   time.Time
	AcceptedAt  *time.Time
}

// WorkspaceTag is a workspace-scoped vocabulary entry (sector or task
// type) carrying its display color.
type WorkspaceTag struct {
	ID          int64
	WorkspaceID int64
	Kind        string // "sector" | "task_type"
	Name        string
	Color       string
}

type Project struct {
	ID          int64
	WorkspaceID int64
	Name        string
	Summary     string
	Status      string
	ViewMode    string // list | kanban | calendar | flow
	CreatedAt   time.Time
}

// ExecutionPeriod is a scheduled work block for a task, used by the
// calendar and today-agenda views.
type ExecutionPeriod struct {
	ID        int64
	TaskID    int64
	Date      string // YYYY-MM-DD
	StartTime string // HH:MM
	EndTime   string // HH:MM
}

type Task struct {
	ID               int64
	ProjectID        int64
	ProjectName      string // joined
	Name             string
	Sector           string
	TaskType         string
	Priority         int
	Status           string
	StartDate        string
	DueDateOriginal  string
	DueDateCurrent   string
	CompletionDate   string
	EstimatedMinutes int
	ActualMinutes    int // sum of time entries, joined
	ExecutorIDs      []string
	ValidatorIDs     []string
	InformIDs        []string
	Dependencies     []int64
	Periods          []ExecutionPeriod
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EffectiveDueDate is dueDateCurrent when present, else dueDateOriginal.
func (t Task) EffectiveDueDate() string {
	if t.DueDateCurrent != "" {
		return t.DueDateCurrent
	}
	return t.DueDateOriginal
}

type TaskTimeEntry struct {
	ID              int64
	TaskID          int64
	UserID          string
	StartedAt       time.Time
	EndedAt         time.Time
	DurationMinutes int
	Source          string // timer | manual
	Note            string
}

type TaskTimer struct {
	ID        int64
	TaskID    int64
	UserID    string
	StartedAt time.Time
}

type TaskDueDateChange struct {
	ID           int64
	TaskID       int64
	PreviousDate string
	NewDate      string
	Reason       string
	CreatedAt    time.Time
}

type TaskAuditLog struct {
	ID        int64
	TaskID    int64
	Field     string
	OldValue  string
	NewValue  string
	ChangedBy string
	CreatedAt time.Time
}

type TaskComment struct {
	ID        int64
	TaskID    int64
	Content   string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
	Author    *User // joined
}

type FeedPost struct {
	ID               int64
	WorkspaceID      int64
	Content          string
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	TaskIDs          []int64
	MentionedUserIDs []string
	Author           *User // joined
}
