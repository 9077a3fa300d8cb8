package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ChecklistRole string

const (
	ChecklistRoleCleaner   ChecklistRole = "cleaner"
	ChecklistRoleRequester ChecklistRole = "requester"
)

var (
	ErrUnknownTask          = errors.New("checklist task not found")
	ErrUnknownChecklistRole = errors.New("unknown checklist role")
)

type ChecklistItem struct {
	ID                 uuid.UUID  `json:"id"`
	Task               string     `json:"task"`
	CompletedCleaner   bool       `json:"completedCleaner"`
	CompletedRequester bool       `json:"completedRequester"`
	CompletedBy        *uuid.UUID `json:"completedBy,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
}

func (i ChecklistItem) IsComplete() bool {
	return i.CompletedCleaner && i.CompletedRequester
}

type Checklist []ChecklistItem

// NewChecklistFromTemplate builds a fresh checklist with every confirmation cleared.
// Blank task names are skipped.
func NewChecklistFromTemplate(tasks []string) Checklist {
	checklist := make(Checklist, 0, len(tasks))
	for _, task := range tasks {
		task = strings.TrimSpace(task)
		if task == "" {
			continue
		}
		checklist = append(checklist, ChecklistItem{
			ID:   uuid.New(),
			Task: task,
		})
	}
	return checklist
}

func (c Checklist) Tasks() []string {
	tasks := make([]string, 0, len(c))
	for _, item := range c {
		tasks = append(tasks, item.Task)
	}
	return tasks
}

func (c Checklist) AllTasksComplete() bool {
	if len(c) == 0 {
		return false
	}
	for _, item := range c {
		if !item.IsComplete() {
			return false
		}
	}
	return true
}

// MarkTask sets or clears one side's confirmation on a task. The completion
// stamp is written only when both sides have confirmed, and cleared otherwise.
func (c Checklist) MarkTask(
	taskID uuid.UUID,
	role ChecklistRole,
	completed bool,
	userID uuid.UUID,
	at time.Time,
) error {
	index := -1
	for i := range c {
		if c[i].ID == taskID {
			index = i
			break
		}
	}
	if index < 0 {
		return ErrUnknownTask
	}

	item := &c[index]
	switch role {
	case ChecklistRoleCleaner:
		item.CompletedCleaner = completed
	case ChecklistRoleRequester:
		item.CompletedRequester = completed
	default:
		return ErrUnknownChecklistRole
	}

	if item.IsComplete() {
		if item.CompletedAt == nil {
			by := userID
			stamp := at
			item.CompletedBy = &by
			item.CompletedAt = &stamp
		}
		return nil
	}

	item.CompletedBy = nil
	item.CompletedAt = nil
	return nil
}
