package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/taskboard-api/internal/model"
	"github.com/BuzzLyutic/taskboard-api/internal/repo"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000
)

// ValidationError собирает все нарушения по полям разом,
// без остановки на первом
type ValidationError struct {
	Fields []model.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, model.FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

type TaskService struct {
	repo repo.TaskRepository
}

func NewTaskService(repo repo.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// Create валидирует все поля и создает задачу. Владелец всегда берется
// из сессии, payload его задать не может.
func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, req model.CreateTaskRequest) (model.Task, error) {
	var verr ValidationError

	title := strings.TrimSpace(req.Title)
	if title == "" {
		verr.add("title", "Title is required")
	} else if utf8.RuneCountInString(title) > maxTitleLen {
		verr.add("title", fmt.Sprintf("Title cannot exceed %d characters", maxTitleLen))
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		verr.add("description", "Description is required")
	} else if utf8.RuneCountInString(description) > maxDescriptionLen {
		verr.add("description", fmt.Sprintf("Description cannot exceed %d characters", maxDescriptionLen))
	}

	status := req.Status
	if status == "" {
		status = model.StatusPending
	} else if !model.ValidStatus(status) {
		verr.add("status", "Status must be one of: pending, in-progress, completed")
	}

	var dueDate time.Time
	if req.DueDate == "" {
		verr.add("due_date", "Due date is required")
	} else {
		parsed, err := parseDueDate(req.DueDate)
		if err != nil {
			verr.add("due_date", "Due date must be a valid date")
		}
		dueDate = parsed
	}

	if err := verr.orNil(); err != nil {
		return model.Task{}, err
	}

	return s.repo.Create(ctx, model.Task{
		Title:       title,
		Description: description,
		Status:      status,
		DueDate:     dueDate,
		UserID:      ownerID,
	})
}

func (s *TaskService) Get(ctx context.Context, id, ownerID uuid.UUID) (model.Task, error) {
	return s.repo.Get(ctx, id, ownerID)
}

func (s *TaskService) List(ctx context.Context, ownerID uuid.UUID, filter model.TaskFilter) ([]model.Task, error) {
	if filter.Status != nil && !model.ValidStatus(*filter.Status) {
		var verr ValidationError
		verr.add("status", "Status filter must be one of: pending, in-progress, completed")
		return nil, verr.orNil()
	}
	return s.repo.List(ctx, ownerID, filter)
}

// Update применяет только присутствующие непустые поля.
// Пустая строка в payload игнорируется, а не затирает значение.
func (s *TaskService) Update(ctx context.Context, id, ownerID uuid.UUID, req model.UpdateTaskRequest) (model.Task, error) {
	task, err := s.repo.Get(ctx, id, ownerID)
	if err != nil {
		return model.Task{}, err
	}

	var verr ValidationError

	if title := strings.TrimSpace(req.Title); title != "" {
		if utf8.RuneCountInString(title) > maxTitleLen {
			verr.add("title", fmt.Sprintf("Title cannot exceed %d characters", maxTitleLen))
		} else {
			task.Title = title
		}
	}

	if description := strings.TrimSpace(req.Description); description != "" {
		if utf8.RuneCountInString(description) > maxDescriptionLen {
			verr.add("description", fmt.Sprintf("Description cannot exceed %d characters", maxDescriptionLen))
		} else {
			task.Description = description
		}
	}

	if req.Status != "" {
		if !model.ValidStatus(req.Status) {
			verr.add("status", "Status must be one of: pending, in-progress, completed")
		} else {
			task.Status = req.Status
		}
	}

	if req.DueDate != "" {
		parsed, err := parseDueDate(req.DueDate)
		if err != nil {
			verr.add("due_date", "Due date must be a valid date")
		} else {
			task.DueDate = parsed
		}
	}

	if err := verr.orNil(); err != nil {
		return model.Task{}, err
	}

	return s.repo.Update(ctx, task)
}

func (s *TaskService) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return s.repo.Delete(ctx, id, ownerID)
}

// Принимаемые форматы даты: RFC3339, без зоны, только дата
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDueDate(s string) (time.Time, error) {
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
