package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/taskboard-api/internal/model"
)

// TaskRepository определяет интерфейс для работы с задачами.
// Все операции чтения/записи по id принимают ownerID: задача другого
// пользователя неотличима от несуществующей.
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, id, ownerID uuid.UUID) (model.Task, error)
	List(ctx context.Context, ownerID uuid.UUID, filter model.TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, t model.Task) (model.Task, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}

// UserRepository определяет интерфейс для работы с пользователями
type UserRepository interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Update(ctx context.Context, u model.User) (model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
