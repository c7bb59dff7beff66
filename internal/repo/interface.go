package repo

import (
	"context"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

// TaskRepository хранит всю коллекцию задач целиком
type TaskRepository interface {
	// Load - вся коллекция в порядке хранения, никогда не nil
	Load(ctx context.Context) ([]model.Task, error)
	// Save - полная замена коллекции
	Save(ctx context.Context, tasks []model.Task) error
}
