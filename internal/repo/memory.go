package repo

import (
	"context"
	"sync"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

// MemoryRepo keeps the collection in process memory. Load and Save copy the
// slice so callers never share backing arrays with the store.
type MemoryRepo struct {
	mu    sync.RWMutex
	tasks []model.Task
	saves int
}

func NewMemoryRepo(tasks ...model.Task) *MemoryRepo {
	return &MemoryRepo{tasks: append([]model.Task{}, tasks...)}
}

func (r *MemoryRepo) Load(ctx context.Context) ([]model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Task{}, r.tasks...), nil
}

func (r *MemoryRepo) Save(ctx context.Context, tasks []model.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append([]model.Task{}, tasks...)
	r.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (r *MemoryRepo) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}
