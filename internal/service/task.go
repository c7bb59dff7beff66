package service

import (
	"context"
	"errors"
	"sync"

	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/repo"
)

var (
	ErrNotFound = errors.New("not found")
)

// TaskService runs every operation as load -> change in memory -> save.
// Mutations hold mu for the whole sequence so concurrent writers can't lose
// each other's updates; reads hold it shared so they never see a file that a
// save has truncated but not yet rewritten.
type TaskService struct {
	repo repo.TaskRepository
	mu   sync.RWMutex
}

func NewTaskService(repo repo.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.repo.Load(ctx)
}

// Create appends t as is; duplicate ids are accepted.
func (s *TaskService) Create(ctx context.Context, t model.Task) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.repo.Load(ctx)
	if err != nil {
		return model.Task{}, err
	}

	tasks = append(tasks, t)
	if err := s.repo.Save(ctx, tasks); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// Update replaces the first task with the given id by t, id included.
func (s *TaskService) Update(ctx context.Context, id int64, t model.Task) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.repo.Load(ctx)
	if err != nil {
		return model.Task{}, err
	}

	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		tasks[i] = t
		if err := s.repo.Save(ctx, tasks); err != nil {
			return model.Task{}, err
		}
		return t, nil
	}
	return model.Task{}, ErrNotFound
}

// Delete removes every task with the given id. Nothing is written when no
// task matches.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}

	kept := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}

	if len(kept) == len(tasks) {
		return ErrNotFound
	}
	return s.repo.Save(ctx, kept)
}

func (s *TaskService) Progress(ctx context.Context) (model.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks, err := s.repo.Load(ctx)
	if err != nil {
		return model.Progress{}, err
	}
	return model.NewProgress(tasks), nil
}
