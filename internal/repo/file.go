package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

var (
	ErrorParse = errors.New("parse error")
)

type FileRepo struct { // Репозиторий поверх одного JSON-файла
	path string
}

func NewFileRepo(path string) *FileRepo {
	return &FileRepo{
		path: path,
	}
}

func (r *FileRepo) Path() string {
	return r.path
}

func (r *FileRepo) Load(ctx context.Context) ([]model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Task{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 { // Пустой файл - пустая коллекция
		return []model.Task{}, nil
	}

	var tasks []model.Task // Типизированный разбор: одна битая запись ломает всю загрузку
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrorParse, r.path, err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// Save перезаписывает файл целиком, без временного файла и fsync
func (r *FileRepo) Save(ctx context.Context, tasks []model.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}

	data, err := json.MarshalIndent(tasks, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}

	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	return nil
}
