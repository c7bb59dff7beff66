package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/repo"
	"github.com/BuzzLyutic/todo-api/internal/service"
)

const indexHTML = "<!doctype html>\n<title>To-Do</title>\n<h1>Мои задачи</h1>\n"

type testServer struct {
	*httptest.Server
	dataFile string
	logs     *observer.ObservedLogs
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	dataFile := filepath.Join(dir, "todo.json")
	indexFile := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(indexFile, []byte(indexHTML), 0o644))

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	taskService := service.NewTaskService(repo.NewFileRepo(dataFile))
	router := NewRouter(
		NewTaskHandler(taskService, logger),
		NewStaticHandler(indexFile, logger),
		logger,
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testServer{Server: server, dataFile: dataFile, logs: logs}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestRouter_FullWorkflow(t *testing.T) {
	server := setupServer(t)

	// 1. Пустой список
	resp := server.do(t, http.MethodGet, "/todos", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]model.Task](t, resp))

	// 2. Создание двух задач
	first := model.Task{ID: 1, Title: "A", Description: "desc", Completed: true, DueDate: "2025-04-06"}
	second := model.Task{ID: 2, Title: "B", Description: "desc", Completed: false, DueDate: "2025-04-10"}
	for _, task := range []model.Task{first, second} {
		resp = server.do(t, http.MethodPost, "/todos", task)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, task, decode[model.Task](t, resp))
	}

	resp = server.do(t, http.MethodGet, "/progress", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.Progress{Total: 2, Completed: 1, Progress: "1/2"}, decode[model.Progress](t, resp))

	// 3. Обновление
	second.Completed = true
	second.Title = "B done"
	resp = server.do(t, http.MethodPut, "/todos/2", second)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, second, decode[model.Task](t, resp))

	resp = server.do(t, http.MethodGet, "/todos", nil)
	assert.Equal(t, []model.Task{first, second}, decode[[]model.Task](t, resp))

	// 4. Удаление
	resp = server.do(t, http.MethodDelete, "/todos/1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"message": "To-Do item deleted"}, decode[map[string]string](t, resp))

	resp = server.do(t, http.MethodDelete, "/todos/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = server.do(t, http.MethodGet, "/todos", nil)
	assert.Equal(t, []model.Task{second}, decode[[]model.Task](t, resp))

	// Файл остается единственным источником правды
	data, err := os.ReadFile(server.dataFile)
	require.NoError(t, err)
	var onDisk []model.Task
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, []model.Task{second}, onDisk)
}

func TestRouter_DuplicateIDs(t *testing.T) {
	server := setupServer(t)

	for i := 0; i < 3; i++ {
		resp := server.do(t, http.MethodPost, "/todos", model.Task{ID: 7, Title: "dup"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	server.do(t, http.MethodPost, "/todos", model.Task{ID: 8, Title: "other"})

	resp := server.do(t, http.MethodDelete, "/todos/7", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = server.do(t, http.MethodGet, "/todos", nil)
	tasks := decode[[]model.Task](t, resp)
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(8), tasks[0].ID)
}

func TestRouter_InvalidCreateLeavesFileUntouched(t *testing.T) {
	server := setupServer(t)

	resp := server.do(t, http.MethodPost, "/todos", map[string]interface{}{"id": 1, "title": "Test"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	_, err := os.Stat(server.dataFile)
	assert.True(t, os.IsNotExist(err), "no write may happen on validation failure")
}

func TestRouter_Index(t *testing.T) {
	server := setupServer(t)

	resp := server.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, indexHTML, string(body))
}

func TestRouter_Health(t *testing.T) {
	server := setupServer(t)

	resp := server.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, resp))
}

func TestRouter_CorruptStorage(t *testing.T) {
	server := setupServer(t)
	require.NoError(t, os.WriteFile(server.dataFile, []byte("{broken"), 0o644))

	for _, path := range []string{"/todos", "/progress"} {
		resp := server.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, path)
		assert.Equal(t, map[string]string{"error": "internal error"}, decode[map[string]string](t, resp))
	}

	assert.Equal(t, 2, server.logs.FilterMessage("internal error").Len())
}

func TestRouter_LogsRequests(t *testing.T) {
	server := setupServer(t)

	server.do(t, http.MethodGet, "/progress", nil)

	entries := server.logs.FilterMessage("request").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/progress", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}
