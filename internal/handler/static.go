package handler

import (
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-api/pkg/respond"
)

// StaticHandler serves one HTML file, re-read on every request.
type StaticHandler struct {
	path   string
	logger *zap.Logger
}

func NewStaticHandler(path string, logger *zap.Logger) *StaticHandler {
	return &StaticHandler{
		path:   path,
		logger: logger,
	}
}

func (h *StaticHandler) Index(w http.ResponseWriter, r *http.Request) {
	body, err := os.ReadFile(h.path)
	if err != nil {
		h.logger.Error("failed to read index file", zap.String("path", h.path), zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	respond.HTML(w, r, http.StatusOK, body)
}
