package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard-api/internal/auth"
	"github.com/BuzzLyutic/taskboard-api/internal/model"
	"github.com/BuzzLyutic/taskboard-api/internal/repo"
	"github.com/BuzzLyutic/taskboard-api/internal/service"
	"github.com/BuzzLyutic/taskboard-api/pkg/respond"
)

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req model.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.service.Create(r.Context(), caller.ID, req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	task.User = caller.Ref()

	respond.Success(w, r, http.StatusCreated, "Task created successfully", map[string]interface{}{
		"task": task,
	})
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := h.service.Get(r.Context(), id, caller.ID)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	task.User = caller.Ref()

	respond.Success(w, r, http.StatusOK, "", map[string]interface{}{"task": task})
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	var filter model.TaskFilter
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}

	tasks, err := h.service.List(r.Context(), caller.ID, filter)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	for i := range tasks {
		tasks[i].User = caller.Ref()
	}

	respond.List(w, r, len(tasks), map[string]interface{}{"tasks": tasks})
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req model.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.service.Update(r.Context(), id, caller.ID, req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	task.User = caller.Ref()

	respond.Success(w, r, http.StatusOK, "Task updated successfully", map[string]interface{}{
		"task": task,
	})
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	if err := h.service.Delete(r.Context(), id, caller.ID); err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.Success(w, r, http.StatusOK, "Task deleted successfully", nil)
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respond.ValidationFailed(w, r, verr.Fields)
	case errors.Is(err, repo.ErrorNotFound):
		// Чужая задача и несуществующая неразличимы
		respond.Error(w, r, http.StatusNotFound, "Task not found")
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "Server error")
	}
}
