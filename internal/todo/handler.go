package todo

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/todo-api/internal/auth"
	"github.com/redmonkez12/todo-api/internal/httputil"
	"github.com/redmonkez12/todo-api/internal/item"
	"github.com/redmonkez12/todo-api/internal/logging"
)

// Handler contains HTTP handlers for the item endpoints. Every route is
// scoped to the authenticated user.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the item endpoints on r
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// CreateItemRequest represents the item creation request body
type CreateItemRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=4096"`
	Status      string `json:"status,omitempty" example:"ToDo"`
}

// UpdateItemRequest represents a partial update. Omitted or null fields are
// left unchanged.
type UpdateItemRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=4096"`
	Status      *string `json:"status,omitempty" example:"Done"`
}

// ItemListResponse wraps a listing
type ItemListResponse struct {
	Items []item.Item `json:"items"`
	Count int         `json:"count"`
}

// List handles listing the caller's items
// @Summary      List items
// @Description  List the authenticated user's items with optional status filter and sorting. Unknown sort fields fall back to id ascending.
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        status     query string false "Filter by status" Enums(ToDo, InProgress, Done)
// @Param        sort_by    query string false "Sort field" Enums(id, title, status, timestamp)
// @Param        sort_order query string false "Sort order" Enums(asc, desc)
// @Success      200 {object} ItemListResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid status"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /items [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	items, err := h.service.List(r.Context(), ListInput{
		OwnerID:   ownerID,
		Status:    q.Get("status"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	})
	if err != nil {
		logFailure(logger, "list items", err)
		httputil.RespondAppError(w, err, "failed to list items")
		return
	}

	httputil.RespondJSON(w, ItemListResponse{Items: items, Count: len(items)}, http.StatusOK)
}

// Create handles item creation
// @Summary      Create an item
// @Description  Create an item owned by the authenticated user. Status defaults to ToDo.
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateItemRequest true "Item"
// @Success      201 {object} item.Item
// @Failure      400 {object} httputil.ErrorResponse "Invalid request or validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error or id allocation exhausted"
// @Router       /items [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	var req CreateItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		OwnerID:     ownerID,
	})
	if err != nil {
		logFailure(logger, "create item", err)
		httputil.RespondAppError(w, err, "failed to create item")
		return
	}

	logger.Info("item created", "item_id", created.ID, "user_id", ownerID)
	httputil.RespondJSON(w, created, http.StatusCreated)
}

// Get handles fetching one item
// @Summary      Get an item
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Item id" example(item_1)
// @Success      200 {object} item.Item
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "Item not found"
// @Router       /items/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	found, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), ownerID)
	if err != nil {
		logFailure(logger, "get item", err)
		httputil.RespondAppError(w, err, "failed to get item")
		return
	}

	httputil.RespondJSON(w, found, http.StatusOK)
}

// Update handles partial item updates
// @Summary      Update an item
// @Description  Only the fields present in the body are changed. An empty title or status is rejected; an empty description clears it.
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Item id" example(item_1)
// @Param        request body UpdateItemRequest true "Fields to change"
// @Success      200 {object} item.Item
// @Failure      400 {object} httputil.ErrorResponse "Invalid request or validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "Item not found"
// @Router       /items/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), ownerID, UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		logFailure(logger, "update item", err)
		httputil.RespondAppError(w, err, "failed to update item")
		return
	}

	logger.Info("item updated", "item_id", updated.ID, "user_id", ownerID)
	httputil.RespondJSON(w, updated, http.StatusOK)
}

// Delete handles item deletion
// @Summary      Delete an item
// @Description  Delete an item and return it as it was before deletion
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Item id" example(item_1)
// @Success      200 {object} item.Item
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "Item not found"
// @Router       /items/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), ownerID)
	if err != nil {
		logFailure(logger, "delete item", err)
		httputil.RespondAppError(w, err, "failed to delete item")
		return
	}

	logger.Info("item deleted", "item_id", deleted.ID, "user_id", ownerID)
	httputil.RespondJSON(w, deleted, http.StatusOK)
}

// ownerFromRequest returns the authenticated user id. RequireAuth guarantees
// it on mounted routes; a missing id is answered with 401.
func ownerFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok || userID == "" {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	logger := logging.GetLoggerFromContext(r.Context())

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn("invalid request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return false
	}
	if err := httputil.Validate(dst); err != nil {
		logger.Warn("request validation failed", "error", err.Error())
		httputil.RespondAppError(w, err, "")
		return false
	}
	return true
}

func logFailure(logger *logging.Logger, op string, err error) {
	status, _ := httputil.StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(op+" failed", "error", err.Error())
		return
	}
	logger.Warn(op+" failed", "error", err.Error())
}
