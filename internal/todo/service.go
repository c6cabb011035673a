// Package todo holds the item use cases: validation, identifier allocation
// with retry on conflict, and owner-scoped access.
package todo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redmonkez12/todo-api/internal/apperr"
	"github.com/redmonkez12/todo-api/internal/config"
	"github.com/redmonkez12/todo-api/internal/events"
	"github.com/redmonkez12/todo-api/internal/ident"
	"github.com/redmonkez12/todo-api/internal/item"
	"github.com/redmonkez12/todo-api/internal/logging"
	"github.com/redmonkez12/todo-api/internal/metrics"
)

var (
	ErrInvalidStatus = apperr.Validation("invalid status, must be one of ToDo, InProgress, Done")
	ErrTitleRequired = apperr.Validation("title is required")
	ErrOwnerRequired = apperr.Validation("owner is required")
	ErrIDExhausted   = apperr.Capacity("could not allocate unique identifier")
)

// Repository is the item store as seen by the service. ListIDs and Exists
// must ignore ownership.
type Repository interface {
	ident.Source
	Create(ctx context.Context, it *item.Item) error
	GetByID(ctx context.Context, id, ownerID string) (*item.Item, error)
	Update(ctx context.Context, id, ownerID string, c item.Changes) (*item.Item, error)
	Delete(ctx context.Context, id, ownerID string) (*item.Item, error)
	List(ctx context.Context, f item.Filter) ([]item.Item, error)
}

type CreateInput struct {
	Title       string
	Description string
	Status      string
	OwnerID     string
}

// UpdateInput fields left nil are not changed
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *string
}

type ListInput struct {
	OwnerID   string
	Status    string
	SortBy    string
	SortOrder string
}

// Service handles item business logic
type Service struct {
	repo        Repository
	ids         *ident.Generator
	publisher   events.Publisher
	logger      *logging.Logger
	maxAttempts int
	now         func() time.Time
}

func NewService(repo Repository, publisher events.Publisher, logger *logging.Logger, cfg config.TodoConfig) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	maxAttempts := cfg.CreateMaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Service{
		repo:        repo,
		ids:         ident.New(ident.PrefixItem, repo, ident.WithProbe(cfg.IDProbeLimit)),
		publisher:   publisher,
		logger:      logger,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Create validates the input and inserts a new item under a freshly
// generated id. Generation and insert are not atomic, so an id taken by a
// concurrent writer is retried with a new candidate up to maxAttempts times.
func (s *Service) Create(ctx context.Context, in CreateInput) (*item.Item, error) {
	status := item.StatusToDo
	if in.Status != "" {
		status = item.Status(in.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if in.OwnerID == "" {
		return nil, ErrOwnerRequired
	}

	timestamp := s.now().UTC().Format(time.RFC3339)

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		id, err := s.ids.Next(ctx)
		if err != nil {
			if errors.Is(err, ident.ErrProbeExhausted) {
				metrics.RecordIDExhausted()
			}
			return nil, err
		}

		it := &item.Item{
			ID:          id,
			Title:       title,
			Description: in.Description,
			Status:      status,
			Timestamp:   timestamp,
			UserID:      in.OwnerID,
		}

		metrics.RecordCreateAttempt()
		err = s.repo.Create(ctx, it)
		if err == nil {
			metrics.RecordItemCreated()
			s.publish(ctx, events.ItemCreated, it)
			return it, nil
		}
		if !errors.Is(err, item.ErrDuplicateID) {
			return nil, err
		}

		metrics.RecordIDConflict()
		s.logger.Warn("item id taken by a concurrent writer, retrying",
			"id", id, "attempt", attempt, "max_attempts", s.maxAttempts)
	}

	metrics.RecordIDExhausted()
	return nil, ErrIDExhausted
}

// Get returns an item. An empty ownerID skips the owner check.
func (s *Service) Get(ctx context.Context, id, ownerID string) (*item.Item, error) {
	return s.repo.GetByID(ctx, id, ownerID)
}

// Update applies a partial update. An explicit empty title or status is
// rejected, an explicit empty description clears it.
func (s *Service) Update(ctx context.Context, id, ownerID string, in UpdateInput) (*item.Item, error) {
	var c item.Changes

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		c.Title = &title
	}
	if in.Description != nil {
		c.Description = in.Description
	}
	if in.Status != nil {
		status := item.Status(*in.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
		c.Status = &status
	}

	updated, err := s.repo.Update(ctx, id, ownerID, c)
	if err != nil {
		return nil, err
	}

	if !c.IsEmpty() {
		s.publish(ctx, events.ItemUpdated, updated)
	}
	return updated, nil
}

// Delete removes an item and returns it as it was
func (s *Service) Delete(ctx context.Context, id, ownerID string) (*item.Item, error) {
	deleted, err := s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.ItemDeleted, deleted)
	return deleted, nil
}

// List never fails on sort parameters; unknown ones fall back to id ascending
func (s *Service) List(ctx context.Context, in ListInput) ([]item.Item, error) {
	status := item.Status(in.Status)
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}

	return s.repo.List(ctx, item.Filter{
		OwnerID: in.OwnerID,
		Status:  status,
		Sort:    item.ParseSort(in.SortBy, in.SortOrder),
	})
}

func (s *Service) publish(ctx context.Context, eventType string, it *item.Item) {
	if err := s.publisher.Publish(ctx, eventType, it); err != nil {
		s.logger.Warn("failed to publish item event", "type", eventType, "id", it.ID, "error", err)
	}
}
