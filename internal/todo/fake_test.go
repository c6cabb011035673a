package todo

import (
	"context"
	"sort"
	"sync"

	"github.com/redmonkez12/todo-api/internal/item"
)

// memRepo is an in-memory Repository. Create enforces id uniqueness the way
// the items_pkey constraint does.
type memRepo struct {
	mu    sync.Mutex
	items map[string]item.Item

	// owners, when set, are the only user ids Create accepts
	owners map[string]bool

	// forceDuplicates makes the next n Create calls fail with ErrDuplicateID
	forceDuplicates int
	// createErr is returned by every Create call when set
	createErr error
	// allTaken makes Exists report every id as taken
	allTaken bool
	// gate, when set, holds the first gateSize Exists calls until all of
	// them arrived, so concurrent creators share one snapshot
	gate     *sync.WaitGroup
	gateSize int

	createCalls int
	existsCalls int
	duplicates  int
}

func newMemRepo() *memRepo {
	return &memRepo{items: map[string]item.Item{}}
}

func (r *memRepo) ListIDs(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *memRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	_, taken := r.items[id]
	r.existsCalls++
	n := r.existsCalls
	gate, gateSize := r.gate, r.gateSize
	allTaken := r.allTaken
	r.mu.Unlock()

	if gate != nil && n <= gateSize {
		gate.Done()
		gate.Wait()
	}
	return taken || allTaken, nil
}

func (r *memRepo) Create(ctx context.Context, it *item.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.createCalls++
	if r.createErr != nil {
		return r.createErr
	}
	if r.forceDuplicates > 0 {
		r.forceDuplicates--
		r.duplicates++
		return item.ErrDuplicateID
	}
	if _, ok := r.items[it.ID]; ok {
		r.duplicates++
		return item.ErrDuplicateID
	}
	if r.owners != nil && !r.owners[it.UserID] {
		return item.ErrOwnerNotFound
	}
	r.items[it.ID] = *it
	return nil
}

func (r *memRepo) lookup(id, ownerID string) (item.Item, bool) {
	it, ok := r.items[id]
	if !ok || (ownerID != "" && it.UserID != ownerID) {
		return item.Item{}, false
	}
	return it, true
}

func (r *memRepo) GetByID(ctx context.Context, id, ownerID string) (*item.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.lookup(id, ownerID)
	if !ok {
		return nil, item.ErrNotFound
	}
	return &it, nil
}

func (r *memRepo) Update(ctx context.Context, id, ownerID string, c item.Changes) (*item.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.lookup(id, ownerID)
	if !ok {
		return nil, item.ErrNotFound
	}
	if c.Title != nil {
		it.Title = *c.Title
	}
	if c.Description != nil {
		it.Description = *c.Description
	}
	if c.Status != nil {
		it.Status = *c.Status
	}
	r.items[id] = it
	return &it, nil
}

func (r *memRepo) Delete(ctx context.Context, id, ownerID string) (*item.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.lookup(id, ownerID)
	if !ok {
		return nil, item.ErrNotFound
	}
	delete(r.items, id)
	return &it, nil
}

func (r *memRepo) List(ctx context.Context, f item.Filter) ([]item.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []item.Item{}
	for _, it := range r.items {
		if f.OwnerID != "" && it.UserID != f.OwnerID {
			continue
		}
		if f.Status != "" && it.Status != f.Status {
			continue
		}
		out = append(out, it)
	}

	key := func(it item.Item) string {
		switch f.Sort.Field {
		case item.SortByTitle:
			return it.Title
		case item.SortByStatus:
			return string(it.Status)
		case item.SortByTimestamp:
			return it.Timestamp
		default:
			return it.ID
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := key(out[i]), key(out[j])
		if ki != kj {
			if f.Sort.Desc {
				return ki > kj
			}
			return ki < kj
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

type publishedEvent struct {
	Type string
	Item item.Item
}

// recordingPublisher captures published events and optionally fails
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if it, ok := data.(*item.Item); ok {
		p.events = append(p.events, publishedEvent{Type: eventType, Item: *it})
	}
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
