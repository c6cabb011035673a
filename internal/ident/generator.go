// Package ident allocates human-readable identifiers of the form
// <prefix>_<n>, numbering from the highest one already stored.
package ident

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redmonkez12/todo-api/internal/apperr"
)

const (
	PrefixItem = "item"
	PrefixUser = "user"
)

// ErrProbeExhausted means every probed candidate was already taken.
// It is not retryable: the allocation bounds need revisiting.
var ErrProbeExhausted = apperr.Capacity("could not find a free identifier within the probe limit")

// ErrSequenceExhausted means the next number would not fit in an int
var ErrSequenceExhausted = apperr.Capacity("identifier sequence exhausted")

// Source gives the generator a global (never owner-scoped) view of the ids
// of one kind.
type Source interface {
	ListIDs(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type Generator struct {
	prefix     string
	source     Source
	probeLimit int
}

type Option func(*Generator)

// WithProbe re-checks each candidate against the store and moves to the next
// number while it is taken, at most limit checks.
func WithProbe(limit int) Option {
	return func(g *Generator) {
		g.probeLimit = limit
	}
}

func New(prefix string, source Source, opts ...Option) *Generator {
	g := &Generator{prefix: prefix, source: source}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns the next candidate identifier. The candidate is not reserved;
// callers must still handle a uniqueness violation on insert.
func (g *Generator) Next(ctx context.Context) (string, error) {
	ids, err := g.source.ListIDs(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list %s ids: %w", g.prefix, err)
	}

	maxN := MaxSeq(g.prefix, ids)
	if maxN == math.MaxInt {
		return "", ErrSequenceExhausted
	}
	n := maxN + 1
	if g.probeLimit <= 0 {
		return Format(g.prefix, n), nil
	}

	for i := 0; i < g.probeLimit; i++ {
		candidate := Format(g.prefix, n)
		exists, err := g.source.Exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check %s id %q: %w", g.prefix, candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		if n == math.MaxInt {
			return "", ErrSequenceExhausted
		}
		n++
	}

	return "", ErrProbeExhausted
}

// Parse extracts n from "<prefix>_<n>". Anything else, including signs,
// spaces and values that overflow int, is rejected.
func Parse(prefix, id string) (int, bool) {
	digits, ok := strings.CutPrefix(id, prefix+"_")
	if !ok || digits == "" {
		return 0, false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// MaxSeq returns the highest sequence number among ids, or 0 when none parse
func MaxSeq(prefix string, ids []string) int {
	maxN := 0
	for _, id := range ids {
		if n, ok := Parse(prefix, id); ok && n > maxN {
			maxN = n
		}
	}
	return maxN
}

func Format(prefix string, n int) string {
	return fmt.Sprintf("%s_%d", prefix, n)
}
