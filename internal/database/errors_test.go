package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/redmonkez12/todo-api/migrations"
)

func TestIsUniqueViolation(t *testing.T) {
	pkErr := &pq.Error{Code: "23505", Constraint: ConstraintItemsPK}
	emailErr := &pq.Error{Code: "23505", Constraint: ConstraintUsersEmail}

	assert.True(t, IsUniqueViolation(pkErr, ConstraintItemsPK))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", pkErr), ConstraintItemsPK))
	assert.True(t, IsUniqueViolation(pkErr, ""))
	assert.False(t, IsUniqueViolation(emailErr, ConstraintItemsPK))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}, ""))
	assert.False(t, IsUniqueViolation(nil, ""))
	assert.False(t, IsUniqueViolation(errors.New("connection refused"), ""))
}

func TestIsUniqueViolation_MessageFallback(t *testing.T) {
	err := errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key" (SQLSTATE=23505)`)

	assert.True(t, IsUniqueViolation(err, ConstraintUsersEmail))
	assert.False(t, IsUniqueViolation(err, ConstraintUsersPK))
}

func TestIsForeignKeyViolation(t *testing.T) {
	fkErr := &pq.Error{Code: "23503", Constraint: ConstraintItemsOwnerFK}

	assert.True(t, IsForeignKeyViolation(fkErr, ConstraintItemsOwnerFK))
	assert.False(t, IsForeignKeyViolation(fkErr, "other_fkey"))
	assert.False(t, IsForeignKeyViolation(&pq.Error{Code: "23505"}, ""))
}

func TestMigrationsDiscovered(t *testing.T) {
	ms := migrations.Migrations.Sorted()
	if assert.Len(t, ms, 2) {
		assert.Equal(t, "create_users", ms[0].Comment)
		assert.Equal(t, "create_items", ms[1].Comment)
	}
}
