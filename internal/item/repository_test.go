package item

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/todo-api/internal/database"
)

var itemColumns = []string{"id", "title", "description", "status", "timestamp", "user_id"}

func newTestRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewRepository(database.NewBunDB(sqlDB)), mock
}

func TestRepository_Create(t *testing.T) {
	it := &Item{ID: "item_1", Title: "Buy milk", Status: StatusToDo, Timestamp: "2026-03-01T10:00:00Z", UserID: "user_1"}

	t.Run("success", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectExec(`INSERT INTO "items"`).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(context.Background(), it))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate_primary_key", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectExec(`INSERT INTO "items"`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: database.ConstraintItemsPK})

		err := repo.Create(context.Background(), it)
		assert.ErrorIs(t, err, ErrDuplicateID)
	})

	t.Run("unknown_owner", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectExec(`INSERT INTO "items"`).
			WillReturnError(&pq.Error{Code: "23503", Constraint: database.ConstraintItemsOwnerFK})

		err := repo.Create(context.Background(), it)
		assert.ErrorIs(t, err, ErrOwnerNotFound)
	})

	t.Run("store_error_is_wrapped", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		boom := errors.New("connection reset by peer")
		mock.ExpectExec(`INSERT INTO "items"`).WillReturnError(boom)

		err := repo.Create(context.Background(), it)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrDuplicateID)
	})
}

func TestRepository_ListIDsAndExists(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT .*"id".* FROM "items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("item_1").AddRow("item_7"))
	mock.ExpectQuery(`SELECT EXISTS .*id = 'item_8'`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ids, err := repo.ListIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"item_1", "item_7"}, ids)

	exists, err := repo.Exists(context.Background(), "item_8")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	t.Run("owner_scoped_hit", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectQuery(`FROM "items" AS "i" WHERE .*id = 'item_1'.*user_id = 'user_1'`).
			WillReturnRows(sqlmock.NewRows(itemColumns).
				AddRow("item_1", "Buy milk", "", "ToDo", "2026-03-01T10:00:00Z", "user_1"))

		got, err := repo.GetByID(context.Background(), "item_1", "user_1")
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", got.Title)
		assert.Equal(t, StatusToDo, got.Status)
		assert.Equal(t, "user_1", got.UserID)
	})

	t.Run("other_owner_is_not_found", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectQuery(`FROM "items" AS "i" WHERE .*id = 'item_1'.*user_id = 'user_2'`).
			WillReturnRows(sqlmock.NewRows(itemColumns))

		_, err := repo.GetByID(context.Background(), "item_1", "user_2")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unscoped_lookup_omits_owner", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectQuery(`WHERE \(id = 'item_1'\)$`).
			WillReturnRows(sqlmock.NewRows(itemColumns).
				AddRow("item_1", "Buy milk", "", "Done", "2026-03-01T10:00:00Z", "user_1"))

		got, err := repo.GetByID(context.Background(), "item_1", "")
		require.NoError(t, err)
		assert.Equal(t, StatusDone, got.Status)
	})
}

func TestRepository_Update(t *testing.T) {
	t.Run("only_given_fields_are_set", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		done := StatusDone
		mock.ExpectQuery(`UPDATE "items" AS "i" SET status = 'Done' WHERE .*user_id = 'user_1'.* RETURNING \*`).
			WillReturnRows(sqlmock.NewRows(itemColumns).
				AddRow("item_1", "Buy milk", "2 litres", "Done", "2026-03-01T10:00:00Z", "user_1"))

		got, err := repo.Update(context.Background(), "item_1", "user_1", Changes{Status: &done})
		require.NoError(t, err)
		assert.Equal(t, StatusDone, got.Status)
		assert.Equal(t, "2 litres", got.Description)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no_match_is_not_found", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		title := "x"
		mock.ExpectQuery(`UPDATE "items"`).WillReturnRows(sqlmock.NewRows(itemColumns))

		_, err := repo.Update(context.Background(), "item_1", "user_2", Changes{Title: &title})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty_changes_reads_current_row", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectQuery(`SELECT .* FROM "items"`).
			WillReturnRows(sqlmock.NewRows(itemColumns).
				AddRow("item_1", "Buy milk", "", "ToDo", "2026-03-01T10:00:00Z", "user_1"))

		got, err := repo.Update(context.Background(), "item_1", "user_1", Changes{})
		require.NoError(t, err)
		assert.Equal(t, "item_1", got.ID)
	})
}

func TestRepository_Delete(t *testing.T) {
	t.Run("returns_prior_state", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectQuery(`DELETE FROM "items" AS "i" WHERE .*id = 'item_1'.*user_id = 'user_1'.* RETURNING \*`).
			WillReturnRows(sqlmock.NewRows(itemColumns).
				AddRow("item_1", "Buy milk", "", "ToDo", "2026-03-01T10:00:00Z", "user_1"))

		got, err := repo.Delete(context.Background(), "item_1", "user_1")
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", got.Title)
	})

	t.Run("missing_is_not_found", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectQuery(`DELETE FROM "items"`).WillReturnRows(sqlmock.NewRows(itemColumns))

		_, err := repo.Delete(context.Background(), "item_9", "user_1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepository_List(t *testing.T) {
	t.Run("filters_and_sort", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectQuery(`WHERE \(user_id = 'user_1'\) AND \(status = 'Done'\) ORDER BY "title" DESC, "id" ASC`).
			WillReturnRows(sqlmock.NewRows(itemColumns).
				AddRow("item_2", "Walk dog", "", "Done", "2026-03-01T10:00:00Z", "user_1").
				AddRow("item_1", "Buy milk", "", "Done", "2026-03-01T09:00:00Z", "user_1"))

		items, err := repo.List(context.Background(), Filter{
			OwnerID: "user_1",
			Status:  StatusDone,
			Sort:    ParseSort("title", "DESC"),
		})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "item_2", items[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("global_default_order", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectQuery(`FROM "items" AS "i" ORDER BY "id" ASC$`).
			WillReturnRows(sqlmock.NewRows(itemColumns))

		items, err := repo.List(context.Background(), Filter{Sort: ParseSort("bogus", "desc")})
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.NotNil(t, items)
	})
}
