package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		TranslateError:         true,
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)
	return db, mock
}

var kvColumns = []string{"id", "key", "value", "created_at", "updated_at"}

func kvRow(rows *sqlmock.Rows, id uuid.UUID, key, value string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, key, value, now, now)
}

func TestGetReturnsRow(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "kv_store" WHERE "kv_store"."id" = $1`)).
		WillReturnRows(kvRow(sqlmock.NewRows(kvColumns), id, "greeting", "hello"))

	kv, err := NewKVRepository(db).Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "greeting", kv.Key)
	assert.Equal(t, id, kv.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMissingIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "kv_store"`).WillReturnRows(sqlmock.NewRows(kvColumns))

	_, err := NewKVRepository(db).Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestGetOneWithTwoRowsConflicts(t *testing.T) {
	db, mock := newMockDB(t)
	rows := sqlmock.NewRows(kvColumns)
	kvRow(rows, uuid.New(), "a", "1")
	kvRow(rows, uuid.New(), "b", "2")

	mock.ExpectQuery(`SELECT \* FROM "kv_store" WHERE "kv_store"."value" = \$1 ORDER BY "kv_store"."key" LIMIT`).
		WillReturnRows(rows)

	_, err := NewKVRepository(db).GetOne(context.Background(), Equal{Column: "value", Value: "1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestGetOneAllowMultipleReturnsFirst(t *testing.T) {
	db, mock := newMockDB(t)
	first := uuid.New()
	rows := sqlmock.NewRows(kvColumns)
	kvRow(rows, first, "a", "1")
	kvRow(rows, uuid.New(), "b", "1")

	mock.ExpectQuery(`SELECT \* FROM "kv_store"`).WillReturnRows(rows)

	repo := NewGorm[models.KVStore](db, Options{Name: "key", AllowMultiple: true})
	kv, err := repo.GetOne(context.Background(), Equal{Column: "value", Value: "1"})
	require.NoError(t, err)
	assert.Equal(t, first, kv.ID)
}

func TestGetOneOrNoneReturnsNil(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "kv_store"`).WillReturnRows(sqlmock.NewRows(kvColumns))

	kv, err := NewKVRepository(db).GetOneOrNone(context.Background(), Equal{Column: "key", Value: "nope"})
	require.NoError(t, err)
	assert.Nil(t, kv)
}

func TestListAndCountIgnoresPagingInCount(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "kv_store"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`SELECT \* FROM "kv_store" ORDER BY "kv_store"."created_at" DESC LIMIT \$1 OFFSET \$2`).
		WillReturnRows(kvRow(sqlmock.NewRows(kvColumns), uuid.New(), "a", "1"))

	rows, total, err := NewKVRepository(db).ListAndCount(context.Background(),
		OrderBy{Column: "created_at", Desc: true},
		LimitOffset{Limit: 1, Offset: 3},
	)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.EqualValues(t, 7, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInWithNoValuesMatchesNothing(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "kv_store" WHERE 1 = 0`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ok, err := NewKVRepository(db).Exists(context.Background(), In{Column: "id"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddDuplicateIsConflict(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`INSERT INTO "kv_store"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uk_kv_key"})

	_, err := NewKVRepository(db).Add(context.Background(), &models.KVStore{Key: "a", Value: "1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestAddAssignsID(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`INSERT INTO "kv_store"`).WillReturnResult(sqlmock.NewResult(0, 1))

	kv, err := NewKVRepository(db).Add(context.Background(), &models.KVStore{Key: "a", Value: "1"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, kv.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMissingRowIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE "kv_store" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := NewKVRepository(db).Update(context.Background(), &models.KVStore{ID: uuid.New(), Key: "a", Value: "2"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestUpdateWritesRow(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE "kv_store" SET .*"value"=.* WHERE "id" = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	kv, err := NewKVRepository(db).Update(context.Background(), &models.KVStore{ID: uuid.New(), Key: "a", Value: "2"})
	require.NoError(t, err)
	assert.Equal(t, "2", kv.Value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteReturnsPriorRow(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "kv_store" WHERE "kv_store"."id" = \$1`).
		WillReturnRows(kvRow(sqlmock.NewRows(kvColumns), id, "gone", "soon"))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "kv_store" WHERE id = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	kv, err := NewKVRepository(db).Delete(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "gone", kv.Key)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "kv_store"`).WillReturnRows(sqlmock.NewRows(kvColumns))

	_, err := NewKVRepository(db).Delete(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventReadsJoinUser(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT .* FROM "event" LEFT JOIN "user_account" "User" ON "event"."user_id" = "User"."id" WHERE "event"."user_id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, err := NewEventRepository(db).List(context.Background(), Equal{Column: "user_id", Value: uuid.New()})
	require.NoError(t, err)
	assert.Empty(t, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryErrorIsInternal(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("connection reset"))

	_, err := NewUserRepository(db).List(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInternal))
	assert.Equal(t, "database error", apperr.Message(err))
}

func TestFindFilter(t *testing.T) {
	filters := []Filter{Equal{Column: "a", Value: 1}, LimitOffset{Limit: 5, Offset: 10}}

	lo, ok := FindFilter[LimitOffset](filters)
	require.True(t, ok)
	assert.Equal(t, 5, lo.Limit)

	_, ok = FindFilter[OrderBy](filters)
	assert.False(t, ok)

	assert.Len(t, WithoutPaging(filters), 1)
}

func TestAddManyInsertsOneBatch(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`INSERT INTO "kv_store" .* VALUES \(.+\),\(.+\)`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	rows, err := NewKVRepository(db).AddMany(context.Background(), []*models.KVStore{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "2"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.NotEqual(t, uuid.Nil, rows[0].ID)
	assert.NotEqual(t, rows[0].ID, rows[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddManyEmptyIsNoop(t *testing.T) {
	db, mock := newMockDB(t)

	rows, err := NewKVRepository(db).AddMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateManyStopsAtMissingRow(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE "kv_store" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "kv_store" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := NewKVRepository(db).UpdateMany(context.Background(), []*models.KVStore{
		{ID: uuid.New(), Key: "a", Value: "1"},
		{ID: uuid.New(), Key: "b", Value: "2"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateManyWritesEveryRow(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE "kv_store" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "kv_store" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := NewKVRepository(db).UpdateMany(context.Background(), []*models.KVStore{
		{ID: uuid.New(), Key: "a", Value: "1"},
		{ID: uuid.New(), Key: "b", Value: "2"},
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertUpdatesExistingRow(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "kv_store" SET .* WHERE "id" = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	kv, err := NewKVRepository(db).Upsert(context.Background(), &models.KVStore{ID: id, Key: "a", Value: "2"})
	require.NoError(t, err)
	assert.Equal(t, id, kv.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertInsertsWhenNothingUpdated(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "kv_store" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO "kv_store" .* ON CONFLICT`).WillReturnResult(sqlmock.NewResult(0, 1))

	kv, err := NewKVRepository(db).Upsert(context.Background(), &models.KVStore{ID: id, Key: "a", Value: "1"})
	require.NoError(t, err)
	assert.Equal(t, id, kv.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteManyReturnsPriorRows(t *testing.T) {
	db, mock := newMockDB(t)
	a, b := uuid.New(), uuid.New()
	rows := sqlmock.NewRows(kvColumns)
	kvRow(rows, a, "a", "1")
	kvRow(rows, b, "b", "2")

	mock.ExpectQuery(`SELECT \* FROM "kv_store" WHERE .*"id" IN \(\$1,\$2\)`).WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "kv_store" WHERE id IN ($1,$2)`)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	deleted, err := NewKVRepository(db).DeleteMany(context.Background(), []uuid.UUID{a, b})
	require.NoError(t, err)
	require.Len(t, deleted, 2)
	assert.Equal(t, "a", deleted[0].Key)
	assert.Equal(t, b, deleted[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteManyEmptyIsNoop(t *testing.T) {
	db, mock := newMockDB(t)

	deleted, err := NewKVRepository(db).DeleteMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}
