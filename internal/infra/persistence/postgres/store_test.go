package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reliefcore/internal/infra/persistence/memory"
	"reliefcore/pkg/domain"
)

var (
	createStateSQL = regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS state`)
	selectStateSQL = regexp.QuoteMeta(`SELECT bucket, payload FROM state`)
	upsertStateSQL = regexp.QuoteMeta(`INSERT INTO state(bucket,payload) VALUES($1,$2)`)
)

func bucketNames() []string {
	var s memory.Snapshot
	names := make([]string, 0, 10)
	for _, b := range s.Buckets() {
		names = append(names, b.Name)
	}
	return names
}

func openMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	restore := OverrideSQLOpen(func(driverName, _ string) (*sql.DB, error) {
		assert.Equal(t, "pgx", driverName)
		return db, nil
	})
	t.Cleanup(restore)
	return db, mock
}

func TestNewStoreLoadsSnapshot(t *testing.T) {
	_, mock := openMock(t)
	mock.ExpectExec(createStateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(selectStateSQL).WillReturnRows(
		sqlmock.NewRows([]string{"bucket", "payload"}).
			AddRow("campaigns", []byte(`{"c1":{"id":"c1","title":"Flood","target_amount":500,"current_amount":0,"donor_count":0,"status":"active"}}`)).
			AddRow("volunteers", []byte(`{"v1":{"id":"v1","name":"Ana","availability":"available"}}`)).
			AddRow("unknown", []byte(`{}`)).
			AddRow("users", []byte(nil)),
	)

	store, err := NewStore(context.Background(), "", domain.NewRulesEngine())
	require.NoError(t, err)

	err = store.View(context.Background(), func(v domain.TransactionView) error {
		c, ok := v.FindCampaign("c1")
		require.True(t, ok)
		assert.Equal(t, int64(500), c.TargetAmount)
		assert.Len(t, v.ListVolunteers(), 1)
		assert.Empty(t, v.ListUsers())
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTransactionPersistsEveryBucket(t *testing.T) {
	_, mock := openMock(t)
	mock.ExpectExec(createStateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(selectStateSQL).WillReturnRows(sqlmock.NewRows([]string{"bucket", "payload"}))

	store, err := NewStore(context.Background(), "postgres://example/relief", nil)
	require.NoError(t, err)

	mock.ExpectBegin()
	for _, name := range bucketNames() {
		mock.ExpectExec(upsertStateSQL).WithArgs(name, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateHelpRequest(domain.HelpRequest{Title: "Need water", Type: domain.ReliefFood, Urgency: domain.ReportSeverityHigh, PeopleAffected: 12})
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersistFailureRollsBack(t *testing.T) {
	_, mock := openMock(t)
	mock.ExpectExec(createStateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(selectStateSQL).WillReturnRows(sqlmock.NewRows([]string{"bucket", "payload"}))

	store, err := NewStore(context.Background(), "", nil)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(upsertStateSQL).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateUser(domain.User{Name: "Ngo", Role: domain.RoleNGO})
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFailedTransactionDoesNotTouchDatabase(t *testing.T) {
	_, mock := openMock(t)
	mock.ExpectExec(createStateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(selectStateSQL).WillReturnRows(sqlmock.NewRows([]string{"bucket", "payload"}))

	store, err := NewStore(context.Background(), "", nil)
	require.NoError(t, err)

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return domain.NotFound(domain.EntityAssignment, "missing")
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewStoreErrors(t *testing.T) {
	t.Run("open", func(t *testing.T) {
		restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return nil, errors.New("no driver") })
		defer restore()
		_, err := NewStore(context.Background(), "", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "open postgres")
	})
	t.Run("ddl", func(t *testing.T) {
		_, mock := openMock(t)
		mock.ExpectExec(createStateSQL).WillReturnError(errors.New("permission denied"))
		mock.ExpectClose()
		_, err := NewStore(context.Background(), "", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ensure state table")
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("decode", func(t *testing.T) {
		_, mock := openMock(t)
		mock.ExpectExec(createStateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(selectStateSQL).WillReturnRows(
			sqlmock.NewRows([]string{"bucket", "payload"}).AddRow("donations", []byte(`[`)),
		)
		mock.ExpectClose()
		_, err := NewStore(context.Background(), "", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode donations")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
