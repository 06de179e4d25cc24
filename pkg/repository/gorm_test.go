package repository_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-crudform/pkg/repository"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        filepath.Join(t.TempDir(), "crudform_test.db"),
	}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestGormSession_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(&note{}))

	session, err := repository.NewGormSession(db)
	require.NoError(t, err)
	store, err := repository.New[note](session)
	require.NoError(t, err)

	first, err := store.Add(ctx, &note{Title: "alpha", Rank: 1})
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	_, err = store.Add(ctx, &note{Title: "beta", Rank: 2})
	require.NoError(t, err)

	first.Rank = 10
	updated, err := store.Update(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Rank)

	got, err := store.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alpha", got.Title)
	assert.Equal(t, 10, got.Rank)

	require.NoError(t, store.Delete(ctx, got))

	missing, err := store.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "beta", all[0].Title)
}

func TestGormSession_MissingTableIsQueryFailure(t *testing.T) {
	db := openTestDB(t)
	session, err := repository.NewGormSession(db)
	require.NoError(t, err)
	store, err := repository.New[note](session)
	require.NoError(t, err)

	_, err = store.GetAll(context.Background())
	assert.ErrorIs(t, err, repository.ErrQuery)

	_, err = store.Add(context.Background(), &note{Title: "nowhere"})
	assert.ErrorIs(t, err, repository.ErrQuery)
}

func TestIsConnectivityError(t *testing.T) {
	assert.False(t, repository.IsConnectivityError(nil))
	assert.False(t, repository.IsConnectivityError(assert.AnError))
	assert.True(t, repository.IsConnectivityError(context.DeadlineExceeded))
}
