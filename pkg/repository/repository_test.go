package repository_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-crudform/pkg/repository"
	"github.com/goliatone/go-crudform/pkg/testsupport"
)

type note struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `json:"title"`
	Rank  int    `json:"rank"`
}

func newStore(t *testing.T, session repository.Session) *repository.Store[note] {
	t.Helper()
	store, err := repository.New[note](session)
	require.NoError(t, err)
	return store
}

func TestStore_AddAssignsIDAndCommits(t *testing.T) {
	ctx := context.Background()
	session := testsupport.NewSession[note]()
	store := newStore(t, session)

	added, err := store.Add(ctx, &note{Title: "first"})
	require.NoError(t, err)
	assert.Equal(t, uint(1), added.ID)
	assert.Equal(t, 1, session.Calls.Commit)
	assert.Equal(t, 0, session.Calls.Rollback)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []note{{ID: 1, Title: "first"}}, all)
}

func TestStore_GetByIDMissingReturnsNil(t *testing.T) {
	store := newStore(t, testsupport.NewSession(note{ID: 4, Title: "x"}))

	got, err := store.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.GetByID(context.Background(), 4)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "x", got.Title)
}

func TestStore_GetAllEmpty(t *testing.T) {
	store := newStore(t, testsupport.NewSession[note]())
	all, err := store.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestStore_CommitConnectivityFault(t *testing.T) {
	session := testsupport.NewSession[note]()
	session.Faults.Commit = fmt.Errorf("flush: %w", driver.ErrBadConn)
	store := newStore(t, session)

	_, err := store.Add(context.Background(), &note{Title: "lost"})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrConnection)
	assert.NotErrorIs(t, err, repository.ErrCommit)
	assert.ErrorIs(t, err, driver.ErrBadConn)
	assert.Equal(t, 1, session.Calls.Rollback)
	assert.Empty(t, session.Rows())

	var repoErr *repository.Error
	require.True(t, errors.As(err, &repoErr))
	assert.Equal(t, repository.StageCommit, repoErr.Stage)
	assert.Equal(t, repository.OpAdd, repoErr.Op)
	assert.Equal(t, "note", repoErr.Entity)
	assert.Contains(t, err.Error(), "add")
	assert.Contains(t, err.Error(), "note")
}

func TestStore_CommitFaultBecomesCommitError(t *testing.T) {
	session := testsupport.NewSession(note{ID: 1, Title: "keep"})
	session.Faults.Commit = errors.New("constraint failed")
	store := newStore(t, session)

	_, err := store.Update(context.Background(), &note{ID: 1, Title: "changed"})
	assert.ErrorIs(t, err, repository.ErrCommit)
	assert.Equal(t, repository.KindCommit, repository.KindOf(err))
	assert.Equal(t, 1, session.Calls.Rollback)
	assert.Equal(t, []note{{ID: 1, Title: "keep"}}, session.Rows())
}

func TestStore_StageFaultsRollBack(t *testing.T) {
	cases := []struct {
		name   string
		faults testsupport.Faults
		stage  repository.Stage
		kind   repository.Kind
	}{
		{"write", testsupport.Faults{Insert: errors.New("syntax error")}, repository.StageWrite, repository.KindQuery},
		{"reload", testsupport.Faults{Reload: errors.New("no such column")}, repository.StageReload, repository.KindQuery},
		{"write offline", testsupport.Faults{Insert: driver.ErrBadConn}, repository.StageWrite, repository.KindConnection},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session := testsupport.NewSession[note]()
			session.Faults = tc.faults
			store := newStore(t, session)

			_, err := store.Add(context.Background(), &note{Title: "x"})
			var repoErr *repository.Error
			require.True(t, errors.As(err, &repoErr))
			assert.Equal(t, tc.stage, repoErr.Stage)
			assert.Equal(t, tc.kind, repoErr.Kind)
			assert.Equal(t, 1, session.Calls.Rollback)
			assert.Equal(t, 0, session.Calls.Commit)
			assert.Empty(t, session.Rows())
		})
	}
}

func TestStore_BeginFaultDoesNotRollback(t *testing.T) {
	session := testsupport.NewSession[note]()
	session.Faults.Begin = driver.ErrBadConn
	store := newStore(t, session)

	err := store.Delete(context.Background(), &note{ID: 1})
	assert.ErrorIs(t, err, repository.ErrConnection)
	assert.Equal(t, 0, session.Calls.Rollback)
}

func TestStore_ReadFaults(t *testing.T) {
	session := testsupport.NewSession[note]()
	session.Faults.All = errors.New("no such table: notes")
	session.Faults.First = driver.ErrBadConn
	store := newStore(t, session)

	_, err := store.GetAll(context.Background())
	assert.ErrorIs(t, err, repository.ErrQuery)

	_, err = store.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, repository.ErrConnection)
}

func TestStore_DeleteRemovesRow(t *testing.T) {
	session := testsupport.NewSession(note{Title: "a"}, note{Title: "b"})
	store := newStore(t, session)

	require.NoError(t, store.Delete(context.Background(), &note{ID: 1}))
	assert.Equal(t, []note{{ID: 2, Title: "b"}}, session.Rows())
}

func TestStore_CustomClassifier(t *testing.T) {
	offline := errors.New("offline")
	session := testsupport.NewSession[note]()
	session.Faults.All = offline
	store, err := repository.New[note](session, repository.WithClassifier(func(err error) bool {
		return errors.Is(err, offline)
	}))
	require.NoError(t, err)

	_, err = store.GetAll(context.Background())
	assert.ErrorIs(t, err, repository.ErrConnection)
}

func TestNew_RequiresSession(t *testing.T) {
	_, err := repository.New[note](nil)
	assert.Error(t, err)
}
