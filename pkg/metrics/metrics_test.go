package metrics_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-crudform/pkg/metrics"
	"github.com/goliatone/go-crudform/pkg/repository"
	"github.com/goliatone/go-crudform/pkg/testsupport"
)

type bulb struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestRepository_CountsOutcomes(t *testing.T) {
	m := metrics.New()
	session := testsupport.NewSession[bulb]()
	store, err := repository.New[bulb](session)
	require.NoError(t, err)
	repo := metrics.WrapRepository[bulb](m, store, "bulb")
	ctx := context.Background()

	_, err = repo.Add(ctx, &bulb{Name: "a"})
	require.NoError(t, err)
	_, err = repo.GetAll(ctx)
	require.NoError(t, err)

	session.Faults.Commit = errors.New("disk full")
	_, err = repo.Add(ctx, &bulb{Name: "b"})
	require.ErrorIs(t, err, repository.ErrCommit)

	body := scrape(t, m)
	assert.Contains(t, body, `crudform_repository_operations_total{entity="bulb",op="add",outcome="ok"} 1`)
	assert.Contains(t, body, `crudform_repository_operations_total{entity="bulb",op="add",outcome="commit"} 1`)
	assert.Contains(t, body, `crudform_repository_operations_total{entity="bulb",op="get_all",outcome="ok"} 1`)
	assert.Contains(t, body, `crudform_repository_operation_duration_seconds_count{entity="bulb",op="add"} 2`)
}

func TestObserveRender(t *testing.T) {
	m := metrics.New()
	m.ObserveRender("Home", time.Now(), nil)
	m.ObserveRender("Home", time.Now(), errors.New("boom"))

	count, err := testutil.GatherAndCount(m.Registry(), "crudform_render_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return strings.TrimSpace(rec.Body.String())
}
