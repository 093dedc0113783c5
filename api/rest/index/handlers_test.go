package index

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/kbase/server/internal/auth"
	"codeberg.org/kbase/server/internal/chunker"
	"codeberg.org/kbase/server/internal/indexer"
	"codeberg.org/kbase/server/internal/ingest"
	"codeberg.org/kbase/server/internal/locks"
	"codeberg.org/kbase/server/internal/testutil"
	"codeberg.org/kbase/server/internal/vectorindex"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "owner-1"

type fixture struct {
	store     *testutil.Store
	locker    *locks.MemoryLocker
	router    *gin.Engine
	projectID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := testutil.NewStore()
	projectID := store.AddProject(owner, "HR")

	_, err := ingest.New(store.Projects(), store.Documents(), chunker.DefaultOptions()).Ingest(context.Background(), ingest.Request{
		ProjectID: projectID,
		OwnerID:   owner,
		Text:      "first line\nsecond line\nthird line",
	})
	require.NoError(t, err)

	embedder := testutil.NewHashEmbedder(16)
	locker := locks.NewMemoryLocker()
	ix := indexer.New(store.Projects(), store.Documents(), embedder, vectorindex.NewMemoryIndex(), locker, nil, indexer.Config{})

	router := gin.New()
	rg := router.Group("/api/v1", func(c *gin.Context) {
		auth.SetUserID(c, owner)
		c.Next()
	})

	RegisterRoutes(rg, Deps{
		Indexer:   ix,
		Projects:  store.Projects(),
		Stats:     store.Documents(),
		Model:     embedder.Model(),
		Dimension: embedder.Dimension(),
	})

	return &fixture{store: store, locker: locker, router: router, projectID: projectID}
}

func (f *fixture) do(method, query string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(method, "/api/v1/projects/"+f.projectID+"/index"+query, nil))

	return w
}

func TestIndexProject(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "?limit=2&batch=0")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res indexer.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 2, res.IndexedCount)
	assert.Equal(t, 2, res.Limit)
	assert.Equal(t, 1, res.BatchSize)

	w = f.do(http.MethodGet, "")
	require.Equal(t, http.StatusOK, w.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, 3, status.Total)
	assert.Equal(t, 2, status.Indexed)
	assert.Equal(t, 1, status.Pending)

	// unparsable values fall back to defaults
	w = f.do(http.MethodPost, "?limit=abc&batch=xyz")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 1, res.IndexedCount)
	assert.Equal(t, indexer.DefaultLimit, res.Limit)
	assert.Equal(t, indexer.DefaultBatchSize, res.BatchSize)

	w = f.do(http.MethodPost, "?force=1")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 3, res.IndexedCount)
	assert.True(t, res.Force)
}

func TestIndexProjectConflict(t *testing.T) {
	f := newFixture(t)

	lease, err := f.locker.Acquire(context.Background(), "index:project:"+f.projectID, time.Hour)
	require.NoError(t, err)

	defer lease.Release(context.Background()) //nolint:errcheck // test cleanup

	w := f.do(http.MethodPost, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestIndexForeignProject(t *testing.T) {
	f := newFixture(t)
	f.projectID = f.store.AddProject("someone-else", "Other")

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "").Code)
}
