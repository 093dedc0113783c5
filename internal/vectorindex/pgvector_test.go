package vectorindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEfSearchFor(t *testing.T) {
	assert.Equal(t, 40, EfSearchFor(5))
	assert.Equal(t, 40, EfSearchFor(30))
	assert.Equal(t, 200, EfSearchFor(200))
	assert.Equal(t, 1000, EfSearchFor(5000))
}

func TestQueryEnablesIterativeScan(t *testing.T) {
	assert.Contains(t, iterativeScanQuery, "hnsw.iterative_scan")
	assert.Contains(t, iterativeScanQuery, "strict_order")
	assert.Contains(t, efSearchQuery, "hnsw.ef_search")
	assert.Contains(t, queryItemsQuery, "namespace = $1 AND metadata @> $3")
}
