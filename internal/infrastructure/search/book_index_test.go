package search

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
)

type recorded struct {
	method, path, body string
}

func newTestIndex(t *testing.T, status int, reply string) (*BookIndex, *[]recorded) {
	t.Helper()
	var mu sync.Mutex
	calls := &[]recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		*calls = append(*calls, recorded{r.Method, r.URL.Path, string(b)})
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	idx, err := NewBookIndex(es, "books")
	require.NoError(t, err)
	return idx, calls
}

func TestBookIndex_Index(t *testing.T) {
	idx, calls := newTestIndex(t, http.StatusCreated, `{"result":"created"}`)

	err := idx.Index(context.Background(), &entity.Book{
		ID:          7,
		Title:       "Dune",
		ReleaseDate: time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	c := (*calls)[0]
	assert.Equal(t, http.MethodPut, c.method)
	assert.Equal(t, "/books/_doc/7", c.path)
	assert.Contains(t, c.body, `"release_date":"1965-08-01"`)
}

func TestBookIndex_RemoveMissingIsFine(t *testing.T) {
	idx, _ := newTestIndex(t, http.StatusNotFound, `{"result":"not_found"}`)
	assert.NoError(t, idx.Remove(context.Background(), 3))
}

func TestBookIndex_Search(t *testing.T) {
	reply := `{"hits":{"hits":[{"_id":"1","_source":{"id":1,"title":"Dune","release_date":"1965-08-01"}}]}}`
	idx, calls := newTestIndex(t, http.StatusOK, reply)

	books, err := idx.Search(context.Background(), "dune", 0)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, int64(1), books[0].ID)
	assert.Equal(t, 1965, books[0].ReleaseDate.Year())

	c := (*calls)[0]
	assert.True(t, strings.HasSuffix(c.path, "/_search"))
	assert.Contains(t, c.body, `"size":10`)
}

func TestBookIndex_SearchError(t *testing.T) {
	idx, _ := newTestIndex(t, http.StatusInternalServerError, `{"error":"boom"}`)
	_, err := idx.Search(context.Background(), "x", 5)
	assert.Error(t, err)
}

func TestNewBookIndex_RequiresClient(t *testing.T) {
	_, err := NewBookIndex(nil, "books")
	assert.Error(t, err)
}
