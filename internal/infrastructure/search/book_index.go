// Package search keeps books in an Elasticsearch index.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
	"github.com/oksasatya/go-library-api/internal/domain/repository"
)

const requestTimeout = 3 * time.Second

type BookIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewBookIndex(es *elasticsearch.Client, index string) (*BookIndex, error) {
	if es == nil || index == "" {
		return nil, errors.New("elasticsearch not configured")
	}
	return &BookIndex{es: es, index: index}, nil
}

type bookDoc struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AuthorID    string `json:"author_id"`
	ReleaseDate string `json:"release_date,omitempty"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toDoc(b *entity.Book) bookDoc {
	d := bookDoc{
		ID:          b.ID,
		Title:       b.Title,
		AuthorID:    b.AuthorID,
		Description: b.Description,
		CreatedAt:   b.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   b.UpdatedAt.Format(time.RFC3339Nano),
	}
	if !b.ReleaseDate.IsZero() {
		d.ReleaseDate = b.ReleaseDate.Format("2006-01-02")
	}
	return d
}

func (d bookDoc) book() entity.Book {
	b := entity.Book{ID: d.ID, Title: d.Title, AuthorID: d.AuthorID, Description: d.Description}
	if t, err := time.Parse("2006-01-02", d.ReleaseDate); err == nil {
		b.ReleaseDate = t
	}
	b.CreatedAt, _ = time.Parse(time.RFC3339Nano, d.CreatedAt)
	b.UpdatedAt, _ = time.Parse(time.RFC3339Nano, d.UpdatedAt)
	return b
}

func (i *BookIndex) Index(ctx context.Context, b *entity.Book) error {
	body, err := json.Marshal(toDoc(b))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: strconv.FormatInt(b.ID, 10),
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index book %d: %s", b.ID, res.Status())
	}
	return nil
}

func (i *BookIndex) Remove(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{Index: i.index, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	// a missing document is already removed
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete book %d: %s", id, res.Status())
	}
	return nil
}

// Search runs a multi_match over title and description.
func (i *BookIndex) Search(ctx context.Context, q string, size int) ([]entity.Book, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description"},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := i.es.Search(i.es.Search.WithContext(c), i.es.Search.WithIndex(i.index), i.es.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string  `json:"_id"`
				Source bookDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.Book, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source.book())
	}
	return out, nil
}

var _ repository.BookIndex = (*BookIndex)(nil)
