package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ricordi/internal/models"
	"ricordi/internal/observability"
)

const (
	tablePhotos    = "photos"
	tableComments  = "comments"
	tableGuestbook = "guestbook_entries"
)

// RESTConfig holds connection settings for the hosted store.
type RESTConfig struct {
	BaseURL string
	APIKey  string
	Bucket  string
	// Timeout bounds every call; zero means 30s.
	Timeout time.Duration
}

// restStore talks to the hosted store's auto-generated REST API: row access
// under /rest/v1/{table} and blob access under /storage/v1/object.
type restStore struct {
	base    string
	apiKey  string
	bucket  string
	httpc   *http.Client
	photos  restPhotoRepository
	comment restCommentRepository
	book    restGuestbookRepository
	blobs   restBlobStore
}

// NewREST returns a Store backed by the hosted service at cfg.BaseURL.
func NewREST(cfg RESTConfig) Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	s := &restStore{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey: cfg.APIKey,
		bucket: cfg.Bucket,
		httpc:  &http.Client{Timeout: timeout},
	}
	s.photos = restPhotoRepository{s}
	s.comment = restCommentRepository{s}
	s.book = restGuestbookRepository{s}
	s.blobs = restBlobStore{s}
	return s
}

func (s *restStore) Photos() PhotoRepository        { return s.photos }
func (s *restStore) Comments() CommentRepository    { return s.comment }
func (s *restStore) Guestbook() GuestbookRepository { return s.book }
func (s *restStore) Blobs() BlobStore               { return s.blobs }

// do sends a request with auth headers and decodes the JSON body into dest
// when dest is non-nil. Non-2xx responses are returned as errors with the
// response body included for debugging.
func (s *restStore) do(ctx context.Context, method, rawURL string, headers map[string]string, body []byte, dest any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}

	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("store returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// selectRows fetches all rows of a table with the given ordering and optional
// equality filters, decoded into dest (a pointer to a slice).
func (s *restStore) selectRows(ctx context.Context, table, orderBy string, filters map[string]string, dest any) error {
	ctx, span := observability.TraceStoreCall(ctx, "select", table)
	start := time.Now()

	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", orderBy)
	for col, val := range filters {
		q.Set(col, "eq."+val)
	}
	err := s.do(ctx, http.MethodGet, fmt.Sprintf("%s/rest/v1/%s?%s", s.base, table, q.Encode()), nil, nil, dest)

	observability.ObserveStoreOp("select", table, start, err)
	observability.EndSpan(span, err)
	return err
}

// insertRow inserts one record and decodes the representation echoed back by
// the store (with server-assigned id and created_at) into dest.
func (s *restStore) insertRow(ctx context.Context, table string, record, dest any) error {
	ctx, span := observability.TraceStoreCall(ctx, "insert", table)
	start := time.Now()

	body, err := json.Marshal([]any{record})
	if err == nil {
		var rows json.RawMessage
		headers := map[string]string{
			"Content-Type": "application/json",
			"Prefer":       "return=representation",
		}
		err = s.do(ctx, http.MethodPost, fmt.Sprintf("%s/rest/v1/%s", s.base, table), headers, body, &rows)
		if err == nil {
			err = decodeSingle(rows, dest)
		}
	}

	observability.ObserveStoreOp("insert", table, start, err)
	observability.EndSpan(span, err)
	return err
}

// updateByID patches the record with the given id.
func (s *restStore) updateByID(ctx context.Context, table, id string, fields map[string]any) error {
	ctx, span := observability.TraceStoreCall(ctx, "update", table)
	start := time.Now()

	body, err := json.Marshal(fields)
	if err == nil {
		headers := map[string]string{
			"Content-Type": "application/json",
			"Prefer":       "return=minimal",
		}
		u := fmt.Sprintf("%s/rest/v1/%s?id=eq.%s", s.base, table, url.QueryEscape(id))
		err = s.do(ctx, http.MethodPatch, u, headers, body, nil)
	}

	observability.ObserveStoreOp("update", table, start, err)
	observability.EndSpan(span, err)
	return err
}

// decodeSingle unwraps the one-element array the store returns for a
// single-record insert.
func decodeSingle(rows json.RawMessage, dest any) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(rows, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("expected 1 inserted row, got %d", len(raw))
	}
	return json.Unmarshal(raw[0], dest)
}

type restPhotoRepository struct{ s *restStore }

func (r restPhotoRepository) List(ctx context.Context) ([]models.Photo, error) {
	var photos []models.Photo
	if err := r.s.selectRows(ctx, tablePhotos, "created_at.desc", nil, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

func (r restPhotoRepository) Insert(ctx context.Context, photo NewPhoto) (*models.Photo, error) {
	var inserted models.Photo
	if err := r.s.insertRow(ctx, tablePhotos, photo, &inserted); err != nil {
		return nil, err
	}
	return &inserted, nil
}

func (r restPhotoRepository) UpdateLikes(ctx context.Context, id string, likes int) error {
	return r.s.updateByID(ctx, tablePhotos, id, map[string]any{"likes_count": likes})
}

type restCommentRepository struct{ s *restStore }

func (r restCommentRepository) ListByPhoto(ctx context.Context, photoID string) ([]models.Comment, error) {
	var comments []models.Comment
	filters := map[string]string{"photo_id": photoID}
	if err := r.s.selectRows(ctx, tableComments, "created_at.asc", filters, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r restCommentRepository) Insert(ctx context.Context, comment NewComment) (*models.Comment, error) {
	var inserted models.Comment
	if err := r.s.insertRow(ctx, tableComments, comment, &inserted); err != nil {
		return nil, err
	}
	return &inserted, nil
}

type restGuestbookRepository struct{ s *restStore }

func (r restGuestbookRepository) List(ctx context.Context) ([]models.GuestbookEntry, error) {
	var entries []models.GuestbookEntry
	if err := r.s.selectRows(ctx, tableGuestbook, "created_at.desc", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r restGuestbookRepository) Insert(ctx context.Context, entry NewGuestbookEntry) (*models.GuestbookEntry, error) {
	var inserted models.GuestbookEntry
	if err := r.s.insertRow(ctx, tableGuestbook, entry, &inserted); err != nil {
		return nil, err
	}
	return &inserted, nil
}

type restBlobStore struct{ s *restStore }

func (b restBlobStore) Upload(ctx context.Context, key, contentType string, data []byte) error {
	ctx, span := observability.TraceStoreCall(ctx, "upload", b.s.bucket)
	start := time.Now()

	headers := map[string]string{"Content-Type": contentType}
	u := fmt.Sprintf("%s/storage/v1/object/%s/%s", b.s.base, b.s.bucket, key)
	err := b.s.do(ctx, http.MethodPost, u, headers, data, nil)

	observability.ObserveStoreOp("upload", b.s.bucket, start, err)
	observability.EndSpan(span, err)
	return err
}

func (b restBlobStore) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", b.s.base, b.s.bucket, key)
}
