package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestREST(t *testing.T, handler http.HandlerFunc) Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewREST(RESTConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Bucket:  "media",
	})
}

func TestRESTListPhotos(t *testing.T) {
	var gotReq *http.Request
	st := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"p1","likes_count":3},{"id":"p2","likes_count":1}]`))
	})

	photos, err := st.Photos().List(context.Background())
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, "p1", photos[0].ID)
	assert.Equal(t, 3, photos[0].LikesCount)

	require.NotNil(t, gotReq)
	assert.Equal(t, http.MethodGet, gotReq.Method)
	assert.Equal(t, "/rest/v1/photos", gotReq.URL.Path)
	assert.Equal(t, "created_at.desc", gotReq.URL.Query().Get("order"))
	assert.Equal(t, "*", gotReq.URL.Query().Get("select"))
	assert.Equal(t, "test-key", gotReq.Header.Get("apikey"))
	assert.Equal(t, "Bearer test-key", gotReq.Header.Get("Authorization"))
}

func TestRESTListCommentsFiltersByPhoto(t *testing.T) {
	var gotReq *http.Request
	st := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := st.Comments().ListByPhoto(context.Background(), "photo-9")
	require.NoError(t, err)

	require.NotNil(t, gotReq)
	assert.Equal(t, "/rest/v1/comments", gotReq.URL.Path)
	assert.Equal(t, "eq.photo-9", gotReq.URL.Query().Get("photo_id"))
	assert.Equal(t, "created_at.asc", gotReq.URL.Query().Get("order"))
}

func TestRESTInsertPhotoUnwrapsRepresentation(t *testing.T) {
	var gotBody []byte
	var gotPrefer string
	st := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotPrefer = r.Header.Get("Prefer")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":"srv-id","url":"u","file_type":"image","uploaded_by":"Anna","likes_count":0}]`))
	})

	inserted, err := st.Photos().Insert(context.Background(), NewPhoto{
		URL:        "u",
		FileType:   "image",
		UploadedBy: "Anna",
	})
	require.NoError(t, err)
	assert.Equal(t, "srv-id", inserted.ID)

	assert.Equal(t, "return=representation", gotPrefer)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &rows))
	require.Len(t, rows, 1, "inserts are sent as a one-element array")
	assert.Equal(t, "Anna", rows[0]["uploaded_by"])
}

func TestRESTUpdateLikes(t *testing.T) {
	var gotReq *http.Request
	var gotBody []byte
	st := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotReq = r.Clone(context.Background())
		w.WriteHeader(http.StatusNoContent)
	})

	err := st.Photos().UpdateLikes(context.Background(), "p1", 7)
	require.NoError(t, err)

	require.NotNil(t, gotReq)
	assert.Equal(t, http.MethodPatch, gotReq.Method)
	assert.Equal(t, "/rest/v1/photos", gotReq.URL.Path)
	assert.Equal(t, "eq.p1", gotReq.URL.Query().Get("id"))
	assert.JSONEq(t, `{"likes_count":7}`, string(gotBody))
}

func TestRESTErrorIncludesBody(t *testing.T) {
	st := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"permission denied"}`))
	})

	_, err := st.Photos().List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "permission denied")
}

func TestRESTBlobUpload(t *testing.T) {
	var gotReq *http.Request
	var gotBody []byte
	st := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotReq = r.Clone(context.Background())
		w.WriteHeader(http.StatusOK)
	})

	err := st.Blobs().Upload(context.Background(), "123_abc.jpg", "image/jpeg", []byte("jpeg"))
	require.NoError(t, err)

	require.NotNil(t, gotReq)
	assert.Equal(t, http.MethodPost, gotReq.Method)
	assert.Equal(t, "/storage/v1/object/media/123_abc.jpg", gotReq.URL.Path)
	assert.Equal(t, "image/jpeg", gotReq.Header.Get("Content-Type"))
	assert.Equal(t, []byte("jpeg"), gotBody)
}

func TestRESTPublicURL(t *testing.T) {
	st := NewREST(RESTConfig{BaseURL: "https://store.example", Bucket: "media"})
	assert.Equal(t,
		"https://store.example/storage/v1/object/public/media/key.jpg",
		st.Blobs().PublicURL("key.jpg"))
}

func TestDecodeSingleRejectsWrongCount(t *testing.T) {
	var dest map[string]any
	err := decodeSingle(json.RawMessage(`[]`), &dest)
	require.Error(t, err)

	err = decodeSingle(json.RawMessage(`[{"a":1},{"a":2}]`), &dest)
	require.Error(t, err)

	require.NoError(t, decodeSingle(json.RawMessage(`[{"a":1}]`), &dest))
	assert.Equal(t, float64(1), dest["a"])
}
