package upload

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ricordi/internal/models"
	"ricordi/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRejectsMissingUsername(t *testing.T) {
	st := testutil.NewMemStore()
	co := NewCoordinator(st.Blobs(), st.Photos())

	for _, username := range []string{"", "   "} {
		_, err := co.Submit(context.Background(), SubmitInput{
			Username:    username,
			Filename:    "pic.jpg",
			ContentType: "image/jpeg",
			Content:     []byte("data"),
		})
		require.Error(t, err)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeMissingInput, appErr.Code)
	}

	assert.Zero(t, st.Calls["blobs.upload"], "validation failures make no store calls")
	assert.Zero(t, st.Calls["photos.insert"])
}

func TestSubmitRejectsMissingFile(t *testing.T) {
	st := testutil.NewMemStore()
	co := NewCoordinator(st.Blobs(), st.Photos())

	_, err := co.Submit(context.Background(), SubmitInput{Username: "Anna"})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeMissingInput, appErr.Code)
	assert.Zero(t, st.Calls["blobs.upload"])
}

func TestSubmitStoresBlobThenMetadata(t *testing.T) {
	st := testutil.NewMemStore()
	co := NewCoordinator(st.Blobs(), st.Photos())

	photo, err := co.Submit(context.Background(), SubmitInput{
		Username:    "Anna",
		Filename:    "festa.jpg",
		ContentType: "image/jpeg",
		Content:     []byte("jpeg-bytes"),
	})
	require.NoError(t, err)
	require.NotNil(t, photo)

	assert.Equal(t, "Anna", photo.UploadedBy)
	assert.Equal(t, models.FileTypeImage, photo.FileType)
	assert.Equal(t, 0, photo.LikesCount)
	assert.True(t, strings.HasSuffix(photo.URL, ".jpg"), "key keeps the original extension")

	key := photo.URL[strings.LastIndex(photo.URL, "/")+1:]
	data, ok := st.Blob(key)
	require.True(t, ok, "blob stored under the derived key")
	assert.Equal(t, []byte("jpeg-bytes"), data)
}

func TestSubmitClassifiesVideo(t *testing.T) {
	st := testutil.NewMemStore()
	co := NewCoordinator(st.Blobs(), st.Photos())

	photo, err := co.Submit(context.Background(), SubmitInput{
		Username:    "Luca",
		Filename:    "clip.mp4",
		ContentType: "video/mp4",
		Content:     []byte("mp4-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.FileTypeVideo, photo.FileType)
}

func TestSubmitStorageFailureAbortsBeforeMetadata(t *testing.T) {
	st := testutil.NewMemStore()
	st.Fail["blobs.upload"] = errors.New("bucket unavailable")
	co := NewCoordinator(st.Blobs(), st.Photos())

	_, err := co.Submit(context.Background(), SubmitInput{
		Username:    "Anna",
		Filename:    "pic.jpg",
		ContentType: "image/jpeg",
		Content:     []byte("data"),
	})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeStorageFailure, appErr.Code)
	assert.Zero(t, st.Calls["photos.insert"], "no metadata record after a failed upload")
}

func TestSubmitMetadataFailureLeavesOrphanBlob(t *testing.T) {
	st := testutil.NewMemStore()
	st.Fail["photos.insert"] = errors.New("insert refused")
	co := NewCoordinator(st.Blobs(), st.Photos())

	_, err := co.Submit(context.Background(), SubmitInput{
		Username:    "Anna",
		Filename:    "pic.jpg",
		ContentType: "image/jpeg",
		Content:     []byte("data"),
	})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeMetadataFailure, appErr.Code)
	assert.Equal(t, 1, st.Calls["blobs.upload"], "the blob upload already happened")
}

func TestStorageKeyFormat(t *testing.T) {
	key := storageKey("photo.JPG")
	parts := strings.SplitN(key, "_", 2)
	require.Len(t, parts, 2)
	assert.True(t, strings.HasSuffix(key, ".JPG"))
	assert.NotEqual(t, key, storageKey("photo.JPG"), "keys carry a random suffix")
}

func TestClassify(t *testing.T) {
	assert.Equal(t, models.FileTypeVideo, classify("video/quicktime"))
	assert.Equal(t, models.FileTypeImage, classify("image/png"))
	assert.Equal(t, models.FileTypeImage, classify("application/octet-stream"))
	assert.Equal(t, models.FileTypeImage, classify(""))
}
