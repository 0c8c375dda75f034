package comments

import (
	"context"
	"errors"
	"testing"

	"ricordi/internal/models"
	"ricordi/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRejectsEmptyInputs(t *testing.T) {
	st := testutil.NewMemStore()
	p := NewPanel("photo-1", st.Comments())

	cases := []struct{ username, text string }{
		{"", "nice photo"},
		{"Anna", ""},
		{"   ", "nice photo"},
		{"Anna", "   "},
	}
	for _, tc := range cases {
		_, err := p.Add(context.Background(), tc.username, tc.text)
		require.Error(t, err)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeEmptySubmit, appErr.Code)
	}

	assert.Zero(t, st.Calls["comments.insert"], "empty submissions never reach the store")
}

func TestAddAppendsInOrder(t *testing.T) {
	st := testutil.NewMemStore()
	p := NewPanel("photo-1", st.Comments())

	first, err := p.Add(context.Background(), "Anna", "first")
	require.NoError(t, err)
	second, err := p.Add(context.Background(), "Luca", "second")
	require.NoError(t, err)

	list := p.Comments()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
	assert.Equal(t, "Anna", list[0].Username)
	assert.Equal(t, "second", list[1].Comment)
}

func TestAddTrimsInputs(t *testing.T) {
	st := testutil.NewMemStore()
	p := NewPanel("photo-1", st.Comments())

	created, err := p.Add(context.Background(), "  Anna  ", "  ciao  ")
	require.NoError(t, err)
	assert.Equal(t, "Anna", created.Username)
	assert.Equal(t, "ciao", created.Comment)
}

func TestAddWhileInFlightRejected(t *testing.T) {
	st := testutil.NewMemStore()
	p := NewPanel("photo-1", st.Comments())

	// Simulate an in-flight submission.
	require.True(t, p.submitting.CompareAndSwap(false, true))
	defer p.submitting.Store(false)

	_, err := p.Add(context.Background(), "Anna", "ciao")
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeSubmitInFlight, appErr.Code)
	assert.Zero(t, st.Calls["comments.insert"])
	assert.True(t, p.Submitting())
}

func TestAddFailureKeepsList(t *testing.T) {
	st := testutil.NewMemStore()
	p := NewPanel("photo-1", st.Comments())

	_, err := p.Add(context.Background(), "Anna", "first")
	require.NoError(t, err)

	st.Fail["comments.insert"] = errors.New("insert refused")
	_, err = p.Add(context.Background(), "Luca", "second")
	require.Error(t, err)

	assert.Len(t, p.Comments(), 1)
	assert.False(t, p.Submitting(), "the guard is released after a failure")
}

func TestLoadScopedToPhoto(t *testing.T) {
	st := testutil.NewMemStore()
	st.SeedComments(
		models.Comment{ID: "c1", PhotoID: "photo-1", Username: "Anna", Comment: "ciao"},
		models.Comment{ID: "c2", PhotoID: "photo-2", Username: "Luca", Comment: "altro"},
	)

	p := NewPanel("photo-1", st.Comments())
	require.NoError(t, p.Load(context.Background()))

	list := p.Comments()
	require.Len(t, list, 1)
	assert.Equal(t, "c1", list[0].ID)
}

func TestLoadFailureKeepsExistingList(t *testing.T) {
	st := testutil.NewMemStore()
	st.SeedComments(models.Comment{ID: "c1", PhotoID: "photo-1"})

	p := NewPanel("photo-1", st.Comments())
	require.NoError(t, p.Load(context.Background()))
	require.Len(t, p.Comments(), 1)

	st.Fail["comments.list"] = errors.New("boom")
	err := p.Load(context.Background())
	require.Error(t, err)
	assert.Len(t, p.Comments(), 1)
}

func TestManagerReturnsSamePanel(t *testing.T) {
	st := testutil.NewMemStore()
	m := NewManager(st.Comments())

	p1 := m.Panel("photo-1")
	p2 := m.Panel("photo-1")
	p3 := m.Panel("photo-2")

	assert.Same(t, p1, p2)
	assert.NotSame(t, p1, p3)
}
