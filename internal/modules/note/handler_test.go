package note

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(svc Service) *chi.Mux {
	router := chi.NewRouter()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(router)
	return router
}

func do(t *testing.T, router http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestNoteCRUD(t *testing.T) {
	router := newTestRouter(NewService(NewMemoryRepository()))

	w := do(t, router, http.MethodPost, "/notes", map[string]interface{}{
		"title":   "groceries",
		"content": "milk, eggs",
		"pinned":  true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	created := decode[Note](t, w)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	w = do(t, router, http.MethodGet, "/notes/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	fetched := decode[Note](t, w)
	assert.Equal(t, "groceries", fetched.Title)
	assert.Equal(t, "milk, eggs", fetched.Content)
	assert.Equal(t, true, fetched.Attributes["pinned"])

	w = do(t, router, http.MethodPut, "/notes/"+created.ID, map[string]interface{}{
		"content": "milk, eggs, bread",
		"color":   "yellow",
	})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[Note](t, w)
	assert.Equal(t, "groceries", updated.Title, "absent fields are kept")
	assert.Equal(t, "milk, eggs, bread", updated.Content)
	assert.Equal(t, map[string]interface{}{"pinned": true, "color": "yellow"}, updated.Attributes)

	w = do(t, router, http.MethodDelete, "/notes/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Note deleted"}`, w.Body.String())

	w = do(t, router, http.MethodGet, "/notes/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Note not found"}`, w.Body.String())
}

func TestNoteKeepsArbitraryFields(t *testing.T) {
	router := newTestRouter(NewService(NewMemoryRepository()))

	w := do(t, router, http.MethodPost, "/notes", map[string]interface{}{
		"title": "a",
		"color": "red",
		"tags":  []string{"x", "y"},
		"meta":  map[string]interface{}{"source": "import"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	created := decode[Note](t, w)

	w = do(t, router, http.MethodGet, "/notes/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "a", body["title"])
	assert.Equal(t, "red", body["color"])
	assert.Equal(t, []interface{}{"x", "y"}, body["tags"])
	assert.Equal(t, map[string]interface{}{"source": "import"}, body["meta"])
	assert.NotContains(t, body, "attributes")
}

func TestCreateNoteIgnoresServerManagedFields(t *testing.T) {
	router := newTestRouter(NewService(NewMemoryRepository()))

	w := do(t, router, http.MethodPost, "/notes", map[string]interface{}{
		"id":         "chosen-by-client",
		"title":      "a",
		"created_at": "2001-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusOK, w.Code)
	created := decode[Note](t, w)
	assert.NotEqual(t, "chosen-by-client", created.ID)
	assert.NotEqual(t, 2001, created.CreatedAt.Year())
	assert.Empty(t, created.Attributes)
}

func TestListNotesNewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(context.Background(), &Note{
			ID:        title,
			Title:     title,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	router := newTestRouter(NewService(repo))

	w := do(t, router, http.MethodGet, "/notes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	notes := decode[[]Note](t, w)
	require.Len(t, notes, 3)
	assert.Equal(t, "third", notes[0].Title)
	assert.Equal(t, "second", notes[1].Title)
	assert.Equal(t, "first", notes[2].Title)
}

func TestListNotesEmptyIsArray(t *testing.T) {
	router := newTestRouter(NewService(NewMemoryRepository()))

	w := do(t, router, http.MethodGet, "/notes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestNoteUnknownIDReturns404(t *testing.T) {
	router := newTestRouter(NewService(NewMemoryRepository()))

	tests := []struct {
		method string
		body   interface{}
		want   string
	}{
		{method: http.MethodGet, want: `{"error":"Note not found"}`},
		{method: http.MethodPut, body: map[string]string{"title": "x"}, want: `{"error":"Cannot update note"}`},
		{method: http.MethodDelete, want: `{"error":"Cannot delete note"}`},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := do(t, router, tt.method, "/notes/does-not-exist", tt.body)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

// failingRepo fails every call with err.
type failingRepo struct{ err error }

func (r failingRepo) Create(context.Context, *Note) error { return r.err }

func (r failingRepo) List(context.Context) ([]*Note, error) { return nil, r.err }

func (r failingRepo) GetByID(context.Context, string) (*Note, error) { return nil, r.err }

func (r failingRepo) Update(context.Context, string, UpdateNoteRequest) (*Note, error) {
	return nil, r.err
}

func (r failingRepo) Delete(context.Context, string) error { return r.err }

func TestNoteStoreFailures(t *testing.T) {
	router := newTestRouter(NewService(failingRepo{err: errors.New("connection reset")}))

	w := do(t, router, http.MethodPost, "/notes", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"connection reset"}`, w.Body.String())

	w = do(t, router, http.MethodGet, "/notes", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"connection reset"}`, w.Body.String())

	// id-scoped failures are reported as not found whatever the cause
	w = do(t, router, http.MethodGet, "/notes/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Note not found"}`, w.Body.String())
}

func TestCreateNoteMalformedBody(t *testing.T) {
	router := newTestRouter(NewService(NewMemoryRepository()))

	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
