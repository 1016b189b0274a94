package technologies

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devfolio/portfolio-backend/internal/apperror"
	"github.com/devfolio/portfolio-backend/internal/store"
)

func newTestRouter() (*gin.Engine, *store.Memory) {
	gin.SetMode(gin.TestMode)

	mem := store.NewMemory()
	r := gin.New()
	NewHandler(NewRepo(mem), zap.NewNop()).Register(r.Group("/api/technologies"), func(c *gin.Context) { c.Next() })
	return r, mem
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rr, req)
	return rr
}

func TestRepo_CreateAndRename(t *testing.T) {
	repo := NewRepo(store.NewMemory())
	repo.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	ctx := context.Background()

	tech, err := repo.Create(ctx, "  Docker ")
	require.NoError(t, err)
	assert.Equal(t, "Docker", tech.Name)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), tech.CreatedAt)

	_, err = repo.Create(ctx, " ")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	name := "Kubernetes"
	renamed, err := repo.Rename(ctx, tech.ID, &name)
	require.NoError(t, err)
	assert.Equal(t, "Kubernetes", renamed.Name)
	require.NotNil(t, renamed.UpdatedAt)

	got, err := repo.Get(ctx, tech.ID)
	require.NoError(t, err)
	assert.Equal(t, renamed, got)
}

func TestHTTP_CRUD(t *testing.T) {
	r, mem := newTestRouter()

	for _, name := range []string{"Redis", "Docker", "PostgreSQL"} {
		require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/technologies", `{"name":"`+name+`"}`).Code)
	}
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/technologies", `{"name":""}`).Code)

	rr := do(r, http.MethodGet, "/api/technologies", "")
	var items []Technology
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
	require.Len(t, items, 3)
	assert.Equal(t, []string{"Docker", "PostgreSQL", "Redis"}, []string{items[0].Name, items[1].Name, items[2].Name})

	rr = do(r, http.MethodPut, "/api/technologies/"+items[0].ID, `{"name":"Podman"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"Podman"`)

	rr = do(r, http.MethodDelete, "/api/technologies/"+items[0].ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"Technology deleted successfully."}`, rr.Body.String())
	assert.Equal(t, 2, mem.Len(Collection))
}

func TestHTTP_UnknownID(t *testing.T) {
	r, mem := newTestRouter()
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/technologies", `{"name":"Go"}`).Code)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rr := do(r, method, "/api/technologies/missing", `{"name":"x"}`)
		assert.Equal(t, http.StatusNotFound, rr.Code, method)
		assert.JSONEq(t, `{"error":"Technology not found"}`, rr.Body.String())
	}
	assert.Equal(t, 1, mem.Len(Collection))
}
