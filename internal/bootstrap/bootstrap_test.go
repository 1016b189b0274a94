package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/devfolio/portfolio-backend/config"
	authhttp "github.com/devfolio/portfolio-backend/internal/auth/http"
	"github.com/devfolio/portfolio-backend/internal/contacts"
	projecthttp "github.com/devfolio/portfolio-backend/internal/projects/http"
	"github.com/devfolio/portfolio-backend/internal/projects/repository"
	projectsvc "github.com/devfolio/portfolio-backend/internal/projects/service"
	"github.com/devfolio/portfolio-backend/internal/skills"
	"github.com/devfolio/portfolio-backend/internal/store"
	"github.com/devfolio/portfolio-backend/internal/technologies"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "correct horse battery"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:               "0",
			CORSAllowedOrigins: []string{"http://localhost:3000"},
			ShutdownTimeout:    time.Second,
		},
		App: config.AppConfig{
			Environment: "test",
			LogLevel:    "debug",
			Version:     "test",
			ServiceName: "portfolio-backend",
		},
		Store: config.StoreConfig{Driver: "memory"},
		Auth: config.AuthConfig{
			Provider:           "local",
			AllowedAdminEmails: []string{adminEmail},
			CookieName:         "auth_token",
			CookieTTL:          time.Hour,
			CheckRevoked:       true,
			GateMode:           "verify",
			LoginPath:          "/auth/admin",
			PublicPrefixes:     []string{"/auth/admin", "/admin/login", "/api/public"},
			ProtectedPrefixes:  []string{"/admin", "/api/admin"},
			LocalSecret:        strings.Repeat("k", 32),
			LocalUsername:      "admin",
			LocalPasswordHash:  string(hash),
			LocalEmail:         adminEmail,
			LocalTokenTTL:      time.Hour,
		},
		Defaults: config.DefaultsConfig{
			Skills:       []config.SkillDefault{{Name: "Go", Level: 90}, {Name: "React", Level: 80}},
			Technologies: []string{"Go", "Docker", "PostgreSQL"},
		},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func newTestServer(t *testing.T) (*do.Injector, *gin.Engine) {
	t.Helper()
	inj := BuildContainer(testConfig(t), zaptest.NewLogger(t))
	engine, err := do.Invoke[*gin.Engine](inj)
	require.NoError(t, err)
	return inj, engine
}

func serve(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r http.Handler) string {
	t.Helper()
	w := serve(r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "admin",
		"password": adminPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestBuildContainer_HandlersWithSameTypeName(t *testing.T) {
	var inj *do.Injector
	require.NotPanics(t, func() {
		inj = BuildContainer(testConfig(t), zaptest.NewLogger(t))
	})

	projects, err := do.InvokeNamed[*projecthttp.Handler](inj, projectHandlerName)
	require.NoError(t, err)
	assert.NotNil(t, projects)

	sessions, err := do.InvokeNamed[*authhttp.Handler](inj, authHandlerName)
	require.NoError(t, err)
	assert.NotNil(t, sessions)

	assert.Subset(t, inj.ListProvidedServices(), []string{projectHandlerName, authHandlerName})
}

func TestRouter_HealthAndGate(t *testing.T) {
	_, r := newTestServer(t)

	w := serve(r, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"store":"up"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = serve(r, http.MethodGet, "/admin/projects", "", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/auth/admin?callbackUrl=%2Fadmin%2Fprojects", w.Header().Get("Location"))

	w = serve(r, http.MethodGet, "/api/admin/contacts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
}

func TestRouter_AdminFlow(t *testing.T) {
	inj, r := newTestServer(t)
	token := login(t, r)

	project := map[string]any{
		"title":       "My Portfolio",
		"description": "Personal site",
		"githubUrl":   "https://github.com/me/portfolio",
	}

	w := serve(r, http.MethodPost, "/api/projects", "", project)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodPost, "/api/projects", token, project)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = serve(r, http.MethodGet, "/api/projects/slug/my-portfolio", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"My Portfolio"`)

	w = serve(r, http.MethodPost, "/api/contact", "", map[string]string{
		"name":    "Ada",
		"email":   "ada@example.com",
		"message": "Hello there",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, do.MustInvoke[*contacts.Service](inj).Wait(context.Background()))

	w = serve(r, http.MethodGet, "/api/admin/contacts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Contacts []contacts.Submission `json:"contacts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Contacts, 1)
	assert.Equal(t, "ada@example.com", list.Contacts[0].Email)

	// uploads are off without a bucket
	w = serve(r, http.MethodPost, "/api/admin/uploads", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func newSeeder(mem *store.Memory) *Seeder {
	return &Seeder{
		Skills:       skills.NewService(skills.NewRepo(mem)),
		Technologies: technologies.NewRepo(mem),
		Projects:     projectsvc.NewProjectService(repository.NewProjectRepository(mem)),
		Log:          zap.NewNop(),
	}
}

func TestSeeder_DefaultsOnlyIntoEmptyCollections(t *testing.T) {
	mem := store.NewMemory()
	seeder := newSeeder(mem)
	content, err := ResolveSeedContent(testConfig(t).Defaults)
	require.NoError(t, err)
	ctx := context.Background()

	res, err := seeder.Seed(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Skills: 2, Technologies: 3}, res)

	res, err = seeder.Seed(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{}, res)
	assert.Equal(t, 2, mem.Len(skills.Collection))
	assert.Equal(t, 3, mem.Len(technologies.Collection))

	list, err := seeder.Skills.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Go", list[0].Name)
	assert.Equal(t, 90, list[0].Level)
}

const seedYAML = `
skills:
  - name: Go
    level: 95
technologies: [Go, gRPC]
projects:
  - title: Chat Server
    description: Realtime chat
    github_url: https://github.com/me/chat
    technologies: [Go, WebSockets]
    features:
      - rooms
      - presence
`

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	content, err := ResolveSeedContent(config.DefaultsConfig{SeedFile: path})
	require.NoError(t, err)
	require.Len(t, content.Projects, 1)
	assert.Equal(t, "https://github.com/me/chat", content.Projects[0].GithubURL)
	assert.Equal(t, []string{"rooms", "presence"}, content.Projects[0].Features)
	assert.Equal(t, []config.SkillDefault{{Name: "Go", Level: 95}}, content.Skills)

	mem := store.NewMemory()
	res, err := newSeeder(mem).Seed(context.Background(), content)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Skills: 1, Technologies: 2, Projects: 1}, res)

	p, err := newSeeder(mem).Projects.GetBySlug(context.Background(), "chat-server")
	require.NoError(t, err)
	assert.Equal(t, "Realtime chat", p.Description)
}

func TestLoadSeedFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("skills: [name: ]]"), 0o600))

	_, err := LoadSeedFile(path)
	assert.Error(t, err)

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSetGinMode(t *testing.T) {
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	SetGinMode("production")
	assert.Equal(t, gin.ReleaseMode, gin.Mode())
	SetGinMode("development")
	assert.Equal(t, gin.DebugMode, gin.Mode())
	SetGinMode("test")
	assert.Equal(t, gin.TestMode, gin.Mode())
}
