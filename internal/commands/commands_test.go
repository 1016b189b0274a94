package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devfolio/portfolio-backend/internal/client"
)

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "line one line two", preview("line one\n  line two", 40))
	assert.Equal(t, "abcd…", preview("abcdefgh", 5))
	assert.Equal(t, "héll…", preview("héllo wörld", 5))
}

func TestRestore_RequiresSavedSession(t *testing.T) {
	sessionPath = filepath.Join(t.TempDir(), "session.json")
	t.Cleanup(func() { sessionPath = "" })

	_, _, _, err := restore()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "portfolioctl login")
}

func TestRestore_LoadsSavedToken(t *testing.T) {
	sessionPath = filepath.Join(t.TempDir(), "session.json")
	t.Cleanup(func() { sessionPath = "" })

	tf := client.TokenFile{Path: sessionPath}
	require.NoError(t, tf.Save(client.State{
		BaseURL:   "http://localhost:9999",
		Provider:  providerLocal,
		Email:     "admin@example.com",
		Token:     "tok-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	c, state, _, err := restore()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", c.Token())
	assert.Equal(t, "admin@example.com", state.Email)

	p, err := refreshProvider(c, state)
	require.NoError(t, err)
	assert.IsType(t, &client.LocalProvider{}, p)
}

func TestRefreshProvider_FirebaseNeedsKey(t *testing.T) {
	t.Setenv("FIREBASE_WEB_API_KEY", "")
	webAPIKey = ""

	_, err := refreshProvider(nil, &client.State{Provider: providerFirebase, RefreshToken: "r"})
	require.Error(t, err)

	webAPIKey = "key"
	t.Cleanup(func() { webAPIKey = "" })
	p, err := refreshProvider(nil, &client.State{Provider: providerFirebase, RefreshToken: "r"})
	require.NoError(t, err)
	fa, ok := p.(*client.FirebaseAuth)
	require.True(t, ok)
	assert.Equal(t, "r", fa.RefreshToken())
}
