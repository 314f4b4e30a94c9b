package mails

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmailTmpl(t *testing.T) {
	partials, err := parseEmailTmpl("user_welcome.html", map[string]any{
		"name":  "<Alice>",
		"email": "alice@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to your watchlist!", partials["subject"])
	assert.Contains(t, partials["plainBody"], "alice@example.com")
	assert.Contains(t, partials["htmlBody"], "&lt;Alice&gt;")
}

func TestParseEmailTmpl_Missing(t *testing.T) {
	_, err := parseEmailTmpl("missing.html", nil)
	assert.Error(t, err)
}

func TestSend_UnreachableServer(t *testing.T) {
	m := New("127.0.0.1", 1, 0, "", "", "Watchlist <no-reply@watchlist.local>", 1)
	err := m.Send("alice@example.com", "user_welcome.html", map[string]any{"name": "Alice", "email": "alice@example.com"})
	assert.Error(t, err)
}
