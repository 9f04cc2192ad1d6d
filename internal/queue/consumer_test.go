package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleUserRegistered_AppendsLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	for i, email := range []string{"a@x.com", "b@x.com"} {
		body, err := json.Marshal(UserRegisteredEvent{
			EventID: "ev-" + email, UserID: uint64(i + 1), Email: email, Role: "tenant",
			RegisteredAt: "2026-01-02T03:04:05Z",
		})
		require.NoError(t, err)
		require.NoError(t, HandleUserRegistered(dir, body))
	}

	raw, err := os.ReadFile(filepath.Join(dir, "audit.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "user_id=1")
	assert.Contains(t, lines[0], `email="a@x.com"`)
	assert.Contains(t, lines[1], "event_id=ev-b@x.com")
}

func TestHandleUserRegistered_RejectsBadPayload(t *testing.T) {
	dir := t.TempDir()

	assert.Error(t, HandleUserRegistered(dir, []byte("{not json")))
	assert.Error(t, HandleUserRegistered(dir, []byte(`{"user_id":0}`)))

	_, err := os.Stat(filepath.Join(dir, "audit.log"))
	assert.True(t, os.IsNotExist(err))
}
