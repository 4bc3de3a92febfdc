package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oculus/oculus/pkg/window"
)

func TestCommandExists(t *testing.T) {
	assert.True(t, CommandExists("sh"))
	assert.False(t, CommandExists("nonexistent_command_xyz"))
}

func TestQuery(t *testing.T) {
	if !CommandExists("sh") {
		t.Skip("sh not available")
	}

	t.Run("Stdout is returned", func(t *testing.T) {
		out, err := Query(context.Background(), "test", "sh", "-c", "echo '[]'")
		require.NoError(t, err)
		assert.Equal(t, "[]\n", string(out))
	})

	t.Run("Non-zero exit is unavailable", func(t *testing.T) {
		_, err := Query(context.Background(), "test", "sh", "-c", "echo broken >&2; exit 3")

		var unavailable *window.DirectoryUnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, "test", unavailable.Backend)
		assert.Contains(t, err.Error(), "broken")
	})

	t.Run("Timeout is unavailable", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := Query(ctx, "test", "sh", "-c", "sleep 5")

		var unavailable *window.DirectoryUnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Contains(t, err.Error(), "did not respond")
	})

	t.Run("Missing binary is unavailable", func(t *testing.T) {
		_, err := Query(context.Background(), "test", "nonexistent_command_xyz")

		var unavailable *window.DirectoryUnavailableError
		require.ErrorAs(t, err, &unavailable)
	})
}
