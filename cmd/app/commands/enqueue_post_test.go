package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunEnqueuePost(t *testing.T) {
	ctx := context.Background()

	t.Run("missing-payload-file", func(t *testing.T) {
		err := RunEnqueuePost(
			ctx,
			filepath.Join(t.TempDir(), "does-not-exist.json"),
			"project-1",
			2,
			"",
			"application/json",
			"",
			false,
		)
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to read payload file")
	})

	t.Run("missing-project-id", func(t *testing.T) {
		payloadPath := filepath.Join(t.TempDir(), "payload.json")
		require.NoError(t, os.WriteFile(payloadPath, []byte(`{"message":"hi"}`), 0o600))

		err := RunEnqueuePost(ctx, payloadPath, "", 2, "", "application/json", "", false)
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid event post")
	})
}
