// AngelaMos | 2026
// run_test.go

package migrations

import (
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	src, err := iofs.New(files, "sql")
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })

	version, err := src.First()
	require.NoError(t, err)

	var versions []uint
	for {
		versions = append(versions, version)

		up, _, err := src.ReadUp(version)
		require.NoError(t, err, "up migration %d", version)
		body, err := io.ReadAll(up)
		require.NoError(t, err)
		_ = up.Close()
		assert.NotEmpty(t, strings.TrimSpace(string(body)))

		down, _, err := src.ReadDown(version)
		require.NoError(t, err, "down migration %d", version)
		_ = down.Close()

		next, err := src.Next(version)
		if err != nil {
			require.ErrorIs(t, err, fs.ErrNotExist)
			break
		}
		version = next
	}

	assert.Equal(t, []uint{1, 2, 3}, versions)
}

func TestSchemaCoversRepositories(t *testing.T) {
	var schema strings.Builder
	entries, err := fs.Glob(files, "sql/*.up.sql")
	require.NoError(t, err)
	for _, name := range entries {
		b, err := fs.ReadFile(files, name)
		require.NoError(t, err)
		schema.Write(b)
	}

	for _, table := range []string{
		"users", "refresh_tokens", "access_keys", "characters",
		"email_templates", "email_settings",
	} {
		assert.Contains(t, schema.String(), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}

	assert.Contains(t, schema.String(), "access_level SMALLINT    NOT NULL UNIQUE")
	assert.Contains(t, schema.String(), "name         VARCHAR(255) NOT NULL UNIQUE")
	assert.Contains(t, schema.String(), "ON DELETE CASCADE")
}
