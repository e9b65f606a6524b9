package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khrees2412/jobsphere/internal/app"
)

func writeSQLiteConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "server:\n  env: test\n" +
		"database:\n  driver: sqlite3\n  dsn: " + filepath.Join(dir, "jobsphere.db") + "\n" +
		"auth:\n  bcrypt_cost: 4\n" +
		"log:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestRunClosesAppWhenCommandFails(t *testing.T) {
	var seen *app.App
	failing := &cobra.Command{
		Use: "always-fails",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			seen = a
			return errors.New("boom")
		},
	}
	rootCmd.AddCommand(failing)
	t.Cleanup(func() { rootCmd.RemoveCommand(failing) })

	ctx := context.Background()
	err := run(ctx, []string{"--config", writeSQLiteConfig(t), "always-fails"})
	require.EqualError(t, err, "boom")

	require.NotNil(t, seen)
	require.NotNil(t, seen.DB)
	assert.Error(t, seen.DB.PingContext(ctx), "database should be closed after a failed command")
	assert.Nil(t, current)
}

func TestRunClosesAppAfterSeed(t *testing.T) {
	ctx := context.Background()
	path := writeSQLiteConfig(t)

	require.NoError(t, run(ctx, []string{"--config", path, "seed"}))
	assert.Nil(t, current)

	err := run(ctx, []string{"--config", path, "seed", "--file", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.ErrorContains(t, err, "failed to read seed file")
	assert.Nil(t, current)
}
