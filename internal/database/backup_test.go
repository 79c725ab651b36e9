package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shareit/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupService(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "Alice", "alice@example.com")

	storagePath := filepath.Join(t.TempDir(), "backups")
	cfg := config.BackupConfig{
		Enabled:       true,
		StoragePath:   storagePath,
		RetentionDays: 1,
	}
	logger := zerolog.Nop()
	s := NewBackupService(db, cfg, &logger)

	t.Run("PerformBackup", func(t *testing.T) {
		path, err := s.PerformBackup(context.Background())
		require.NoError(t, err)
		assert.FileExists(t, path)
		assert.True(t, strings.HasPrefix(filepath.Base(path), backupPrefix))

		backupCfg := config.DatabaseConfig{Driver: DriverSQLite, Path: path}
		restored, err := NewDB(context.Background(), backupCfg, &logger)
		require.NoError(t, err)
		defer restored.Close()

		users, err := restored.GetAllUsers(context.Background())
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "Alice", users[0].Name)
	})

	t.Run("CleanupOldBackups", func(t *testing.T) {
		oldBackup := filepath.Join(storagePath, backupPrefix+"old.db")
		foreign := filepath.Join(storagePath, "keep-me.txt")
		require.NoError(t, os.WriteFile(oldBackup, []byte("old"), 0o644))
		require.NoError(t, os.WriteFile(foreign, []byte("x"), 0o644))

		oldTime := time.Now().AddDate(0, 0, -2)
		require.NoError(t, os.Chtimes(oldBackup, oldTime, oldTime))
		require.NoError(t, os.Chtimes(foreign, oldTime, oldTime))

		s.CleanupOldBackups()

		assert.NoFileExists(t, oldBackup)
		assert.FileExists(t, foreign)

		files, err := os.ReadDir(storagePath)
		require.NoError(t, err)
		assert.Len(t, files, 2)
	})

	t.Run("DisabledReturnsImmediately", func(t *testing.T) {
		disabled := NewBackupService(db, config.BackupConfig{Enabled: false}, &logger)
		done := make(chan struct{})
		go func() {
			disabled.Start(context.Background())
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Start did not return for a disabled service")
		}
	})
}
