package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	cfg := config.DatabaseConfig{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "test.db")}
	db, err := NewDB(context.Background(), cfg, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *DB, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

func createItem(t *testing.T, db *DB, ownerID int64, name string, available bool) *models.Item {
	t.Helper()
	item := &models.Item{Name: name, Description: name + " description", Available: available, OwnerID: ownerID}
	require.NoError(t, db.CreateItem(context.Background(), item))
	return item
}

func createBooking(t *testing.T, db *DB, itemID, bookerID int64, start, end time.Time, status models.BookingStatus) *models.Booking {
	t.Helper()
	b := &models.Booking{ItemID: itemID, BookerID: bookerID, Start: start, End: end, Status: status}
	require.NoError(t, db.CreateBooking(context.Background(), b))
	return b
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(context.Background(), config.DatabaseConfig{Driver: DriverSQLite, Path: dbPath}, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
	assert.Equal(t, DriverSQLite, db.Driver())
}

func TestNewDB_SchemaIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.createTables(context.Background()))
	assert.NoError(t, db.PingContext(context.Background()))
}

func TestNewDB_UnsupportedDriver(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewDB(context.Background(), config.DatabaseConfig{Driver: "mysql"}, &logger)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestRebind(t *testing.T) {
	sqlite := &DB{driver: DriverSQLite}
	pg := &DB{driver: DriverPostgres}

	query := `SELECT * FROM items WHERE owner_id = ? AND name LIKE ? LIMIT ?`
	assert.Equal(t, query, sqlite.rebind(query))
	assert.Equal(t, `SELECT * FROM items WHERE owner_id = $1 AND name LIKE $2 LIMIT $3`, pg.rebind(query))
}

func TestPlaceholdersAndEscape(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
	assert.Equal(t, `50\% off\_now`, escapeLike("50% off_now"))
}

func TestConnectBackoff_Delay(t *testing.T) {
	b := connectBackoff{Initial: 100 * time.Millisecond, Max: time.Second}

	assert.Equal(t, 100*time.Millisecond, b.delay(0))
	assert.Equal(t, 100*time.Millisecond, b.delay(1))
	assert.Equal(t, 400*time.Millisecond, b.delay(3))
	assert.Equal(t, time.Second, b.delay(10))
	assert.Equal(t, time.Second, connectBackoff{}.delay(1))
}

func TestPingWithRetry_ContextCancelled(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.DB.Close())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := db.pingWithRetry(ctx, connectBackoff{Retries: 3, Initial: time.Hour})
	assert.Error(t, err)
}
