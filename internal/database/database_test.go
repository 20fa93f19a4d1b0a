package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"instacord/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleItem(id string, deliveredAt time.Time) *ForwardedItem {
	return &ForwardedItem{
		ItemID:      id,
		ThreadID:    "thread-1",
		Sender:      "alice",
		ItemType:    models.ItemTypeText,
		Category:    models.CategoryAccepted,
		ChannelID:   "chan-1",
		DeliveredAt: deliveredAt,
	}
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestRecordAndGetForwardedItem(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, db.RecordForwardedItem(ctx, sampleItem("item-1", now)))

	got, err := db.GetForwardedItem(ctx, "item-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "item-1", got.ItemID)
	assert.Equal(t, "thread-1", got.ThreadID)
	assert.Equal(t, "alice", got.Sender)
	assert.Equal(t, models.ItemTypeText, got.ItemType)
	assert.Equal(t, models.CategoryAccepted, got.Category)
	assert.Equal(t, "chan-1", got.ChannelID)
}

func TestGetForwardedItem_MissingReturnsNil(t *testing.T) {
	db := newTestDatabase(t)

	got, err := db.GetForwardedItem(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecordForwardedItem_DuplicateIsIgnored(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	item := sampleItem("item-1", time.Now().UTC())
	require.NoError(t, db.RecordForwardedItem(ctx, item))
	require.NoError(t, db.RecordForwardedItem(ctx, item))

	count, err := db.CountForwardedItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCleanupOldRecords(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	old := time.Now().UTC().AddDate(0, 0, -40)
	require.NoError(t, db.RecordForwardedItem(ctx, sampleItem("item-old", old)))
	require.NoError(t, db.RecordForwardedItem(ctx, sampleItem("item-new", time.Now().UTC())))

	require.NoError(t, db.CleanupOldRecords(ctx, 30))

	count, err := db.CountForwardedItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := db.GetForwardedItem(ctx, "item-new")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestCleanupOldRecords_DisabledRetention(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	old := time.Now().UTC().AddDate(0, 0, -400)
	require.NoError(t, db.RecordForwardedItem(ctx, sampleItem("item-old", old)))

	require.NoError(t, db.CleanupOldRecords(ctx, 0))

	count, err := db.CountForwardedItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSenderEncryptionRoundTrip(t *testing.T) {
	t.Setenv("INSTACORD_ENABLE_ENCRYPTION", "true")
	t.Setenv("INSTACORD_ENCRYPTION_SECRET", "0123456789abcdef0123456789abcdef")

	db := newTestDatabase(t)
	ctx := context.Background()

	require.NoError(t, db.RecordForwardedItem(ctx, sampleItem("item-1", time.Now().UTC())))

	// Column must not hold the plaintext.
	var stored string
	err := db.db.QueryRowContext(ctx, `SELECT sender FROM forwarded_items WHERE item_id = ?`, "item-1").Scan(&stored)
	require.NoError(t, err)
	assert.NotEqual(t, "alice", stored)

	got, err := db.GetForwardedItem(ctx, "item-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Sender)
}

func TestSenderEncryption_ShortSecretRejected(t *testing.T) {
	t.Setenv("INSTACORD_ENABLE_ENCRYPTION", "true")
	t.Setenv("INSTACORD_ENCRYPTION_SECRET", "too-short")

	_, err := New(filepath.Join(t.TempDir(), "archive.db"))
	assert.Error(t, err)
}

func TestCountForwardedItems(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, db.RecordForwardedItem(ctx, sampleItem(fmt.Sprintf("item-%d", i), time.Now().UTC())))
	}

	count, err := db.CountForwardedItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}
