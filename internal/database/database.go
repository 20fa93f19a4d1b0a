package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	apperrors "instacord/internal/errors"
	"instacord/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS forwarded_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	item_id TEXT NOT NULL UNIQUE,
	thread_id TEXT NOT NULL,
	sender TEXT NOT NULL,
	item_type TEXT NOT NULL,
	category TEXT NOT NULL,
	channel_id TEXT NOT NULL,
	delivered_at TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_forwarded_items_delivered_at ON forwarded_items(delivered_at);
CREATE INDEX IF NOT EXISTS idx_forwarded_items_thread_id ON forwarded_items(thread_id);
`

// ForwardedItem is one audit record of a delivered inbox item. The
// archive is informational only: the in-memory dedup ledger stays the
// sole authority on what gets re-delivered, so clearing this table
// never changes forwarding behavior.
type ForwardedItem struct {
	ID          int64
	ItemID      string
	ThreadID    string
	Sender      string
	ItemType    models.ItemType
	Category    models.InboxCategory
	ChannelID   string
	DeliveredAt time.Time
}

type Database struct {
	db        *sql.DB
	encryptor *encryptor
}

// New opens (or creates) the delivery archive at path.
func New(path string) (*Database, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	enc, err := newEncryptor()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	return &Database{db: db, encryptor: enc}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// RecordForwardedItem inserts one delivery record. A duplicate item ID
// is ignored; re-delivery after a restart is expected.
func (d *Database) RecordForwardedItem(ctx context.Context, item *ForwardedItem) error {
	sender, err := d.encryptor.EncryptIfEnabled(item.Sender)
	if err != nil {
		return apperrors.NewDatabaseError("sender encryption", err)
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO forwarded_items
			(item_id, thread_id, sender, item_type, category, channel_id, delivered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ItemID, item.ThreadID, sender, string(item.ItemType), string(item.Category), item.ChannelID, item.DeliveredAt.UTC(),
	)
	if err != nil {
		return apperrors.NewDatabaseError("insert", err)
	}
	return nil
}

// GetForwardedItem looks up one archive record by item ID.
func (d *Database) GetForwardedItem(ctx context.Context, itemID string) (*ForwardedItem, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, item_id, thread_id, sender, item_type, category, channel_id, delivered_at
		FROM forwarded_items WHERE item_id = ?`, itemID)

	var item ForwardedItem
	var itemType, category string
	err := row.Scan(&item.ID, &item.ItemID, &item.ThreadID, &item.Sender, &itemType, &category, &item.ChannelID, &item.DeliveredAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("query", err)
	}

	item.ItemType = models.ItemType(itemType)
	item.Category = models.InboxCategory(category)
	item.Sender, err = d.encryptor.DecryptIfEnabled(item.Sender)
	if err != nil {
		return nil, apperrors.NewDatabaseError("sender decryption", err)
	}
	return &item, nil
}

// CountForwardedItems returns the archive size, for the health report.
func (d *Database) CountForwardedItems(ctx context.Context) (int64, error) {
	var count int64
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM forwarded_items`).Scan(&count); err != nil {
		return 0, apperrors.NewDatabaseError("count", err)
	}
	return count, nil
}

// CleanupOldRecords deletes archive rows older than retentionDays.
func (d *Database) CleanupOldRecords(ctx context.Context, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	if _, err := d.db.ExecContext(ctx, `DELETE FROM forwarded_items WHERE delivered_at < ?`, cutoff); err != nil {
		return apperrors.NewDatabaseError("cleanup", err)
	}
	return nil
}
