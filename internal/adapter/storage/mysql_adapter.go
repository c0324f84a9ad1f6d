package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// MySQLAdapter is the production entity store. Reads inside a unit of work
// take row locks (SELECT ... FOR UPDATE), so two requests touching the same
// member, item or booking serialize at the database.
type MySQLAdapter struct {
	sqlStore
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{sqlStore{db: db, lockSuffix: " FOR UPDATE"}}
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS members (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		surname VARCHAR(255) NOT NULL,
		booking_count INT NOT NULL DEFAULT 0,
		date_joined DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		remaining_count INT NOT NULL DEFAULT 0,
		expiration_date DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		member_id BIGINT NOT NULL,
		inventory_item_id BIGINT NOT NULL,
		booking_datetime DATETIME NOT NULL,
		is_cancelled BOOLEAN NOT NULL DEFAULT FALSE,
		KEY idx_bookings_member (member_id),
		KEY idx_bookings_item (inventory_item_id)
	)`,
}

func (m *MySQLAdapter) InitSchema(ctx context.Context) error {
	for _, stmt := range mysqlSchema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
