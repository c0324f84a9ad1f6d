package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookingcore/internal/core/domain"
	"bookingcore/internal/port"
)

// sqlStore implements port.EntityStore over database/sql. The MySQL and
// SQLite adapters share it and differ only in the row-lock clause appended to
// reads and in schema bootstrap.
type sqlStore struct {
	db         *sql.DB
	lockSuffix string // " FOR UPDATE" on MySQL, empty on SQLite
}

func (s *sqlStore) WithinTx(ctx context.Context, fn func(tx port.EntityTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqlTx{tx: tx, lockSuffix: s.lockSuffix}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type sqlTx struct {
	tx         *sql.Tx
	lockSuffix string
}

func (t *sqlTx) FindMember(ctx context.Context, id int64) (*domain.Member, error) {
	var m domain.Member
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, name, surname, booking_count, date_joined
		FROM members WHERE id = ?`+t.lockSuffix, id,
	).Scan(&m.ID, &m.Name, &m.Surname, &m.BookingCount, &m.DateJoined)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query member: %w", err)
	}
	return &m, nil
}

func (t *sqlTx) FindItem(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	var it domain.InventoryItem
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, title, description, remaining_count, expiration_date
		FROM inventory_items WHERE id = ?`+t.lockSuffix, id,
	).Scan(&it.ID, &it.Title, &it.Description, &it.RemainingCount, &it.ExpirationDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory item: %w", err)
	}
	return &it, nil
}

func (t *sqlTx) FindBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, member_id, inventory_item_id, booking_datetime, is_cancelled
		FROM bookings WHERE id = ?`+t.lockSuffix, id,
	).Scan(&b.ID, &b.MemberID, &b.InventoryItemID, &b.BookingDateTime, &b.IsCancelled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query booking: %w", err)
	}
	return &b, nil
}

func (t *sqlTx) CreateBooking(ctx context.Context, b *domain.Booking) (int64, error) {
	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO bookings (member_id, inventory_item_id, booking_datetime, is_cancelled)
		VALUES (?, ?, ?, ?)`,
		b.MemberID, b.InventoryItemID, b.BookingDateTime, b.IsCancelled,
	)
	if err != nil {
		return 0, fmt.Errorf("insert booking: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("booking id: %w", err)
	}
	return id, nil
}

func (t *sqlTx) UpdateMember(ctx context.Context, m *domain.Member) error {
	return t.exec(ctx, "update member",
		`UPDATE members SET booking_count = ? WHERE id = ?`, m.BookingCount, m.ID)
}

func (t *sqlTx) UpdateItem(ctx context.Context, it *domain.InventoryItem) error {
	return t.exec(ctx, "update inventory item",
		`UPDATE inventory_items SET remaining_count = ? WHERE id = ?`, it.RemainingCount, it.ID)
}

func (t *sqlTx) UpdateBooking(ctx context.Context, b *domain.Booking) error {
	return t.exec(ctx, "update booking",
		`UPDATE bookings SET is_cancelled = ? WHERE id = ?`, b.IsCancelled, b.ID)
}

func (t *sqlTx) exec(ctx context.Context, op, query string, args ...any) error {
	result, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: no row matched", op)
	}
	return nil
}

func (t *sqlTx) CreateMember(ctx context.Context, m *domain.Member) (int64, error) {
	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO members (name, surname, booking_count, date_joined)
		VALUES (?, ?, ?, ?)`,
		m.Name, m.Surname, m.BookingCount, m.DateJoined,
	)
	if err != nil {
		return 0, fmt.Errorf("insert member: %w", err)
	}
	return result.LastInsertId()
}

func (t *sqlTx) CreateItem(ctx context.Context, it *domain.InventoryItem) (int64, error) {
	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO inventory_items (title, description, remaining_count, expiration_date)
		VALUES (?, ?, ?, ?)`,
		it.Title, it.Description, it.RemainingCount, it.ExpirationDate,
	)
	if err != nil {
		return 0, fmt.Errorf("insert inventory item: %w", err)
	}
	return result.LastInsertId()
}

func (t *sqlTx) CountMembers(ctx context.Context) (int, error) {
	return t.count(ctx, `SELECT COUNT(*) FROM members`)
}

func (t *sqlTx) CountItems(ctx context.Context) (int, error) {
	return t.count(ctx, `SELECT COUNT(*) FROM inventory_items`)
}

func (t *sqlTx) count(ctx context.Context, query string) (int, error) {
	var n int
	if err := t.tx.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func (t *sqlTx) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, title, description, remaining_count, expiration_date
		FROM inventory_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		var it domain.InventoryItem
		if err := rows.Scan(&it.ID, &it.Title, &it.Description, &it.RemainingCount, &it.ExpirationDate); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	return items, nil
}
