// Package seed imports initial members and inventory from CSV files, once,
// before the first booking request. The core never depends on it.
package seed

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"bookingcore/internal/core/domain"
	"bookingcore/internal/port"
)

const dateLayout = "2006-01-02"

// members.csv columns: name, surname, date_joined (2006-01-02)
// inventory.csv columns: title, description, remaining_count, expiration_date
type Seeder struct {
	store  port.EntityStore
	logger *zap.Logger
}

func New(store port.EntityStore, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{store: store, logger: logger}
}

// Run imports dir/members.csv and dir/inventory.csv. It is a no-op when the
// store already holds members or items. A missing file is logged and skipped;
// a malformed row aborts that file's import.
func (s *Seeder) Run(ctx context.Context, dir string) error {
	var hasData bool
	err := s.store.WithinTx(ctx, func(tx port.EntityTx) error {
		members, err := tx.CountMembers(ctx)
		if err != nil {
			return err
		}
		items, err := tx.CountItems(ctx)
		if err != nil {
			return err
		}
		hasData = members > 0 || items > 0
		return nil
	})
	if err != nil {
		return fmt.Errorf("check existing data: %w", err)
	}
	if hasData {
		s.logger.Info("store already contains data, skipping CSV import")
		return nil
	}

	s.logger.Info("starting CSV data import", zap.String("dir", dir))
	if err := s.importMembers(ctx, filepath.Join(dir, "members.csv")); err != nil {
		return err
	}
	if err := s.importItems(ctx, filepath.Join(dir, "inventory.csv")); err != nil {
		return err
	}
	s.logger.Info("CSV data import complete")
	return nil
}

func (s *Seeder) importMembers(ctx context.Context, path string) error {
	rows, ok, err := readCSV(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if !ok {
		s.logger.Warn("members CSV not found, skipping", zap.String("path", path))
		return nil
	}

	members := make([]domain.Member, 0, len(rows))
	for i, row := range rows {
		if len(row) < 3 {
			return fmt.Errorf("%s row %d: expected 3 columns, got %d", path, i+2, len(row))
		}
		joined, err := time.Parse(dateLayout, row[2])
		if err != nil {
			return fmt.Errorf("%s row %d: date_joined: %w", path, i+2, err)
		}
		members = append(members, domain.Member{
			Name:       row[0],
			Surname:    row[1],
			DateJoined: joined,
		})
	}

	err = s.store.WithinTx(ctx, func(tx port.EntityTx) error {
		for i := range members {
			if _, err := tx.CreateMember(ctx, &members[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import members: %w", err)
	}
	s.logger.Info("imported members", zap.Int("count", len(members)))
	return nil
}

func (s *Seeder) importItems(ctx context.Context, path string) error {
	rows, ok, err := readCSV(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if !ok {
		s.logger.Warn("inventory CSV not found, skipping", zap.String("path", path))
		return nil
	}

	items := make([]domain.InventoryItem, 0, len(rows))
	for i, row := range rows {
		if len(row) < 4 {
			return fmt.Errorf("%s row %d: expected 4 columns, got %d", path, i+2, len(row))
		}
		remaining, err := strconv.Atoi(row[2])
		if err != nil {
			return fmt.Errorf("%s row %d: remaining_count: %w", path, i+2, err)
		}
		expires, err := time.Parse(dateLayout, row[3])
		if err != nil {
			return fmt.Errorf("%s row %d: expiration_date: %w", path, i+2, err)
		}
		items = append(items, domain.InventoryItem{
			Title:          row[0],
			Description:    row[1],
			RemainingCount: remaining,
			ExpirationDate: expires,
		})
	}

	err = s.store.WithinTx(ctx, func(tx port.EntityTx) error {
		for i := range items {
			if _, err := tx.CreateItem(ctx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import inventory items: %w", err)
	}
	s.logger.Info("imported inventory items", zap.Int("count", len(items)))
	return nil
}

// readCSV returns the data rows of a CSV file, skipping the header. ok is
// false when the file does not exist.
func readCSV(path string) (rows [][]string, ok bool, err error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, false, err
	}
	if len(all) <= 1 {
		return nil, true, nil
	}
	return all[1:], true, nil
}
