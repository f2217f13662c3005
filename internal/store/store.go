package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"leadsboard/server/internal/models"
)

// ErrLeadNotFound is returned when a drop targets an Id that is not in the
// leads worksheet.
var ErrLeadNotFound = errors.New("lead not found")

// Store persists the two worksheets ("leads", "users"). Reads return full
// snapshots; writes replace the whole worksheet, mirroring the spreadsheet
// connector the dashboard originally talked to.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func Open(path string, logger *logrus.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if err := db.AutoMigrate(&models.RawLead{}, &models.User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate worksheets: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// ReadLeads returns the full leads worksheet.
func (s *Store) ReadLeads() ([]models.RawLead, error) {
	var rows []models.RawLead
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read leads worksheet: %w", err)
	}
	return rows, nil
}

// WriteLeads replaces the leads worksheet with the given rows.
func (s *Store) WriteLeads(rows []models.RawLead) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM leads`).Error; err != nil {
			return fmt.Errorf("failed to clear leads worksheet: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("failed to write leads worksheet: %w", err)
		}
		return nil
	})
}

// SaveLeads merges rows into the worksheet: existing rows come first, the
// new rows are appended, and duplicates by Id are resolved keeping the
// last occurrence. The whole table is written back.
func (s *Store) SaveLeads(rows []models.RawLead) error {
	existing, err := s.ReadLeads()
	if err != nil {
		return err
	}

	combined := append(existing, rows...)
	merged := dedupeByID(combined)

	if err := s.WriteLeads(merged); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"saved": len(rows),
		"total": len(merged),
	}).Info("Saved leads worksheet")
	return nil
}

// DropLead removes every row with the given Id. Dropping an absent Id is
// an error and leaves the worksheet untouched.
func (s *Store) DropLead(id int64) error {
	existing, err := s.ReadLeads()
	if err != nil {
		return err
	}

	remaining := make([]models.RawLead, 0, len(existing))
	removed := 0
	for _, row := range existing {
		if rowID, ok := leadID(row); ok && rowID == strconv.FormatInt(id, 10) {
			removed++
			continue
		}
		remaining = append(remaining, row)
	}
	if removed == 0 {
		return ErrLeadNotFound
	}

	if err := s.WriteLeads(remaining); err != nil {
		return err
	}
	s.logger.WithField("id", id).Info("Dropped lead")
	return nil
}

// ReadUsers returns the full users worksheet.
func (s *Store) ReadUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to read users worksheet: %w", err)
	}
	return users, nil
}

// WriteUsers replaces the users worksheet.
func (s *Store) WriteUsers(users []models.User) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM users`).Error; err != nil {
			return fmt.Errorf("failed to clear users worksheet: %w", err)
		}
		if len(users) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(users, 100).Error; err != nil {
			return fmt.Errorf("failed to write users worksheet: %w", err)
		}
		return nil
	})
}

func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// dedupeByID keeps, for each Id, only the last occurrence, preserving row
// order otherwise. Rows without a usable Id are kept as-is.
func dedupeByID(rows []models.RawLead) []models.RawLead {
	lastIndex := make(map[string]int)
	for i, row := range rows {
		if id, ok := leadID(row); ok {
			lastIndex[id] = i
		}
	}

	out := make([]models.RawLead, 0, len(rows))
	for i, row := range rows {
		if id, ok := leadID(row); ok && lastIndex[id] != i {
			continue
		}
		out = append(out, row)
	}
	return out
}

// leadID canonicalizes a raw Id cell so "17" and "17.0" merge.
func leadID(row models.RawLead) (string, bool) {
	if row.ID == nil {
		return "", false
	}
	s := strings.TrimSpace(*row.ID)
	if s == "" {
		return "", false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.FormatInt(int64(f), 10), true
	}
	return s, true
}
