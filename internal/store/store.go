// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package store persists profiles, vendors, SBOM analyses, assessments and
// contact submissions with GORM. All user data is scoped by owner id.
package store

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bonial-oss/vendor-risk/internal/types"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique constraint would be violated.
	ErrConflict = errors.New("record already exists")
	// ErrCompleted is returned when modifying a completed assessment.
	ErrCompleted = errors.New("assessment already completed")
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options configures the database connection.
type Options struct {
	Driver string
	DSN    string
	Debug  bool
}

// Open connects to the configured database. SQLite is limited to a single
// connection so that ":memory:" databases are shared by all callers.
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverSQLite, "":
		dialector = sqlite.Open(opts.DSN)
	case DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q (expected %s or %s)", opts.Driver, DriverSQLite, DriverPostgres)
	}

	level := logger.Silent
	if opts.Debug {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", dialector.Name(), err)
	}

	if opts.Driver != DriverPostgres {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("accessing sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Store groups the per-entity stores over one database.
type Store struct {
	db *gorm.DB

	Profiles    *ProfileStore
	Vendors     *VendorStore
	Analyses    *AnalysisStore
	Assessments *AssessmentStore
	Contacts    *ContactStore
}

// New creates a Store over db.
func New(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Profiles:    NewProfileStore(db),
		Vendors:     NewVendorStore(db),
		Analyses:    NewAnalysisStore(db),
		Assessments: NewAssessmentStore(db),
		Contacts:    NewContactStore(db),
	}
}

// AutoMigrate creates or updates every table.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&types.Profile{},
		&types.Vendor{},
		&types.SBOMAnalysis{},
		&types.Assessment{},
		&types.ContactSubmission{},
	)
}

// Ping checks database connectivity.
func (s *Store) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// conflict maps unique constraint violations, translated by the dialect,
// to ErrConflict.
func conflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}
