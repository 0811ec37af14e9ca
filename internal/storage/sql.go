package storage

import (
	"context"
	"errors"
	"fmt"

	"classwall/internal/observability"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// kvEntry is the single blob table backing the SQL KV variants.
type kvEntry struct {
	Key   string `gorm:"primaryKey;column:k"`
	Value string `gorm:"column:v"`
}

func (kvEntry) TableName() string { return "kv_entries" }

// SQL is a KV backend over a relational database holding one row per logical
// key. The schema stays a flat blob table on purpose: the substrate contract
// is get/set/remove, nothing relational leaks upward.
type SQL struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) a SQLite-backed KV at path. ":memory:" gives
// a throwaway database for tests.
func OpenSQLite(path string) (*SQL, error) {
	return openSQL(sqlite.Open(path))
}

// OpenPostgres opens a Postgres-backed KV with the given DSN.
func OpenPostgres(dsn string) (*SQL, error) {
	return openSQL(postgres.Open(dsn))
}

func openSQL(dialector gorm.Dialector) (*SQL, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("migrate kv table: %w", err)
	}
	return &SQL{db: db}, nil
}

func (s *SQL) Get(ctx context.Context, key string) (string, error) {
	defer observability.TrackKVOp("get")()
	var entry kvEntry
	err := s.db.WithContext(ctx).First(&entry, "k = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return entry.Value, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	defer observability.TrackKVOp("set")()
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "k"}},
			DoUpdates: clause.AssignmentColumns([]string{"v"}),
		}).
		Create(&kvEntry{Key: key, Value: value}).Error
}

func (s *SQL) Remove(ctx context.Context, key string) error {
	defer observability.TrackKVOp("remove")()
	return s.db.WithContext(ctx).Delete(&kvEntry{}, "k = ?", key).Error
}

func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
