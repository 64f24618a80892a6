package infra

import (
	"fmt"

	"registras/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches that GORM
// cannot express (check constraints, session defaults).
func NewDatabase(dsn string, statementTimeoutMS int) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	// Bound every statement so a stuck row lock surfaces as an error
	// instead of hanging the request.
	if statementTimeoutMS > 0 {
		if err := db.Exec(fmt.Sprintf(
			"ALTER DATABASE %s SET statement_timeout = %d",
			currentDatabase(db), statementTimeoutMS)).Error; err != nil {
			return nil, fmt.Errorf("statement timeout: %w", err)
		}
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

func currentDatabase(db *gorm.DB) string {
	var name string
	db.Raw("SELECT current_database()").Scan(&name)
	return name
}

// RunMigrations creates or updates the schema. Shared with integration tests
// so their containers converge to the same DDL as production.
func RunMigrations(db *gorm.DB) error {
	// AutoMigrate needs gen_random_uuid for the uuid defaults.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Position{},
		&model.PriceLine{},
		&model.AuditRecord{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement uses existence guards so re-running is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Enum guards belong in the database too, not only in the validator.
		{"price_lines status check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_price_lines_status') THEN
    ALTER TABLE price_lines ADD CONSTRAINT chk_price_lines_status
      CHECK (status IN ('active', 'historical'));
  END IF;
END $$`},
		{"price_lines unit check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_price_lines_unit') THEN
    ALTER TABLE price_lines ADD CONSTRAINT chk_price_lines_unit
      CHECK (unit IN ('unit', 'm2', 'kg', 'hour'));
  END IF;
END $$`},
		{"price_lines amount check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_price_lines_amount') THEN
    ALTER TABLE price_lines ADD CONSTRAINT chk_price_lines_amount
      CHECK (amount >= 0);
  END IF;
END $$`},
		// Partial index backing the activation scan: only active rows are
		// ever read FOR UPDATE.
		{"active lines partial index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_price_lines_active') THEN
    CREATE INDEX idx_price_lines_active
        ON price_lines (position_id, unit)
        WHERE status = 'active';
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
