package database

import (
	"fmt"
	"log"

	"github.com/josemcv/tabsync/internal/config"
	"github.com/josemcv/tabsync/internal/domain/entity"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NotifyChannel is the LISTEN/NOTIFY channel carrying tab change events.
// The payload is the name of the table that changed.
const NotifyChannel = "tab_changes"

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Successfully connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.Tab{},
		&entity.TabItem{},
		&entity.SaleRecord{},
		&entity.Transaction{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SetupChangeFeed installs the pg_notify triggers feeding the change feed.
// Statement-level triggers on tabs and tab_items publish the table name on
// NotifyChannel after every insert, update or delete.
func SetupChangeFeed(db *gorm.DB) error {
	stmts := []string{
		fmt.Sprintf(`CREATE OR REPLACE FUNCTION notify_tab_change() RETURNS trigger AS $$
BEGIN
  PERFORM pg_notify('%s', TG_TABLE_NAME);
  RETURN NULL;
END;
$$ LANGUAGE plpgsql`, NotifyChannel),
		`DROP TRIGGER IF EXISTS tabs_notify_change ON tabs`,
		`CREATE TRIGGER tabs_notify_change
AFTER INSERT OR UPDATE OR DELETE ON tabs
FOR EACH STATEMENT EXECUTE FUNCTION notify_tab_change()`,
		`DROP TRIGGER IF EXISTS tab_items_notify_change ON tab_items`,
		`CREATE TRIGGER tab_items_notify_change
AFTER INSERT OR UPDATE OR DELETE ON tab_items
FOR EACH STATEMENT EXECUTE FUNCTION notify_tab_change()`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to install change feed: %w", err)
		}
	}
	return nil
}
