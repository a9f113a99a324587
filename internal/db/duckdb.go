// Package db owns the DuckDB analytics store backing summary rollups and
// filter option lists.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

var (
	instance *sql.DB
	once     sync.Once
	initErr  error
)

// Config holds database configuration.
type Config struct {
	DataDir string
	DBName  string
}

// Get returns the singleton DuckDB connection, creating the database file
// and the district metrics schema on first use.
func Get(cfg Config) (*sql.DB, error) {
	once.Do(func() {
		duckdbDir := filepath.Join(cfg.DataDir, "duckdb")
		if err := os.MkdirAll(duckdbDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create duckdb directory: %w", err)
			return
		}

		dbPath := filepath.Join(duckdbDir, cfg.DBName+".duckdb")
		instance, initErr = sql.Open("duckdb", dbPath)
		if initErr != nil {
			return
		}

		// Parquet extension for bulk metric loads from the ETL exports.
		if _, err := instance.Exec("INSTALL parquet; LOAD parquet;"); err != nil {
			// Extension may already be installed, continue
		}

		initErr = ensureSchema(instance)
	})
	return instance, initErr
}

// Close closes the database connection.
func Close() error {
	if instance != nil {
		return instance.Close()
	}
	return nil
}

// ensureSchema creates the district metrics table consumed by summary
// rollups. One row per district, vendor, and fiscal year.
func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS district_metrics (
			leaid           VARCHAR NOT NULL,
			district_name   VARCHAR,
			state_abbrev    VARCHAR,
			sales_executive VARCHAR,
			plan_ids        VARCHAR,
			vendor          VARCHAR NOT NULL,
			fiscal_year     INTEGER NOT NULL,
			category        VARCHAR,
			revenue         DOUBLE DEFAULT 0,
			enrollment      BIGINT DEFAULT 0,
			lng             DOUBLE,
			lat             DOUBLE
		)`)
	if err != nil {
		return fmt.Errorf("failed to create district_metrics: %w", err)
	}
	return nil
}
