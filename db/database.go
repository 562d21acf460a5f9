package db

import (
	"database/sql"
	"fmt"

	"songshelf/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// ConnectDB establishes a connection pool to the database and verifies it
// with a ping. The handle is returned to the caller rather than kept in a
// package-level variable so every consumer receives it explicitly.
func ConnectDB(cfg *config.Config) (*sql.DB, error) {
	// clientFoundRows makes UPDATE report matched rows instead of changed
	// rows, which the repository relies on to distinguish a missing row from
	// a no-op update.
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&clientFoundRows=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	database, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return database, nil
}

// InitDB initializes the database schema, creating tables if they don't exist.
func InitDB(database *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS songs (
		id INT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		artist VARCHAR(255),
		album VARCHAR(255),
		duration INT NOT NULL DEFAULT 0,
		filename VARCHAR(767),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := database.Exec(query); err != nil {
		return fmt.Errorf("failed to create songs table: %w", err)
	}

	return nil
}
