// Package database initializes the MySQL connection backing the message store.
package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/go-sql-driver/mysql"

	"groupchat/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_messages (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	content TEXT NULL,
	sender VARCHAR(255) NOT NULL,
	type VARCHAR(16) NOT NULL,
	timestamp DATETIME(6) NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`

// Init opens the database connection, verifies it and ensures the
// chat_messages table exists.
func Init(cfg config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
	)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 接続テスト
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	log.Println("✅ Database connection established")
	return db, nil
}
