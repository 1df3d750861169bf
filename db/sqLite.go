package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"cross_bot/models"

	_ "github.com/mattn/go-sqlite3"
	"log"
)

type SQLite struct {
	DB *sql.DB
}

var SQLiteDB SQLite

// InitDB initializes the SQLite journal database
func InitDB(dbPath string) error {
	log.Printf("Initializing database at %s", dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		log.Printf("Error creating database directory: %v", err)
		return err
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		log.Printf("Error opening database: %v", err)
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS signals (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        symbol TEXT NOT NULL,
        interval TEXT,
        direction TEXT NOT NULL,
        timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
    );`
	_, err = db.Exec(query)
	if err != nil {
		log.Printf("Error creating signals table: %v", err)
		return err
	}

	query = `
    CREATE TABLE IF NOT EXISTS rotations (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        symbol TEXT NOT NULL,
        direction TEXT NOT NULL,
        outcome TEXT NOT NULL,
        market_side TEXT,
        market_qty REAL,
        limit_price REAL,
        stop_price REAL,
        attempts INTEGER,
        detail TEXT,
        timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
    );`
	_, err = db.Exec(query)
	if err != nil {
		log.Printf("Error creating rotations table: %v", err)
		return err
	}

	log.Println("Database initialized successfully.")
	SQLiteDB.DB = db
	return nil
}

// LogSignal journals a received crossover signal
func (s *SQLite) LogSignal(symbol, interval, direction string) error {
	_, err := s.DB.Exec(`
        INSERT INTO signals (symbol, interval, direction)
        VALUES (?, ?, ?)
    `, symbol, interval, direction)
	return err
}

// LogRotation journals the outcome of handling one signal
func (s *SQLite) LogRotation(record models.RotationRecord) error {
	_, err := s.DB.Exec(`
        INSERT INTO rotations (symbol, direction, outcome, market_side, market_qty, limit_price, stop_price, attempts, detail)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, record.Symbol, record.Direction, record.Outcome, record.MarketSide,
		record.MarketQty, record.LimitPrice, record.StopPrice, record.Attempts, record.Detail)
	return err
}

// GetOutcomeCounts returns how many rotations ended in each outcome
func (s *SQLite) GetOutcomeCounts() (map[string]int, error) {
	rows, err := s.DB.Query(`SELECT outcome, COUNT(*) FROM rotations GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("error querying rotation outcomes: %v", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("error scanning rotation outcomes: %v", err)
		}
		counts[outcome] = count
	}
	return counts, nil
}

// GetRecentRotations fetches the most recent rotation records
func (s *SQLite) GetRecentRotations(limit int) ([]models.RotationRecord, error) {
	rows, err := s.DB.Query(`
        SELECT id, symbol, direction, outcome, market_side, market_qty, limit_price, stop_price, attempts, detail, timestamp
        FROM rotations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.RotationRecord
	for rows.Next() {
		var record models.RotationRecord
		err := rows.Scan(&record.ID, &record.Symbol, &record.Direction, &record.Outcome,
			&record.MarketSide, &record.MarketQty, &record.LimitPrice, &record.StopPrice,
			&record.Attempts, &record.Detail, &record.Timestamp)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
