package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	BinanceAPIKey    string
	BinanceAPISecret string
	Port             string
	StopLimitPercent float64 // percentage above/below current price for the protective stop
	QtyFactor        float64 // free balance is divided by this when sizing orders
	FeeRate          float64 // exchange trading fee deducted from order quantities
	MaxRetries       int     // max order placement retries before giving up
	RecvWindowMillis int64   // time (ms) the exchange waits before rejecting a stale request
	DBPath           string
	LogFile          string
}

// LoadConfig loads variables from .env and returns a Config struct
func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found. Relying on system environment variables.")
	}

	apiKey := os.Getenv("BINANCE_API_KEY")
	apiSecret := os.Getenv("BINANCE_API_SECRET")
	if apiKey == "" || apiSecret == "" {
		log.Fatal("BINANCE_API_KEY or BINANCE_API_SECRET not set")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/rotations.db"
	}

	return &Config{
		BinanceAPIKey:    apiKey,
		BinanceAPISecret: apiSecret,
		Port:             port,
		StopLimitPercent: envFloat("STOP_LIMIT_PERCENT", 0.50),
		QtyFactor:        envFloat("QTY_FACTOR", 4),
		FeeRate:          envFloat("FEE_RATE", 0.001),
		MaxRetries:       envInt("MAX_RETRIES", 10),
		RecvWindowMillis: int64(envInt("RECV_WINDOW_MS", 10000)),
		DBPath:           dbPath,
		LogFile:          os.Getenv("LOG_FILE"),
	}
}

func envFloat(key string, fallback float64) float64 {
	if raw := os.Getenv(key); raw != "" {
		if val, err := strconv.ParseFloat(raw, 64); err == nil {
			return val
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil {
			return val
		}
	}
	return fallback
}
