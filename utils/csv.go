package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cross_bot/models"
)

// summaryColumns fixes the CSV column order for rotation outcomes.
var summaryColumns = []models.Outcome{
	models.OutcomeRotated,
	models.OutcomeLossCut,
	models.OutcomeFlattened,
	models.OutcomeNoAction,
	models.OutcomeFailed,
}

// AppendSummaryToCSV appends an outcome-count summary row to a CSV file.
func AppendSummaryToCSV(filename string, timestamp time.Time, counts map[string]int) error {
	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %v", dir, err)
	}

	// Open the file in append mode, create it if it doesn't exist
	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to get file info: %v", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if stat.Size() == 0 {
		// Write the header if the file is empty
		header := []string{"Timestamp"}
		for _, outcome := range summaryColumns {
			header = append(header, outcome.String())
		}
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("failed to write CSV header: %v", err)
		}
	}

	record := []string{timestamp.Format(time.RFC3339)}
	for _, outcome := range summaryColumns {
		record = append(record, strconv.Itoa(counts[outcome.String()]))
	}
	if err := writer.Write(record); err != nil {
		return fmt.Errorf("failed to write CSV record: %v", err)
	}

	return nil
}
