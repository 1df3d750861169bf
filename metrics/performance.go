package metrics

import (
	"context"
	"time"

	db2 "cross_bot/db"
	"cross_bot/logger"
	"cross_bot/utils"
)

// MonitorPerformance summarizes rotation outcomes from the journal every hour
// and appends the counts to a CSV file.
func MonitorPerformance(csvPath string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			counts, err := db2.SQLiteDB.GetOutcomeCounts()
			if err != nil {
				logger.Errorf("Failed to summarize rotation outcomes: %v", err)
				continue
			}

			if err := utils.AppendSummaryToCSV(csvPath, time.Now(), counts); err != nil {
				logger.Errorf("Failed to append metrics to CSV: %v", err)
			}

			logger.Infof("Rotation Summary (Hourly):")
			logger.Infof("Rotated: %d, Loss-cut: %d, Flattened: %d, No-action: %d, Failed: %d",
				counts["rotated"], counts["loss-cut"], counts["flattened"], counts["no-action"], counts["failed"])

		case <-ctx.Done():
			return
		}
	}
}
