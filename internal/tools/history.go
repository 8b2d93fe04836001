package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/a11yscan/internal/database"
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/pipeline"
)

// ScanRecorder stores scan history.
type ScanRecorder interface {
	RecordScan(ctx context.Context, record *database.ScanRecord) (int64, error)
}

// ScanHistoryObserver returns a pipeline observer that records every
// finished target. Recording failures are logged and otherwise ignored.
func ScanHistoryObserver(recorder ScanRecorder, logger *slog.Logger) pipeline.Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, cfg *model.ScanConfig, result *model.ScanResult, err error) {
		record := database.NewScanRecord(cfg, result, err, time.Now().UTC())
		if _, recErr := recorder.RecordScan(context.WithoutCancel(ctx), record); recErr != nil {
			logger.Warn("failed to record scan history", "scan_id", cfg.ScanID, "error", recErr)
		}
	}
}
