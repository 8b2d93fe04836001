package report

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/a11yscan/internal/fsutil"
	"github.com/nao1215/a11yscan/internal/model"
)

// Exporter writes renderings to uniquely named files in one directory.
// Each export creates a new file; existing files are never touched.
type Exporter struct {
	dir    string
	newID  func() string
	now    func() time.Time
	logger *slog.Logger
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithIDGenerator replaces the file name generator.
func WithIDGenerator(newID func() string) ExporterOption {
	return func(e *Exporter) {
		if newID != nil {
			e.newID = newID
		}
	}
}

// WithExportClock replaces the clock used for ExportRecord.CreatedAt.
func WithExportClock(now func() time.Time) ExporterOption {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithExportLogger sets the logger.
func WithExportLogger(logger *slog.Logger) ExporterOption {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExporter creates an Exporter writing into dir. The directory is
// created on first export.
func NewExporter(dir string, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		dir:    dir,
		newID:  uuid.NewString,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dir returns the export directory.
func (e *Exporter) Dir() string {
	return e.dir
}

// Export renders violations in format f and writes the rendering to
// <dir>/<id><ext>.
//
// When the file cannot be written the rendering is still returned together
// with an *model.ExportError.
func (e *Exporter) Export(f Format, violations []model.Violation) (*Rendered, *model.ExportRecord, error) {
	rendered, err := Render(f, violations)
	if err != nil {
		return nil, nil, err
	}

	id := e.newID()
	path := filepath.Join(e.dir, id+f.Extension())
	if err := fsutil.WriteNew(path, rendered.Data); err != nil {
		e.logger.Warn("failed to write report", "path", path, "error", err)
		return rendered, nil, &model.ExportError{Path: path, Err: err}
	}

	e.logger.Info("report written",
		"path", path,
		"format", f.String(),
		"violations", rendered.Summary.TotalViolations,
	)

	return rendered, &model.ExportRecord{
		ID:              id,
		Path:            path,
		Format:          f.String(),
		TotalViolations: rendered.Summary.TotalViolations,
		CreatedAt:       e.now().UTC(),
	}, nil
}
