package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/report"
)

// SingleScanner scans one URL or HTML target.
type SingleScanner interface {
	Scan(ctx context.Context, cfg *model.ScanConfig) (*model.ScanResult, error)
}

// BatchScanner scans several URL targets with one browser.
type BatchScanner interface {
	Run(ctx context.Context, configs []*model.ScanConfig) ([]model.BatchResult, error)
}

// ReportExporter renders and persists violation summaries.
type ReportExporter interface {
	Export(f report.Format, violations []model.Violation) (*report.Rendered, *model.ExportRecord, error)
}

// ExportRecorder stores export history.
type ExportRecorder interface {
	RecordExport(ctx context.Context, record *model.ExportRecord) error
}

// Service implements the tool handlers.
type Service struct {
	scanner  SingleScanner
	batch    BatchScanner
	exporter ReportExporter
	exports  ExportRecorder
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithExportRecorder records every written report.
func WithExportRecorder(recorder ExportRecorder) Option {
	return func(s *Service) {
		s.exports = recorder
	}
}

// NewService creates a Service.
func NewService(scanner SingleScanner, batch BatchScanner, exporter ReportExporter, opts ...Option) *Service {
	s := &Service{
		scanner:  scanner,
		batch:    batch,
		exporter: exporter,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServerTools returns the five tools with their handlers.
func (s *Service) ServerTools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: ScanURLTool(), Handler: s.ScanURL},
		{Tool: ScanHTMLTool(), Handler: s.ScanHTML},
		{Tool: ScanBatchTool(), Handler: s.ScanBatch},
		{Tool: SummarizeViolationsTool(), Handler: s.SummarizeViolations},
		{Tool: WriteViolationsReportTool(), Handler: s.WriteViolationsReport},
	}
}

// NewServer creates an MCP server with every tool registered.
func NewServer(name, version string, svc *Service) *server.MCPServer {
	srv := server.NewMCPServer(name, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	srv.AddTools(svc.ServerTools()...)
	return srv
}

type scanURLParams struct {
	URL string `json:"url"`
	model.ScanOptions
}

type scanHTMLParams struct {
	HTML string `json:"html"`
	model.ScanOptions
}

type scanBatchParams struct {
	URLs []string `json:"urls"`
	model.ScanOptions
}

type summarizeParams struct {
	Violations []model.Violation `json:"violations"`
	Format     string            `json:"format"`
}

// ScanURL handles scan-url.
func (s *Service) ScanURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params scanURLParams
	if err := bindArguments(request, &params); err != nil {
		return s.errorResult("Error scanning URL", err), nil
	}

	cfg, err := model.NewURLScanConfig(params.URL, params.ScanOptions)
	if err != nil {
		return s.errorResult("Error scanning URL", err), nil
	}

	result, err := s.scanner.Scan(ctx, cfg)
	if err != nil {
		return s.errorResult("Error scanning URL", err), nil
	}
	return jsonResult(result)
}

// ScanHTML handles scan-html.
func (s *Service) ScanHTML(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params scanHTMLParams
	if err := bindArguments(request, &params); err != nil {
		return s.errorResult("Error scanning HTML content", err), nil
	}

	cfg, err := model.NewHTMLScanConfig(params.HTML, params.ScanOptions)
	if err != nil {
		return s.errorResult("Error scanning HTML content", err), nil
	}

	result, err := s.scanner.Scan(ctx, cfg)
	if err != nil {
		return s.errorResult("Error scanning HTML content", err), nil
	}
	return jsonResult(result)
}

// ScanBatch handles scan-batch. Per-target failures are part of the
// successful response; only invalid input and a failed browser launch
// produce an error result.
func (s *Service) ScanBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params scanBatchParams
	if err := bindArguments(request, &params); err != nil {
		return s.errorResult("Error during batch scan", err), nil
	}

	configs, err := model.NewBatchScanConfigs(params.URLs, params.ScanOptions)
	if err != nil {
		return s.errorResult("Error during batch scan", err), nil
	}

	results, err := s.batch.Run(ctx, configs)
	if err != nil {
		return s.errorResult("Error during batch scan", err), nil
	}
	return jsonResult(results)
}

// SummarizeViolations handles summarize-violations.
func (s *Service) SummarizeViolations(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params, format, err := parseSummarizeParams(request)
	if err != nil {
		return s.errorResult("Error summarizing violations", err), nil
	}

	rendered, err := report.Render(format, params.Violations)
	if err != nil {
		return s.errorResult("Error summarizing violations", err), nil
	}
	return mcp.NewToolResultText(string(rendered.Data)), nil
}

// WriteViolationsReport handles write-violations-report. When the file cannot
// be written the rendered summary is still returned, with IsError set.
func (s *Service) WriteViolationsReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params, format, err := parseSummarizeParams(request)
	if err != nil {
		return s.errorResult("Error writing violations report", err), nil
	}

	rendered, record, err := s.exporter.Export(format, params.Violations)
	if err != nil {
		if rendered == nil {
			return s.errorResult("Error writing violations report", err), nil
		}
		s.logger.Error("report not persisted", "error", err)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(string(rendered.Data)),
				mcp.NewTextContent(fmt.Sprintf("Error writing violations report: %v", err)),
			},
			IsError: true,
		}, nil
	}

	if s.exports != nil {
		if err := s.exports.RecordExport(ctx, record); err != nil {
			s.logger.Warn("failed to record export history", "path", record.Path, "error", err)
		}
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(string(rendered.Data)),
			mcp.NewTextContent("Report written to " + record.Path),
		},
	}, nil
}

func parseSummarizeParams(request mcp.CallToolRequest) (*summarizeParams, report.Format, error) {
	var params summarizeParams
	if err := bindArguments(request, &params); err != nil {
		return nil, report.FormatDefault, err
	}
	if params.Violations == nil {
		return nil, report.FormatDefault, &model.ValidationError{Field: "violations", Reason: "is required"}
	}
	if err := model.ValidateViolations(params.Violations); err != nil {
		return nil, report.FormatDefault, err
	}
	format, err := report.ParseFormat(params.Format)
	if err != nil {
		return nil, report.FormatDefault, err
	}
	return &params, format, nil
}

// bindArguments decodes the tool arguments into target. Decoding failures
// are validation errors.
func bindArguments(request mcp.CallToolRequest, target any) error {
	data, err := json.Marshal(request.Params.Arguments)
	if err != nil {
		return &model.ValidationError{Field: "arguments", Reason: err.Error()}
	}
	if err := json.Unmarshal(data, target); err != nil {
		return &model.ValidationError{Field: argumentField(err), Reason: err.Error()}
	}
	return nil
}

// argumentField names the parameter a decoding error refers to.
func argumentField(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeErr.Field
	}
	return "arguments"
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Service) errorResult(prefix string, err error) *mcp.CallToolResult {
	s.logger.Warn(prefix, "error", err)
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", prefix, err))
}
