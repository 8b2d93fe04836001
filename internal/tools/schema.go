package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/report"
)

// Tool names.
const (
	ToolScanURL               = "scan-url"
	ToolScanHTML              = "scan-html"
	ToolScanBatch             = "scan-batch"
	ToolSummarizeViolations   = "summarize-violations"
	ToolWriteViolationsReport = "write-violations-report"
)

func ruleTagNames() []string {
	names := make([]string, len(model.KnownRuleTags))
	for i, tag := range model.KnownRuleTags {
		names[i] = string(tag)
	}
	return names
}

var impactNames = []string{"minor", "moderate", "serious", "critical"}

// scanOptionSchema returns the options shared by the scan tools.
func scanOptionSchema(defaultWaitMs int) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("waitForPageLoad",
			mcp.Description("Time in milliseconds to wait after the page has loaded before scanning"),
			mcp.DefaultNumber(float64(defaultWaitMs)),
		),
		mcp.WithObject("viewport",
			mcp.Description("Browser viewport dimensions"),
			mcp.Properties(map[string]any{
				"width":  map[string]any{"type": "integer", "minimum": 1, "default": model.DefaultViewportWidth},
				"height": map[string]any{"type": "integer", "minimum": 1, "default": model.DefaultViewportHeight},
			}),
		),
		mcp.WithObject("axeOptions",
			mcp.Description("Configuration options for axe-core"),
			mcp.Properties(map[string]any{
				"runOnly": map[string]any{
					"type":        "string",
					"enum":        ruleTagNames(),
					"description": "Standard to test against",
				},
				"rules": map[string]any{
					"type":        "object",
					"description": "Enable or disable specific rules",
					"additionalProperties": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"enabled": map[string]any{"type": "boolean"},
						},
						"required": []string{"enabled"},
					},
				},
			}),
		),
		mcp.WithBoolean("includeHtml",
			mcp.Description("Include HTML snippets in the violation reports"),
			mcp.DefaultBool(false),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of violations to return"),
			mcp.DefaultNumber(model.DefaultMaxResults),
		),
	}
}

// violationSchema describes one element of the violations parameter.
var violationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":          map[string]any{"type": "string"},
		"impact":      map[string]any{"type": "string", "enum": impactNames},
		"description": map[string]any{"type": "string"},
		"helpUrl":     map[string]any{"type": "string"},
		"nodes": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"impact":         map[string]any{"type": "string", "enum": impactNames},
					"target":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"failureSummary": map[string]any{"type": "string"},
					"html":           map[string]any{"type": "string"},
				},
			},
		},
	},
	"required": []string{"id", "impact", "description"},
}

func summaryOptionSchema() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithArray("violations",
			mcp.Required(),
			mcp.Description("Array of accessibility violations from axe results"),
			mcp.Items(violationSchema),
		),
		mcp.WithString("format",
			mcp.Description("Output format for the summary"),
			mcp.Enum(report.FormatNames()...),
			mcp.DefaultString(report.FormatDefault.String()),
		),
	}
}

// ScanURLTool describes scan-url.
func ScanURLTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Scans a URL for accessibility violations using a headless browser and axe-core."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute http or https URL to scan"),
		),
	}
	return mcp.NewTool(ToolScanURL, append(opts, scanOptionSchema(model.DefaultURLWaitMs)...)...)
}

// ScanHTMLTool describes scan-html.
func ScanHTMLTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Scans raw HTML content for accessibility violations using a headless browser and axe-core."),
		mcp.WithString("html",
			mcp.Required(),
			mcp.Description("Raw HTML content to be scanned"),
		),
	}
	return mcp.NewTool(ToolScanHTML, append(opts, scanOptionSchema(model.DefaultHTMLWaitMs)...)...)
}

// ScanBatchTool describes scan-batch.
func ScanBatchTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Scans up to 20 URLs one after another in a shared browser. A failing URL does not stop the batch."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("Array of URLs to scan (1 to 20)"),
			mcp.Items(map[string]any{"type": "string", "format": "uri"}),
		),
	}
	return mcp.NewTool(ToolScanBatch, append(opts, scanOptionSchema(model.DefaultURLWaitMs)...)...)
}

// SummarizeViolationsTool describes summarize-violations.
func SummarizeViolationsTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Summarizes accessibility violations by impact and renders the summary in the requested format."),
	}
	return mcp.NewTool(ToolSummarizeViolations, append(opts, summaryOptionSchema()...)...)
}

// WriteViolationsReportTool describes write-violations-report.
func WriteViolationsReportTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Summarizes accessibility violations and writes the rendered report to a new file in the output directory."),
	}
	return mcp.NewTool(ToolWriteViolationsReport, append(opts, summaryOptionSchema()...)...)
}
