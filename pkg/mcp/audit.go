package mcp

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/logging"
)

// maxPreviewLength caps the result preview written to the log.
const maxPreviewLength = 200

// AuditLogger records every MCP tool call to the structured log.
type AuditLogger struct {
	logger *zap.Logger

	// startTimes tracks when tool calls begin, keyed by request ID.
	startTimes sync.Map
}

// NewAuditLogger creates an AuditLogger that records MCP events.
func NewAuditLogger(logger *zap.Logger) *AuditLogger {
	return &AuditLogger{logger: logger.Named("mcp-audit")}
}

// Hooks returns mcp-go Hooks configured to capture tool call events.
func (a *AuditLogger) Hooks() *server.Hooks {
	hooks := &server.Hooks{}
	hooks.AddBeforeCallTool(a.beforeCallTool)
	hooks.AddAfterCallTool(a.afterCallTool)
	hooks.AddOnError(a.onError)
	return hooks
}

func (a *AuditLogger) beforeCallTool(_ context.Context, id any, _ *mcplib.CallToolRequest) {
	a.startTimes.Store(id, time.Now())
}

func (a *AuditLogger) afterCallTool(_ context.Context, id any, req *mcplib.CallToolRequest, result *mcplib.CallToolResult) {
	duration := a.elapsed(id)

	fields := []zap.Field{
		zap.String("tool", req.Params.Name),
		zap.Duration("duration", duration),
		zap.Any("arguments", req.Params.Arguments),
	}
	summary := summarizeResult(result)
	fields = append(fields, zap.Bool("is_error", summary.IsError))
	if summary.Count != nil {
		fields = append(fields, zap.Int("count", *summary.Count))
	}
	if summary.IsError {
		fields = append(fields, zap.String("preview", summary.Preview))
	}

	a.logger.Info("MCP tool call", fields...)
}

func (a *AuditLogger) onError(_ context.Context, id any, method mcplib.MCPMethod, message any, err error) {
	if method != mcplib.MethodToolsCall {
		return
	}

	req, ok := message.(*mcplib.CallToolRequest)
	if !ok {
		return
	}

	a.logger.Warn("MCP tool call failed",
		zap.String("tool", req.Params.Name),
		zap.Duration("duration", a.elapsed(id)),
		zap.String("error", logging.SanitizeError(err)))
}

func (a *AuditLogger) elapsed(id any) time.Duration {
	if v, ok := a.startTimes.LoadAndDelete(id); ok {
		return time.Since(v.(time.Time))
	}
	return 0
}

// resultSummary is a compact description of a tool result.
type resultSummary struct {
	IsError bool
	Count   *int
	Preview string
}

// summarizeResult extracts the error flag, the count field of JSON results and a
// truncated preview of the first text content.
func summarizeResult(result *mcplib.CallToolResult) resultSummary {
	if result == nil {
		return resultSummary{}
	}

	summary := resultSummary{IsError: result.IsError}
	for _, c := range result.Content {
		tc, ok := c.(mcplib.TextContent)
		if !ok {
			continue
		}

		var partial struct {
			Count *int `json:"count"`
		}
		if json.Unmarshal([]byte(tc.Text), &partial) == nil {
			summary.Count = partial.Count
		}
		summary.Preview = logging.TruncateString(tc.Text, maxPreviewLength)
		break
	}
	return summary
}
