package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// trimString removes leading and trailing whitespace from a string.
func trimString(s string) string {
	return strings.TrimSpace(s)
}

// getOptionalString extracts an optional string argument from the request.
func getOptionalString(req mcp.CallToolRequest, key string) string {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return ""
	}
	val, ok := args[key].(string)
	if !ok {
		return ""
	}
	return val
}

// getOptionalFloat extracts an optional numeric argument from the request.
func getOptionalFloat(req mcp.CallToolRequest, key string) (float64, bool) {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return 0, false
	}
	val, ok := args[key].(float64)
	return val, ok
}

// getDatacenter reads the datacenter argument. Absent means every datacenter
// (nil); present, even empty, selects that scope.
func getDatacenter(req mcp.CallToolRequest) *string {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return nil
	}
	val, ok := args["datacenter"].(string)
	if !ok {
		return nil
	}
	dc := trimString(val)
	return &dc
}

// getLimit reads the limit argument, falling back to def when absent or not positive.
func getLimit(req mcp.CallToolRequest, def, max int) int {
	val, ok := getOptionalFloat(req, "limit")
	if !ok || val < 1 {
		return def
	}
	if int(val) > max {
		return max
	}
	return int(val)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonResult, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonResult)), nil
}
