package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/apperrors"
)

// Codes carried in ErrorResponse.Code.
const (
	CodeInvalidParameters = "invalid_parameters"
	CodeMSFNotFound       = "msf_not_found"
)

// ErrorResponse is the body of a tool result with IsError set. Problems the
// caller can fix (a blank MSF, an unknown MSF) are reported this way; storage
// failures surface as protocol errors instead.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return NewErrorResultWithDetails(code, message, nil)
}

// NewErrorResultWithDetails creates an error result with additional context.
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	body, _ := json.Marshal(ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	})
	result := mcp.NewToolResultText(string(body))
	result.IsError = true
	return result
}

// requireMSF reads the trimmed msf argument. A missing or blank value yields
// an error result naming the parameter.
func requireMSF(req mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	msf, err := req.RequireString("msf")
	if err != nil {
		return "", NewErrorResultWithDetails(CodeInvalidParameters, err.Error(), map[string]string{"parameter": "msf"})
	}
	if msf = trimString(msf); msf == "" {
		return "", NewErrorResultWithDetails(CodeInvalidParameters, "msf cannot be empty", map[string]string{"parameter": "msf"})
	}
	return msf, nil
}

// lookupError converts a service error for one MSF into an error result.
// ok is false when err is not the caller's fault and must be returned as is.
func lookupError(msf string, err error) (result *mcp.CallToolResult, ok bool) {
	if errors.Is(err, apperrors.ErrNotFound) {
		return NewErrorResult(CodeMSFNotFound, fmt.Sprintf("no catalog entry for MSF %q", msf)), true
	}
	return nil, false
}
