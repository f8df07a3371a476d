package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/logging"
)

// maxMCPLogBody bounds how much of an MCP request or response is kept for logging.
const maxMCPLogBody = 64 << 10

// MCPRequestLogger returns middleware that logs MCP JSON-RPC calls at debug level.
// The msf and datacenter arguments of inventory tools are lifted into their own
// fields. Pass nil logger to disable logging.
func MCPRequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logger == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// GET opens a notification stream and has no body worth reading.
			if r.Method != http.MethodPost || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}

			head, err := io.ReadAll(io.LimitReader(r.Body, maxMCPLogBody))
			if err != nil {
				logger.Error("Failed to read MCP request body", zap.Error(err))
				http.Error(w, "failed to read request body", http.StatusBadRequest)
				return
			}
			r.Body = struct {
				io.Reader
				io.Closer
			}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}

			call := parseToolCall(head)
			logger.Debug("MCP request", call.fields()...)

			recorder := &mcpResponseRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(recorder, r)

			fields := []zap.Field{
				zap.String("tool", call.Params.Name),
				zap.Int("status", recorder.status),
				zap.Duration("duration", time.Since(start)),
			}

			rpcErr, ok := parseRPCError(recorder.body.Bytes())
			switch {
			case !ok:
				logger.Debug("MCP response", fields...)
			case rpcErr != nil:
				logger.Debug("MCP response error", append(fields,
					zap.Int("error_code", rpcErr.Code),
					zap.String("error_message", rpcErr.Message))...)
			default:
				logger.Debug("MCP response success", fields...)
			}
		})
	}
}

// toolCall is the part of a JSON-RPC request worth logging.
type toolCall struct {
	Method string `json:"method"`
	Params struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	} `json:"params"`
}

func parseToolCall(body []byte) toolCall {
	var call toolCall
	// Batches and truncated bodies simply log without tool details.
	_ = json.Unmarshal(body, &call)
	return call
}

func (c toolCall) fields() []zap.Field {
	fields := []zap.Field{
		zap.String("method", c.Method),
		zap.String("tool", c.Params.Name),
	}
	if msf, ok := c.Params.Arguments["msf"].(string); ok {
		fields = append(fields, zap.String("msf", msf))
	}
	if dc, ok := c.Params.Arguments["datacenter"].(string); ok {
		fields = append(fields, zap.String("datacenter", dc))
	}
	if len(c.Params.Arguments) > 0 {
		fields = append(fields, zap.Any("arguments", truncateArguments(c.Params.Arguments)))
	}
	return fields
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// parseRPCError extracts the JSON-RPC error from a plain JSON or a single-event
// SSE response. ok is false when the body is not a recognizable response.
func parseRPCError(body []byte) (*rpcError, bool) {
	if i := bytes.Index(body, []byte("data: ")); i >= 0 && !bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
		body = body[i+len("data: "):]
		if j := bytes.IndexByte(body, '\n'); j >= 0 {
			body = body[:j]
		}
	}

	var resp struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false
	}
	if resp.Error == nil && resp.Result == nil {
		return nil, false
	}
	return resp.Error, true
}

// mcpResponseRecorder tees up to maxMCPLogBody bytes of the response.
type mcpResponseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *mcpResponseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *mcpResponseRecorder) Write(b []byte) (int, error) {
	if room := maxMCPLogBody - r.body.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		r.body.Write(b[:room])
	}
	return r.ResponseWriter.Write(b)
}

func (r *mcpResponseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// truncateArguments shortens long string values to keep log lines bounded.
func truncateArguments(args map[string]interface{}) map[string]interface{} {
	if args == nil {
		return nil
	}
	result := make(map[string]interface{}, len(args))
	for k, v := range args {
		if str, ok := v.(string); ok {
			result[k] = logging.TruncateString(str, logging.MaxValueLogLength)
			continue
		}
		result[k] = v
	}
	return result
}
