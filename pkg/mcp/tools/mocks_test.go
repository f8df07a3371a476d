package tools

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/batch"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/services"
)

// fakeScopes hands out the caller's context and counts acquisitions and releases.
type fakeScopes struct {
	err      error
	acquired int
	released int
}

func (f *fakeScopes) WithScope(ctx context.Context) (context.Context, func(), error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	f.acquired++
	return ctx, func() { f.released++ }, nil
}

type mockInventoryService struct {
	items    []*models.InventoryItem
	detail   *models.ProductDetail
	quantity int
	err      error

	gotDatacenter *string
	gotSearch     string
	gotMSF        string
}

func (m *mockInventoryService) CurrentQuantity(ctx context.Context, msf string, datacenter *string) (int, error) {
	m.gotMSF = msf
	m.gotDatacenter = datacenter
	return m.quantity, m.err
}

func (m *mockInventoryService) ListProducts(ctx context.Context, datacenter *string) ([]*models.InventoryItem, error) {
	m.gotDatacenter = datacenter
	return m.items, m.err
}

func (m *mockInventoryService) Search(ctx context.Context, query string, datacenter *string) ([]*models.InventoryItem, error) {
	m.gotSearch = query
	m.gotDatacenter = datacenter
	return m.items, m.err
}

func (m *mockInventoryService) GroupedInventory(ctx context.Context, datacenter *string) ([]*models.CategoryGroup, error) {
	return nil, m.err
}

func (m *mockInventoryService) GetProduct(ctx context.Context, msf string, datacenter *string) (*models.ProductDetail, error) {
	m.gotMSF = msf
	m.gotDatacenter = datacenter
	return m.detail, m.err
}

func (m *mockInventoryService) UpdateCategory(ctx context.Context, msf, category string) error {
	return m.err
}

func (m *mockInventoryService) ExportXLSX(ctx context.Context, datacenter *string, w io.Writer) error {
	return m.err
}

type mockImportService struct {
	history  []*models.ImportRecord
	err      error
	gotLimit int
}

func (m *mockImportService) Import(ctx context.Context, filename, datacenter string, r io.Reader) (*models.ImportResult, error) {
	return nil, m.err
}

func (m *mockImportService) Reconcile(ctx context.Context, filename, datacenter string, records []batch.Record) (*models.ImportResult, error) {
	return nil, m.err
}

func (m *mockImportService) History(ctx context.Context, limit int) ([]*models.ImportRecord, error) {
	m.gotLimit = limit
	return m.history, m.err
}

var (
	_ services.InventoryService = (*mockInventoryService)(nil)
	_ services.ImportService    = (*mockImportService)(nil)
)

func newInventoryTestServer(inventory *mockInventoryService, imports *mockImportService, scopes *fakeScopes) *server.MCPServer {
	s := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	RegisterInventoryTools(s, &InventoryToolDeps{
		Scopes:    scopes,
		Inventory: inventory,
		Imports:   imports,
		Logger:    zap.NewNop(),
	})
	return s
}

// toolResponse is a tools/call response as seen by a client.
type toolResponse struct {
	Result struct {
		Content []mcp.TextContent `json:"content"`
		IsError bool              `json:"isError"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// callTool invokes a tool through the server's JSON-RPC entry point.
func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) toolResponse {
	t.Helper()

	request := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
	}
	raw, err := json.Marshal(request)
	require.NoError(t, err)

	result := s.HandleMessage(context.Background(), raw)
	resultBytes, err := json.Marshal(result)
	require.NoError(t, err)

	var response toolResponse
	require.NoError(t, json.Unmarshal(resultBytes, &response))
	return response
}

// decodeContent unmarshals the first text content of a successful response.
func decodeContent(t *testing.T, response toolResponse, dst any) {
	t.Helper()
	require.Nil(t, response.Error, "unexpected protocol error")
	require.NotEmpty(t, response.Result.Content)
	require.NoError(t, json.Unmarshal([]byte(response.Result.Content[0].Text), dst))
}

func strPtr(s string) *string { return &s }
