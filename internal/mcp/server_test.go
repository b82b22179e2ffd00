package mcp

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/mcp-statute-server/internal/compliance"
	"github.com/sha1n/mcp-statute-server/internal/config"
	"github.com/sha1n/mcp-statute-server/internal/kb"
	"github.com/sha1n/mcp-statute-server/internal/statute"
)

const actText = `SEC. 12. Criteria for Lawful Processing of Personal Information. – The processing of personal information shall be permitted only if the data subject has given his or her consent.

SEC. 20. Security of Personal Information. – The personal information controller must implement reasonable and appropriate organizational, physical and technical measures.
`

func loadedService(t *testing.T) *kb.Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "act.txt")
	if err := os.WriteFile(path, []byte(actText), 0644); err != nil {
		t.Fatal(err)
	}

	svc, err := kb.NewService(&config.StatuteSettings{
		Path:        path,
		Name:        "Test Act",
		MaxFileSize: 1 << 20,
		MaxResults:  10,
		Layout: config.LayoutSettings{
			Definitions: statute.DefaultDefinitionsSpec,
			Penalties:   statute.DefaultPenaltiesSpec,
			Rights:      statute.DefaultRightsSpec,
			Principles:  statute.DefaultPrinciplesSpec,
			Functions:   statute.DefaultFunctionsSpec,
		},
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	if err := svc.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

// connect opens an in-memory client session to server.
func connect(t *testing.T, server *mcp.Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("Server connect failed: %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("Client connect failed: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func toolNames(t *testing.T, session *mcp.ClientSession) []string {
	t.Helper()
	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}
	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	return names
}

func TestCreateServer_EmptyConfig(t *testing.T) {
	server := CreateServer(ServerConfig{})
	if server == nil {
		t.Fatal("Expected server to be created even with empty config")
	}
}

func TestCreateServer_NoToolsWithoutStatute(t *testing.T) {
	session := connect(t, CreateServer(ServerConfig{Name: "statute-mcp", Version: "1.0.0"}))

	if names := toolNames(t, session); len(names) != 0 {
		t.Errorf("Expected no tools, got %v", names)
	}
}

func TestCreateServer_RegistersTools(t *testing.T) {
	session := connect(t, CreateServer(ServerConfig{
		Name:    "statute-mcp",
		Version: "1.0.0",
		Statute: loadedService(t),
	}))

	expected := []string{
		"check_compliance", "compliance_rules", "fulltext_statute", "get_definition",
		"get_penalty", "get_section", "list_clauses", "search_statute", "statute_stats",
	}
	names := toolNames(t, session)
	if strings.Join(names, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected tools %v, got %v", expected, names)
	}
}

func TestCreateServer_CallTool(t *testing.T) {
	session := connect(t, CreateServer(ServerConfig{
		Name:    "statute-mcp",
		Version: "1.0.0",
		Statute: loadedService(t),
	}))

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "get_section",
		Arguments: map[string]any{"number": "12"},
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if res.IsError {
		t.Fatal("Expected successful result")
	}
	text := res.Content[0].(*mcp.TextContent).Text
	if !strings.Contains(text, "## Section 12. Criteria for Lawful Processing of Personal Information") {
		t.Errorf("Unexpected section text: %s", text)
	}
}

func TestCreateServer_CustomComplianceSections(t *testing.T) {
	sections := compliance.DefaultSections()
	sections.Security = "12"

	session := connect(t, CreateServer(ServerConfig{
		Name:     "statute-mcp",
		Version:  "1.0.0",
		Statute:  loadedService(t),
		Sections: &sections,
	}))

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "check_compliance",
		Arguments: map[string]any{"text": "Stored unencrypted.", "document": "memo"},
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	text := res.Content[0].(*mcp.TextContent).Text
	if !strings.Contains(text, "Section 12: Criteria for Lawful Processing") {
		t.Errorf("Expected security finding to cite section 12, got: %s", text)
	}
	if strings.Contains(text, "Section 20") {
		t.Errorf("Expected the default security section to be replaced, got: %s", text)
	}
}
