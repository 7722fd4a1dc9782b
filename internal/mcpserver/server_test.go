package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/itinera/internal/planner"
	"github.com/starford/itinera/internal/storage"
	"github.com/starford/itinera/internal/testutil"
)

func testServer(t *testing.T) (*Server, *planner.Service) {
	t.Helper()
	svc, _, slots := testutil.TestPlanner(t)
	return New(svc, slots), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" helper, so dispatch to the handlers.
	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"generate_itinerary":     srv.generateItinerary,
		"get_itinerary":          srv.getItinerary,
		"itinerary_summary":      srv.itinerarySummary,
		"map_points":             srv.mapPoints,
		"update_activity":        srv.updateActivity,
		"remove_activity":        srv.removeActivity,
		"add_activity":           srv.addActivity,
		"reorder_activities":     srv.reorderActivities,
		"save_itinerary":         srv.saveItinerary,
		"load_itinerary":         srv.loadItinerary,
		"clear_itinerary":        srv.clearItinerary,
		"import_itinerary":       srv.importItinerary,
		"get_itinerary_contract": srv.getItineraryContract,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestGenerateAndGetItinerary(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "generate_itinerary", map[string]interface{}{"prompt": "Plan a 2-day trip to Tokyo"})
	if r.IsError {
		t.Fatalf("generate failed: %s", resultText(r))
	}

	r = callTool(t, srv, "get_itinerary", map[string]interface{}{})
	var doc planner.Document
	if err := json.Unmarshal([]byte(resultText(r)), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Itinerary == nil || len(doc.Itinerary.Days) != 2 {
		t.Errorf("document = %+v", doc.Itinerary)
	}
	if !strings.Contains(doc.Itinerary.Destination, "Tokyo") {
		t.Errorf("destination = %q", doc.Itinerary.Destination)
	}
}

func TestGetItineraryEmpty(t *testing.T) {
	srv, _ := testServer(t)
	if r := callTool(t, srv, "get_itinerary", map[string]interface{}{}); !r.IsError {
		t.Error("expected error with no itinerary")
	}
	if r := callTool(t, srv, "generate_itinerary", map[string]interface{}{"prompt": " "}); !r.IsError {
		t.Error("expected error for blank prompt")
	}
}

func TestEditTools(t *testing.T) {
	srv, svc := testServer(t)
	callTool(t, srv, "generate_itinerary", map[string]interface{}{"prompt": "Paris"})

	r := callTool(t, srv, "update_activity", map[string]interface{}{
		"day_index": 0, "activity_index": 0, "patch": `{"cost": 99}`,
	})
	if r.IsError {
		t.Fatalf("update: %s", resultText(r))
	}
	doc, _ := svc.Current()
	if got := doc.Itinerary.Days[0].Activities[0].CostValue(); got != 99 {
		t.Errorf("cost = %v, want 99", got)
	}

	r = callTool(t, srv, "update_activity", map[string]interface{}{
		"day_index": 0, "activity_index": 0, "patch": `{"cost": 1}`, "revision": "stale",
	})
	if !r.IsError {
		t.Error("stale revision should be rejected")
	}

	r = callTool(t, srv, "add_activity", map[string]interface{}{
		"day_index": 1, "activity": `{"name": "Night walk", "category": "sightseeing"}`,
	})
	if r.IsError {
		t.Fatalf("add: %s", resultText(r))
	}
	if r := callTool(t, srv, "add_activity", map[string]interface{}{"day_index": 1, "activity": `{"category": "spa"}`}); !r.IsError {
		t.Error("invalid activity should be rejected")
	}

	first := doc.Itinerary.Days[0].Activities[0].ID
	if r := callTool(t, srv, "reorder_activities", map[string]interface{}{"day_index": 0, "from": 0, "to": 1}); r.IsError {
		t.Fatalf("reorder: %s", resultText(r))
	}
	doc, _ = svc.Current()
	if doc.Itinerary.Days[0].Activities[1].ID != first {
		t.Error("reorder missed")
	}

	r = callTool(t, srv, "remove_activity", map[string]interface{}{"day_index": 0, "activity_index": 1})
	if !strings.HasPrefix(resultText(r), "removed: ") {
		t.Errorf("remove result = %q", resultText(r))
	}
	if r := callTool(t, srv, "remove_activity", map[string]interface{}{"day_index": 7, "activity_index": 0}); !r.IsError {
		t.Error("out of range should be an error")
	}
}

func TestSummaryAndMapPoints(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "generate_itinerary", map[string]interface{}{"prompt": "Plan a 3-day trip to Paris"})

	r := callTool(t, srv, "itinerary_summary", map[string]interface{}{})
	if !strings.Contains(resultText(r), `"totalLabel": "$422.50"`) {
		t.Errorf("summary = %s", resultText(r))
	}

	r = callTool(t, srv, "map_points", map[string]interface{}{"day": 1})
	var mv struct {
		Points []struct {
			DayNumber int `json:"dayNumber"`
		} `json:"points"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &mv); err != nil {
		t.Fatal(err)
	}
	if len(mv.Points) == 0 {
		t.Fatal("no points for day 1")
	}
	for _, p := range mv.Points {
		if p.DayNumber != 1 {
			t.Errorf("point from day %d", p.DayNumber)
		}
	}
}

func TestSaveClearLoad(t *testing.T) {
	srv, svc := testServer(t)

	if r := callTool(t, srv, "load_itinerary", map[string]interface{}{}); resultText(r) != "no saved itinerary" {
		t.Errorf("empty load = %q", resultText(r))
	}
	callTool(t, srv, "generate_itinerary", map[string]interface{}{"prompt": "Paris"})
	if r := callTool(t, srv, "save_itinerary", map[string]interface{}{}); r.IsError {
		t.Fatalf("save: %s", resultText(r))
	}
	if r := callTool(t, srv, "clear_itinerary", map[string]interface{}{}); resultText(r) != "cleared" {
		t.Errorf("clear = %q", resultText(r))
	}
	if _, err := svc.Current(); err == nil {
		t.Fatal("document should be gone after clear")
	}
	if r := callTool(t, srv, "load_itinerary", map[string]interface{}{}); r.IsError {
		t.Fatalf("load: %s", resultText(r))
	}
	if _, err := svc.Current(); err != nil {
		t.Errorf("load did not install: %v", err)
	}
}

func TestImportDataURI(t *testing.T) {
	srv, svc := testServer(t)

	raw := `{"destination":"Lisbon","startDate":"2025-05-01","endDate":"2025-05-01","notes":"drop me",
		"days":[{"dayNumber":1,"activities":[{"name":"Tram 28","description":"","cost":3}]}]}`
	uri := "data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte(raw))

	r := callTool(t, srv, "import_itinerary", map[string]interface{}{"url": uri})
	if r.IsError {
		t.Fatalf("import: %s", resultText(r))
	}
	doc, err := svc.Current()
	if err != nil || doc.Itinerary.Destination != "Lisbon" {
		t.Fatalf("current = %+v, %v", doc.Itinerary, err)
	}
	if doc.Itinerary.Days[0].Activities[0].ID == "" {
		t.Error("imported activity should get an id")
	}

	stored, err := srv.slots.Get(context.Background(), storage.KeyItinerary)
	if err != nil {
		t.Fatalf("saved slot: %v", err)
	}
	if strings.Contains(string(stored), "drop me") || !strings.Contains(string(stored), `"Lisbon"`) {
		t.Errorf("slot should hold the re-encoded document, got %s", stored)
	}
}

func TestImportRejects(t *testing.T) {
	srv, _ := testServer(t)

	cases := map[string]string{
		"not base64":   "data:application/json,{}",
		"wrong mime":   "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("{}")),
		"invalid doc":  "data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte(`{"days":[]}`)),
		"bad scheme":   "ftp://example.com/trip.json",
		"loopback":     "http://127.0.0.1/trip.json",
		"metadata":     "http://169.254.169.254/latest",
		"missing data": "data:application/json;base64",
	}
	for name, uri := range cases {
		if r := callTool(t, srv, "import_itinerary", map[string]interface{}{"url": uri}); !r.IsError {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_itinerary_contract", map[string]interface{}{})
	if !strings.Contains(resultText(r), "Itinerary Format Contract") {
		t.Error("contract text missing")
	}

	res, err := srv.readFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(res) != 1 {
		t.Fatalf("resource = %v, %v", res, err)
	}
	if tc, ok := res[0].(mcp.TextResourceContents); !ok || tc.URI != formatURI {
		t.Errorf("resource = %+v", res[0])
	}
}
