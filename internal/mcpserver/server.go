// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the itinerary planner as tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/itinera/internal/models"
	"github.com/starford/itinera/internal/planner"
	"github.com/starford/itinera/internal/storage"
	"github.com/starford/itinera/internal/selection"
)

const formatURI = "itinera://itinerary-format"

// Server wraps the MCP server with itinerary tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *planner.Service
	slots storage.Slots
}

// New creates a new MCP server with all itinerary tools registered.
func New(svc *planner.Service, slots storage.Slots) *Server {
	s := &Server{svc: svc, slots: slots}

	s.mcp = server.NewMCPServer(
		"Itinera",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("generate_itinerary",
		mcp.WithDescription("Generate a travel itinerary from a free-text request and make it the current document."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("Trip request, e.g. \"Plan a 3-day trip to Paris\"")),
	), s.generateItinerary)

	s.mcp.AddTool(mcp.NewTool("get_itinerary",
		mcp.WithDescription("Return the current itinerary as JSON, with its revision."),
	), s.getItinerary)

	s.mcp.AddTool(mcp.NewTool("itinerary_summary",
		mcp.WithDescription("Cost totals, per-day averages and category counts of the current itinerary."),
	), s.itinerarySummary)

	s.mcp.AddTool(mcp.NewTool("map_points",
		mcp.WithDescription("Numbered map markers, bounds and route length. Activities without coordinates are skipped."),
		mcp.WithNumber("day", mcp.Description("Day number to show; 0 or absent for every day")),
	), s.mapPoints)

	s.mcp.AddTool(mcp.NewTool("update_activity",
		mcp.WithDescription("Merge fields into one activity. Positions are 0-based."),
		mcp.WithNumber("day_index", mcp.Required(), mcp.Description("0-based day position")),
		mcp.WithNumber("activity_index", mcp.Required(), mcp.Description("0-based activity position within the day")),
		mcp.WithString("patch", mcp.Required(), mcp.Description("JSON object with the fields to change, e.g. {\"cost\": 25}")),
		mcp.WithString("revision", mcp.Description("Expected revision; the edit is rejected if the document changed")),
	), s.updateActivity)

	s.mcp.AddTool(mcp.NewTool("remove_activity",
		mcp.WithDescription("Delete one activity. Positions are 0-based."),
		mcp.WithNumber("day_index", mcp.Required(), mcp.Description("0-based day position")),
		mcp.WithNumber("activity_index", mcp.Required(), mcp.Description("0-based activity position within the day")),
		mcp.WithString("revision", mcp.Description("Expected revision")),
	), s.removeActivity)

	s.mcp.AddTool(mcp.NewTool("add_activity",
		mcp.WithDescription("Append an activity to the end of a day. Read the format contract first."),
		mcp.WithNumber("day_index", mcp.Required(), mcp.Description("0-based day position")),
		mcp.WithString("activity", mcp.Required(), mcp.Description("Activity as a JSON object following the itinerary format contract")),
		mcp.WithString("revision", mcp.Description("Expected revision")),
	), s.addActivity)

	s.mcp.AddTool(mcp.NewTool("reorder_activities",
		mcp.WithDescription("Move the activity at position from to position to within one day."),
		mcp.WithNumber("day_index", mcp.Required(), mcp.Description("0-based day position")),
		mcp.WithNumber("from", mcp.Required(), mcp.Description("Current 0-based position")),
		mcp.WithNumber("to", mcp.Required(), mcp.Description("New 0-based position")),
		mcp.WithString("revision", mcp.Description("Expected revision")),
	), s.reorderActivities)

	s.mcp.AddTool(mcp.NewTool("save_itinerary",
		mcp.WithDescription("Persist the current itinerary to local storage."),
	), s.saveItinerary)

	s.mcp.AddTool(mcp.NewTool("load_itinerary",
		mcp.WithDescription("Replace the current itinerary with the saved one, if any."),
	), s.loadItinerary)

	s.mcp.AddTool(mcp.NewTool("clear_itinerary",
		mcp.WithDescription("Drop the current itinerary. Saved data is kept."),
	), s.clearItinerary)

	s.mcp.AddTool(mcp.NewTool("import_itinerary",
		mcp.WithDescription("Fetch an itinerary JSON document from an http(s) URL or a base64 data: URI, "+
			"store it as the saved itinerary and load it."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:application/json;base64,... URI")),
	), s.importItinerary)

	s.mcp.AddTool(mcp.NewTool("get_itinerary_contract",
		mcp.WithDescription("Returns the itinerary JSON format contract. "+
			"Call this before adding or updating activities to ensure correct structure."),
	), s.getItineraryContract)

	// Resource: itinerary format contract.
	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Itinerary Format Contract",
			mcp.WithResourceDescription("JSON shape of itineraries, days and activities."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) generateItinerary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Generate(ctx, prompt)
	if err != nil {
		return mcp.NewToolResultError(planner.ChatReply(err)), nil
	}
	return jsonResult(res), nil
}

func (s *Server) getItinerary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.svc.Current()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(doc), nil
}

func (s *Server) itinerarySummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum, err := s.svc.Summary(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(sum), nil
}

func (s *Server) mapPoints(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day := req.GetInt("day", selection.AllDays)
	mv, err := s.svc.MapView(ctx, &day)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(mv), nil
}

// position reads the named 0-based index arguments in order.
func position(req mcp.CallToolRequest, names ...string) ([]int, error) {
	out := make([]int, len(names))
	for i, n := range names {
		v, err := req.RequireInt(n)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, fmt.Errorf("%s must not be negative", n)
		}
		out[i] = v
	}
	return out, nil
}

func (s *Server) updateActivity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pos, err := position(req, "day_index", "activity_index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("patch")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var patch models.ActivityPatch
	if err := json.Unmarshal([]byte(raw), &patch); err != nil {
		return mcp.NewToolResultError("patch is not a JSON object: " + err.Error()), nil
	}
	if patch.Empty() {
		return mcp.NewToolResultError("patch has no fields to update"), nil
	}
	if err := patch.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.UpdateActivity(ctx, pos[0], pos[1], patch, req.GetString("revision", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(doc), nil
}

func (s *Server) removeActivity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pos, err := position(req, "day_index", "activity_index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, removed, err := s.svc.RemoveActivity(ctx, pos[0], pos[1], req.GetString("revision", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed: %s", removed.Name)), nil
}

func (s *Server) addActivity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pos, err := position(req, "day_index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("activity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var a models.Activity
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return mcp.NewToolResultError("activity is not a JSON object: " + err.Error()), nil
	}
	if err := a.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.AddActivity(ctx, pos[0], a, req.GetString("revision", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(doc), nil
}

func (s *Server) reorderActivities(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pos, err := position(req, "day_index", "from", "to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.ReorderActivities(ctx, pos[0], pos[1], pos[2], req.GetString("revision", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(doc), nil
}

func (s *Server) saveItinerary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	at, err := s.svc.Save(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("saved: " + at.Format(planner.SavedAtLayout)), nil
}

func (s *Server) loadItinerary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.svc.Load(ctx) {
		return mcp.NewToolResultText("no saved itinerary"), nil
	}
	doc, err := s.svc.Current()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(doc), nil
}

func (s *Server) clearItinerary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.svc.Clear(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("cleared"), nil
}

func (s *Server) getItineraryContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ItineraryFormatContract), nil
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     ItineraryFormatContract,
		},
	}, nil
}
