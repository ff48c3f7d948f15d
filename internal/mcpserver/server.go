// Package mcpserver exposes the grouped reminders and the notification plan
// as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/julianstephens/waterme/internal/bucket"
	"github.com/julianstephens/waterme/internal/constants"
	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/notifications"
	"github.com/julianstephens/waterme/internal/projection"
	"github.com/julianstephens/waterme/internal/source"
	"github.com/julianstephens/waterme/internal/storage"
	"github.com/julianstephens/waterme/internal/utils"
)

const serverName = "waterme"

type Server struct {
	mcpServer *server.MCPServer
	store     storage.Provider
	col       *source.Collection
	gedeg     *projection.Gedeg
	now       func() time.Time
}

type Option func(*Server)

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(store storage.Provider, col *source.Collection, opts ...Option) *Server {
	s := &Server{store: store, col: col, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	settings, err := store.GetSettings()
	if err != nil {
		settings = models.DefaultSettings()
	}
	s.gedeg = projection.New(col,
		projection.WithClock(s.localNow),
		projection.WithFirstWeekday(settings.FirstWeekday()),
	)
	// the projection only keeps sections while observed
	s.gedeg.SetObserver(func(projection.Change) {})

	s.mcpServer = server.NewMCPServer(serverName, constants.Version, server.WithToolCapabilities(false))
	s.registerTools()
	return s
}

func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio blocks serving requests on stdin and stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) Close() {
	s.gedeg.Close()
}

func (s *Server) localNow() time.Time {
	settings, err := s.store.GetSettings()
	if err != nil {
		return s.now()
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return s.now()
	}
	return s.now().In(loc)
}

// settle waits until every store change made so far is visible in the
// projection.
func (s *Server) settle() {
	s.col.Sync()
	s.gedeg.Sync()
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("list_sections",
			mcp.WithDescription("List plant care reminders grouped into Late, Today, Tomorrow, This Week and Later"),
			mcp.WithString("bucket", mcp.Description("Only return this bucket"),
				mcp.Enum("Late", "Today", "Tomorrow", "This Week", "Later")),
		),
		s.handleListSections,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("list_vessels",
			mcp.WithDescription("List plants with their reminder ids"),
		),
		s.handleListVessels,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("perform_reminders",
			mcp.WithDescription("Mark one or more reminders as done now"),
			mcp.WithString("ids", mcp.Required(), mcp.Description("Comma separated reminder ids")),
		),
		s.handlePerform,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("notification_plan",
			mcp.WithDescription("Preview the notifications that would be scheduled now"),
		),
		s.handlePlan,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("badge_count",
			mcp.WithDescription("Number of reminders due today or earlier"),
		),
		s.handleBadge,
	)
}

type reminderView struct {
	ID          string     `json:"id"`
	Plant       string     `json:"plant"`
	Task        string     `json:"task"`
	Every       int        `json:"every_days"`
	NextPerform *time.Time `json:"next_perform,omitempty"`
	Note        string     `json:"note,omitempty"`
}

type sectionView struct {
	Bucket    string         `json:"bucket"`
	Reminders []reminderView `json:"reminders"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleListSections(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	only := req.GetString("bucket", "")
	s.settle()

	var out []sectionView
	for _, k := range bucket.All {
		if only != "" && k.String() != only {
			continue
		}
		sec := sectionView{Bucket: k.String(), Reminders: []reminderView{}}
		for row := 0; row < s.gedeg.NumberOfRows(k); row++ {
			r, ok := s.gedeg.Item(projection.IndexPath{Section: k, Row: row})
			if !ok {
				continue
			}
			sec.Reminders = append(sec.Reminders, reminderView{
				ID:          r.ID,
				Plant:       s.col.VesselName(r.VesselID),
				Task:        r.Kind.DisplayName(),
				Every:       r.IntervalDays,
				NextPerform: r.NextPerformDate,
				Note:        r.Note,
			})
		}
		out = append(out, sec)
	}
	if len(out) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("unknown bucket %q", only)), nil
	}
	return jsonResult(out)
}

func (s *Server) handleListVessels(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vessels, err := s.store.GetAllVessels()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list plants: %v", err)), nil
	}
	if len(vessels) == 0 {
		return mcp.NewToolResultText("No plants found."), nil
	}
	return jsonResult(vessels)
}

func (s *Server) handlePerform(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return mcp.NewToolResultError("ids is required"), nil
	}

	if err := s.store.AppendPerform(ids, s.localNow()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to perform reminders: %v", err)), nil
	}
	s.settle()
	return mcp.NewToolResultText(fmt.Sprintf("Marked %d reminder(s) as done.", len(ids))), nil
}

type planView struct {
	FireAt    time.Time `json:"fire_at"`
	Immediate bool      `json:"immediate"`
	Items     int       `json:"items"`
	Body      string    `json:"body,omitempty"`
}

func (s *Server) handlePlan(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	settings, err := s.store.GetSettings()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read settings: %v", err)), nil
	}
	if !settings.NotificationsEnabled {
		return mcp.NewToolResultText("Notifications are turned off."), nil
	}
	s.settle()
	plan := notifications.BuildPlan(s.col.Snapshot(), s.col, notifications.ConfigFromSettings(settings), s.localNow(), nil)
	if len(plan) == 0 {
		return mcp.NewToolResultText("Nothing to notify about."), nil
	}
	out := make([]planView, len(plan))
	for i, e := range plan {
		out[i] = planView{FireAt: e.FireAt, Immediate: e.IsImmediate, Items: e.ItemCount, Body: notifications.Body(e)}
	}
	return jsonResult(out)
}

func (s *Server) handleBadge(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.settle()
	n := notifications.BadgeCount(s.col.Snapshot(), s.localNow())
	return mcp.NewToolResultText(fmt.Sprintf("%d", n)), nil
}
