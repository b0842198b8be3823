// Package mcptools exposes the tracker as Model Context Protocol tools.
package mcptools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"fuel-tracker/internal/core"
	"fuel-tracker/internal/service"
)

// RegisterTools adds all fuel tracker tools to the server.
func RegisterTools(s *server.MCPServer, tracker *service.Tracker) {
	s.AddTool(listRecentEntriesTool(), listRecentEntries(tracker))
	s.AddTool(monthlyStatsTool(), monthlyStats(tracker))
	s.AddTool(yearlyStatsTool(), yearlyStats(tracker))
	s.AddTool(currentMonthSummaryTool(), currentMonthSummary(tracker))
	s.AddTool(addEntryTool(), addEntry(tracker))
	s.AddTool(getSettingsTool(), getSettings(tracker))
}

func listRecentEntriesTool() mcp.Tool {
	return mcp.NewTool("list_recent_entries",
		mcp.WithDescription("List the most recent fuel fill-ups, newest first, with cost, volume and price per unit."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to return (default: configured recent limit)"),
		),
	)
}

func listRecentEntries(tracker *service.Tracker) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := mcp.ParseInt(request, "limit", 0)
		if limit < 0 {
			return mcp.NewToolResultError("limit cannot be negative"), nil
		}
		entries := tracker.RecentEntries(ctx, limit)
		return mcp.NewToolResultText(renderEntries(entries, tracker.Formatter(ctx))), nil
	}
}

func monthlyStatsTool() mcp.Tool {
	return mcp.NewTool("monthly_stats",
		mcp.WithDescription("Fuel spending per calendar month: total cost, total volume, average price per unit and number of fill-ups, most recent month first."),
		mcp.WithNumber("months",
			mcp.Description("Number of most recent months to include (default: all)"),
		),
	)
}

func monthlyStats(tracker *service.Tracker) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats := tracker.MonthlyStats(ctx)
		if n := mcp.ParseInt(request, "months", 0); n > 0 && n < len(stats) {
			stats = stats[:n]
		}
		return mcp.NewToolResultText(renderMonthly(stats, tracker.Formatter(ctx))), nil
	}
}

func yearlyStatsTool() mcp.Tool {
	return mcp.NewTool("yearly_stats",
		mcp.WithDescription("Fuel spending per calendar year with a monthly breakdown, most recent year first."),
		mcp.WithString("year",
			mcp.Description("Only report this four digit year"),
		),
	)
}

func yearlyStats(tracker *service.Tracker) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats := tracker.YearlyStats(ctx)
		if year := strings.TrimSpace(mcp.ParseString(request, "year", "")); year != "" {
			filtered := stats[:0:0]
			for _, y := range stats {
				if y.Year == year {
					filtered = append(filtered, y)
				}
			}
			stats = filtered
		}
		return mcp.NewToolResultText(renderYearly(stats, tracker.Formatter(ctx))), nil
	}
}

func currentMonthSummaryTool() mcp.Tool {
	return mcp.NewTool("current_month_summary",
		mcp.WithDescription("Summary of the current calendar month: total spent, total fuel, average cost per fill-up and number of fill-ups."),
	)
}

func currentMonthSummary(tracker *service.Tracker) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		summary := tracker.CurrentMonth(ctx)
		return mcp.NewToolResultText(renderCurrentMonth(summary, tracker.Formatter(ctx))), nil
	}
}

func addEntryTool() mcp.Tool {
	return mcp.NewTool("add_entry",
		mcp.WithDescription("Record a fuel fill-up. The price per unit is derived from cost and amount."),
		mcp.WithNumber("cost",
			mcp.Required(),
			mcp.Description("Total amount paid"),
		),
		mcp.WithNumber("amount",
			mcp.Required(),
			mcp.Description("Volume of fuel"),
		),
		mcp.WithString("date",
			mcp.Description("Date of the fill-up (YYYY-MM-DD or RFC 3339). Defaults to now."),
		),
		mcp.WithString("unit",
			mcp.Description("liters or gallons. Defaults to the unit in settings."),
		),
		mcp.WithNumber("odometer",
			mcp.Description("Odometer reading"),
		),
		mcp.WithString("notes",
			mcp.Description("Free text notes"),
		),
	)
}

func addEntry(tracker *service.Tracker) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cost, err := request.RequireFloat("cost")
		if err != nil {
			return mcp.NewToolResultError("cost is required"), nil
		}
		amount, err := request.RequireFloat("amount")
		if err != nil {
			return mcp.NewToolResultError("amount is required"), nil
		}
		date, err := core.ParseDate(mcp.ParseString(request, "date", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		params := core.CreateEntryParams{
			Date:   date,
			Cost:   cost,
			Amount: amount,
			Notes:  mcp.ParseString(request, "notes", ""),
		}
		if raw := mcp.ParseString(request, "unit", ""); raw != "" {
			unit, err := core.ParseUnit(raw)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			params.Unit = unit
		}
		if _, ok := request.GetArguments()["odometer"]; ok {
			odometer := mcp.ParseFloat64(request, "odometer", 0)
			params.Odometer = &odometer
		}

		entry, err := tracker.AddEntry(ctx, params)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var b strings.Builder
		b.WriteString("Saved entry:\n")
		writeEntryLine(&b, entry, core.NewFormatter(unitSettings(tracker.Settings(ctx), entry.Unit), tracker.Location()))
		return mcp.NewToolResultText(b.String()), nil
	}
}

func getSettingsTool() mcp.Tool {
	return mcp.NewTool("get_settings",
		mcp.WithDescription("Show the language, currency and volume unit used for reporting."),
	)
}

func getSettings(tracker *service.Tracker) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(renderSettings(tracker.Settings(ctx))), nil
	}
}

// unitSettings overrides the display unit so a saved entry is shown in the
// unit it was recorded in.
func unitSettings(s core.Settings, unit core.Unit) core.Settings {
	if unit.Valid() {
		s.Unit = unit
	}
	return s
}
