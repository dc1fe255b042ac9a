package main

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/supportdesk/internal/interfaces"
	"github.com/ternarybob/supportdesk/internal/models"
)

// handleAskSupport implements the ask_support tool
func handleAskSupport(supportService interfaces.SupportService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil || question == "" {
			return textResult("Error: question parameter is required"), nil
		}

		resp := supportService.Respond(ctx, &models.ChatRequest{
			Message: question,
			Debug:   request.GetBool("debug", false),
		})
		if resp.Escalate {
			logger.Warn().Str("question", question).Msg("Support answer suggests escalation")
		}

		return textResult(formatChatResponse(resp)), nil
	}
}

// handleSearchFAQs implements the search_faqs tool
func handleSearchFAQs(supportService interfaces.SupportService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return textResult("Error: query parameter is required"), nil
		}

		candidates := supportService.SearchFAQs(ctx, query)
		logger.Debug().Str("query", query).Int("results", len(candidates)).Msg("FAQ search")

		return textResult(formatSearchResults(query, candidates)), nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}
