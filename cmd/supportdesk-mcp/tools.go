package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createAskSupportTool returns the ask_support tool definition
func createAskSupportTool() mcp.Tool {
	return mcp.NewTool("ask_support",
		mcp.WithDescription("Answer a customer question from the FAQ knowledge base"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The customer's question (max 5000 characters)"),
		),
		mcp.WithBoolean("debug",
			mcp.Description("Include the pipeline trace in the output"),
		),
	)
}

// createSearchFAQsTool returns the search_faqs tool definition
func createSearchFAQsTool() mcp.Tool {
	return mcp.NewTool("search_faqs",
		mcp.WithDescription("Find FAQ entries semantically similar to a query"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
	)
}
