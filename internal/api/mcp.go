package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"shopmate/internal/intent"
	"shopmate/internal/recommend"
	"shopmate/internal/search"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Deps
	Search *search.Engine
}

// NewMCPServer creates an MCP server exposing the catalog, cart, and
// assistant as tools so agent clients can shop over stdio.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"shopmate",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("shopmate: conversational shopping over a product catalog with per-session carts."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("search_products",
			mcp.WithDescription("Search the product catalog with free text and return scored matches."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 5)")),
		),
		mcpSearchProducts(deps),
	)

	s.AddTool(
		mcp.NewTool("add_to_cart",
			mcp.WithDescription("Add a product to a session's cart."),
			mcp.WithString("product_id", mcp.Description("Catalog product id"), mcp.Required()),
			mcp.WithString("session_id", mcp.Description("Session id; omit for the default session")),
			mcp.WithNumber("quantity", mcp.Description("Quantity to add (default 1)")),
		),
		mcpAddToCart(deps),
	)

	s.AddTool(
		mcp.NewTool("view_cart",
			mcp.WithDescription("Return a session's cart contents and total."),
			mcp.WithString("session_id", mcp.Description("Session id; omit for the default session")),
		),
		mcpViewCart(deps),
	)

	s.AddTool(
		mcp.NewTool("recommend",
			mcp.WithDescription("Suggest products that go well with a given product."),
			mcp.WithString("product_id", mcp.Description("Catalog product id"), mcp.Required()),
			mcp.WithString("session_id", mcp.Description("Session id; omit for the default session")),
		),
		mcpRecommend(deps),
	)

	s.AddTool(
		mcp.NewTool("chat",
			mcp.WithDescription("Send one message to the shopping assistant and get its reply."),
			mcp.WithString("message", mcp.Description("The shopper's message"), mcp.Required()),
			mcp.WithString("session_id", mcp.Description("Session id; omit for the default session")),
		),
		mcpChat(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"catalog://products",
			"Product Catalog",
			mcp.WithResourceDescription("All products as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProducts(deps),
	)

	return s
}

func mcpSearchProducts(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		limit := req.GetInt("limit", 5)
		if limit <= 0 {
			limit = 5
		}

		results := deps.Search.Search(ctx, query, intent.ExtractEntities(query), deps.Catalog.All())
		if len(results) > limit {
			results = results[:limit]
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpAddToCart(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		productID, err := req.RequireString("product_id")
		if err != nil {
			return mcpError("product_id is required"), nil
		}
		p, ok := deps.Catalog.Get(productID)
		if !ok {
			return mcpError(fmt.Sprintf("product %q not found", productID)), nil
		}

		sessionID := req.GetString("session_id", "")
		quantity := req.GetInt("quantity", 1)

		if err := deps.Sessions.AddToCart(sessionID, productID, quantity); err != nil {
			return mcpError(fmt.Sprintf("failed to add to cart: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Added %s to the cart", p.Name)), nil
	}
}

func mcpViewCart(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID := req.GetString("session_id", "")
		items, err := deps.Sessions.Cart(sessionID)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to read cart: %v", err)), nil
		}

		b, err := json.Marshal(cartView(deps.Deps, items))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal cart: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpRecommend(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		productID, err := req.RequireString("product_id")
		if err != nil {
			return mcpError("product_id is required"), nil
		}
		p, ok := deps.Catalog.Get(productID)
		if !ok {
			return mcpError(fmt.Sprintf("product %q not found", productID)), nil
		}

		cart, err := cartProducts(deps.Deps, req.GetString("session_id", ""))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to read cart: %v", err)), nil
		}

		recs := recommend.Generate(p, cart, deps.Catalog.All())
		b, err := json.Marshal(recs)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal recommendations: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpChat(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return mcpError("message is required"), nil
		}

		reply, err := deps.Assistant.HandleTurn(ctx, req.GetString("session_id", ""), message)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to handle message: %v", err)), nil
		}

		b, err := json.Marshal(reply)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal reply: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceProducts(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(deps.Catalog.All())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal products: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
