package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lukman83/promobot/internal/caption"
	"github.com/lukman83/promobot/internal/models"
	"github.com/lukman83/promobot/internal/pipeline"
	"github.com/lukman83/promobot/internal/source"
	"github.com/lukman83/promobot/internal/store"
)

// Runner triggers a pipeline run for a keyword.
type Runner interface {
	RunKeyword(ctx context.Context, keyword string) pipeline.Summary
}

// Deps are the components the tools operate on. Runner may be nil, in which
// case run_pipeline reports an error.
type Deps struct {
	Sources   *source.Registry
	Store     store.Store
	Formatter *caption.Formatter
	Runner    Runner
	Limit     int
}

type tools struct {
	Deps
}

func registerTools(s *server.MCPServer, d Deps) {
	if d.Limit <= 0 {
		d.Limit = 10
	}
	t := &tools{Deps: d}

	// search_products
	searchTool := mcp.NewTool("search_products",
		mcp.WithDescription("Search partner and marketplace APIs for deals by keyword"),
		mcp.WithString("keyword",
			mcp.Required(),
			mcp.Description("Search keyword"),
		),
		mcp.WithString("source",
			mcp.Description("Limit the search to one source (default: all)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Products per source (default: 10)"),
		),
	)
	s.AddTool(searchTool, t.handleSearchProducts)

	// check_posted
	postedTool := mcp.NewTool("check_posted",
		mcp.WithDescription("Report which product ids were already posted and on which channels"),
		mcp.WithArray("ids",
			mcp.Required(),
			mcp.Description("Product ids, e.g. AF-123 or ML-MLB456"),
			mcp.WithStringItems(),
		),
	)
	s.AddTool(postedTool, t.handleCheckPosted)

	// preview_message
	previewTool := mcp.NewTool("preview_message",
		mcp.WithDescription("Render the fallback promotional message for a product on a channel"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Product name")),
		mcp.WithNumber("price", mcp.Required(), mcp.Description("Current price")),
		mcp.WithNumber("original_price", mcp.Description("Price before discount")),
		mcp.WithNumber("discount_percent", mcp.Description("Discount percent")),
		mcp.WithString("link", mcp.Required(), mcp.Description("Product link")),
		mcp.WithString("store", mcp.Description("Store name")),
		mcp.WithString("channel",
			mcp.Description("telegram, whatsapp or twitter (default: telegram)"),
			mcp.Enum("telegram", "whatsapp", "twitter"),
		),
	)
	s.AddTool(previewTool, t.handlePreviewMessage)

	// run_pipeline
	runTool := mcp.NewTool("run_pipeline",
		mcp.WithDescription("Run one fetch, dedup, generate and publish cycle"),
		mcp.WithString("keyword",
			mcp.Description("Keyword to search (default: random configured keyword)"),
		),
	)
	s.AddTool(runTool, t.handleRunPipeline)
}

func (t *tools) handleSearchProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keyword := request.GetString("keyword", "")
	if keyword == "" {
		return mcp.NewToolResultError("keyword is required"), nil
	}
	q := source.Query{Keyword: keyword, Limit: request.GetInt("limit", t.Limit)}

	var products []models.Product
	if name := request.GetString("source", ""); name != "" {
		a, err := t.Sources.Get(name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("source error: %v", err)), nil
		}
		products = a.Search(ctx, q)
	} else {
		products = t.Sources.SearchAll(ctx, q)
	}
	if products == nil {
		products = []models.Product{}
	}
	return jsonResult(products)
}

func (t *tools) handleCheckPosted(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids := request.GetStringSlice("ids", nil)
	if len(ids) == 0 {
		return mcp.NewToolResultError("ids is required"), nil
	}
	posted, err := t.Store.PostedIDs(ctx, ids)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("store error: %v", err)), nil
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = posted[id]
	}
	return jsonResult(out)
}

func (t *tools) handlePreviewMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := models.Product{
		Name:            request.GetString("name", ""),
		Price:           request.GetFloat("price", 0),
		OriginalPrice:   request.GetFloat("original_price", 0),
		DiscountPercent: request.GetInt("discount_percent", 0),
		Link:            request.GetString("link", ""),
		Store:           request.GetString("store", ""),
	}
	if p.Name == "" || p.Link == "" {
		return mcp.NewToolResultError("name and link are required"), nil
	}
	ch, ok := models.ParseChannel(request.GetString("channel", string(models.ChannelTelegram)))
	if !ok {
		return mcp.NewToolResultError("unknown channel"), nil
	}
	return mcp.NewToolResultText(t.Formatter.Text(p, ch)), nil
}

func (t *tools) handleRunPipeline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.Runner == nil {
		return mcp.NewToolResultError("pipeline is not available in this mode"), nil
	}
	sum := t.Runner.RunKeyword(ctx, request.GetString("keyword", ""))
	return jsonResult(sum)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
