package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) today(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	date := time.Now().Format("2006-01-02")

	anchor, err := h.ds.Resolve(ctx, uid, date)
	if err != nil {
		return nil, err
	}
	events, err := h.ds.DayEvents(ctx, uid, date)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(map[string]any{
		"date":     date,
		"decision": anchor,
		"schedule": events,
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
