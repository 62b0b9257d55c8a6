package llm

import (
	"context"
	"sort"

	"github.com/veradocs/vera/internal/common"
)

// ListModels returns the model names the backing endpoint advertises,
// sorted ascending.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var payload struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := GetJSON(ctx, c.httpc, c.baseURL+"/api/tags", &payload, c.logger); err != nil {
		return nil, common.Upstream(common.ReasonLLMUnavailable, "list models failed", err)
	}
	names := make([]string, 0, len(payload.Models))
	for _, m := range payload.Models {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}
