package dispatch

import (
	"context"
	"fmt"

	"dispatchboard/infrastructure/apiclient"
)

const (
	boardListPath   = "/dispatch/board/list"
	factoryInfoPath = "/factory/info"
)

// Client exposes the two typed operations the board needs from the
// dispatch backend.
type Client struct {
	api *apiclient.Client
}

func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

// FetchDispatchBoard requests one page of dispatch records.
func (c *Client) FetchDispatchBoard(ctx context.Context, query BoardQuery) (BoardPage, error) {
	var page BoardPage
	if err := c.api.Post(ctx, boardListPath, query, &page); err != nil {
		return BoardPage{}, fmt.Errorf("fetch dispatch board: %w", err)
	}
	return page, nil
}

// GetFactoryInfo looks up the display identity for a factory code.
func (c *Client) GetFactoryInfo(ctx context.Context, factoryCode string) (FactoryInfo, error) {
	var info FactoryInfo
	params := map[string]string{"factoryCode": factoryCode}
	if err := c.api.Get(ctx, factoryInfoPath, params, &info); err != nil {
		return FactoryInfo{}, fmt.Errorf("get factory info: %w", err)
	}
	return info, nil
}
