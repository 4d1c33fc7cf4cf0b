package beets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// ItemService handles item (track) operations.
type ItemService struct {
	client *Client
}

// QueryPath returns the request path for a free-text query.
//
// Each whitespace-separated term is percent-encoded on its own and becomes
// one path segment. An empty query yields "item/query/".
func QueryPath(query string) string {
	terms := strings.Fields(query)
	for i, term := range terms {
		terms[i] = url.PathEscape(term)
	}
	return "item/query/" + strings.Join(terms, "/")
}

// Query searches the library for items matching query.
//
// API: GET {base}/item/query/{term}/{term}/...
func (s *ItemService) Query(ctx context.Context, query string) ([]Item, error) {
	body, err := s.client.get(ctx, QueryPath(query))
	if err != nil {
		return nil, err
	}

	var resp itemsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse query response: %w", err)
	}
	if resp.Results == nil {
		resp.Results = []Item{}
	}
	return resp.Results, nil
}

// Get fetches a single item by id.
//
// API: GET {base}/item/{id}
func (s *ItemService) Get(ctx context.Context, id ID) (*Item, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("%w: empty item id", ErrInvalidConfig)
	}

	body, err := s.client.get(ctx, "item/"+url.PathEscape(id.String()))
	if err != nil {
		return nil, err
	}

	var item Item
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("failed to parse item response: %w", err)
	}
	return &item, nil
}

// FileURL returns the audio stream URL for an item. No request is made.
func (s *ItemService) FileURL(id ID) string {
	return s.client.resolve("item/" + url.PathEscape(id.String()) + "/file")
}
