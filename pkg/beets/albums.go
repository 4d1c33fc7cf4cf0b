package beets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// AlbumService handles album and cover art operations.
type AlbumService struct {
	client *Client
}

// Random returns a random selection of albums, used for cover browsing.
//
// API: GET {base}/album?random
func (s *AlbumService) Random(ctx context.Context) ([]Album, error) {
	body, err := s.client.get(ctx, "album?random")
	if err != nil {
		return nil, err
	}

	var resp albumsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse album response: %w", err)
	}
	if resp.Albums == nil {
		resp.Albums = []Album{}
	}
	return resp.Albums, nil
}

// Art fetches the base64-encoded cover image of an album.
//
// API: GET {base}/album/{id}/art?b64
//
// The returned payload is trimmed of surrounding whitespace and is not
// decoded.
func (s *AlbumService) Art(ctx context.Context, id ID) (string, error) {
	if id.IsZero() {
		return "", fmt.Errorf("%w: empty album id", ErrInvalidConfig)
	}

	body, err := s.client.get(ctx, artPath(id)+"?b64")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// ArtURL returns the raw cover image URL of an album. No request is made.
func (s *AlbumService) ArtURL(id ID) string {
	return s.client.resolve(artPath(id))
}

func artPath(id ID) string {
	return "album/" + url.PathEscape(id.String()) + "/art"
}
