// Package beets provides a client library for the beets web plugin API.
//
// # Overview
//
// The beets web plugin exposes a music library over HTTP: item queries,
// album listings, audio files and cover art. This package wraps the small
// subset of that API needed to browse a library and stream from it, with
// context support, structured errors and retry logic.
//
// # Quick Start
//
//	import "github.com/jfmyers9/beetle/pkg/beets"
//
//	client, err := beets.NewClient(beets.Config{
//	    BaseURL: "http://localhost:8337",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Items
//
// Queries are free text. Each whitespace-separated term becomes its own
// path segment, percent-encoded independently, so terms containing "/" or
// reserved characters survive the trip to the server:
//
//	items, err := client.Items().Query(ctx, "Clair de lune")
//	// GET {base}/item/query/Clair/de/lune
//
//	// Stream URL for a transport; no request is made.
//	src := client.Items().FileURL(items[0].ID)
//
// # Albums
//
//	albums, err := client.Albums().Random(ctx)
//	// GET {base}/album?random
//
//	payload, err := client.Albums().Art(ctx, albums[0].ID)
//	// GET {base}/album/{id}/art?b64
//
// # Error Handling
//
// Non-success responses are returned as *beets.Error:
//
//	items, err := client.Items().Query(ctx, q)
//	if err != nil {
//	    var apiErr *beets.Error
//	    if errors.As(err, &apiErr) && apiErr.Temporary() {
//	        // server trouble, try again later
//	    }
//	    if errors.Is(err, beets.ErrNotFound) {
//	        // 404
//	    }
//	}
//
// Temporary errors (5xx, 429) and network errors are retried with
// exponential backoff before they are returned.
package beets
