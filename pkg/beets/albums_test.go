package beets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAlbumService_Random(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/album" {
			t.Errorf("request path = %q, want /album", r.URL.Path)
		}
		if _, ok := r.URL.Query()["random"]; !ok {
			t.Errorf("expected random query flag, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"albums": [
			{"id": 3, "albumartist": "Radiohead", "album": "OK Computer", "artpath": "/music/ok/cover.jpg", "year": 1997},
			{"id": 4, "albumartist": "Low", "album": "Things We Lost in the Fire", "artpath": null}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	albums, err := client.Albums().Random(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(albums) != 2 {
		t.Fatalf("expected 2 albums, got %d", len(albums))
	}
	if albums[0].ID != "3" || albums[0].AlbumArtist != "Radiohead" || !albums[0].HasArt() {
		t.Errorf("unexpected album: %+v", albums[0])
	}
	if albums[1].HasArt() {
		t.Error("album with null artpath must not report art")
	}
}

func TestAlbumService_Art(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/album/3/art" {
			t.Errorf("request path = %q, want /album/3/art", r.URL.Path)
		}
		if _, ok := r.URL.Query()["b64"]; !ok {
			t.Errorf("expected b64 query flag, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte("iVBORw0KGgo=\n"))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	payload, err := client.Albums().Art(context.Background(), "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload != "iVBORw0KGgo=" {
		t.Errorf("Art() = %q, want trimmed payload", payload)
	}
}

func TestAlbumService_ArtURL(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://localhost:8337"})
	if err != nil {
		t.Fatal(err)
	}
	if got := client.Albums().ArtURL("9"); got != "http://localhost:8337/album/9/art" {
		t.Errorf("ArtURL() = %q", got)
	}
}
