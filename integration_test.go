//go:build integration
// +build integration

package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

const itemsJSON = `{"results": [
	{"id": 1, "title": "Clair de lune", "artist": "Claude Debussy", "album": "Suite bergamasque", "length": 301.2},
	{"id": 2, "title": "Rêverie", "artist": "Claude Debussy", "album": "Piano Works", "length": 260}
]}`

const albumsJSON = `{"albums": [
	{"id": 7, "albumartist": "Claude Debussy", "album": "Suite bergamasque", "artpath": "/music/cover.jpg"},
	{"id": 8, "albumartist": "Erik Satie", "album": "Gymnopédies", "artpath": null}
]}`

// fakeBeets serves the subset of the beets web API the commands use.
func fakeBeets(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/item/query/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(itemsJSON))
	})
	mux.HandleFunc("/album", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(albumsJSON))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func buildBinary(t testing.TB) string {
	t.Helper()
	bin := filepath.Join(t.TempDir(), "beetle_test")
	buildCmd := exec.Command("go", "build", "-o", bin, ".")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build binary: %v\n%s", err, out)
	}
	return bin
}

func run(t *testing.T, bin, server string, args ...string) string {
	t.Helper()
	home := t.TempDir()
	cmd := exec.Command(bin, args...)
	cmd.Env = append(os.Environ(),
		"HOME="+home,
		"BEETLE_SERVER_URL="+server,
		"BEETLE_HISTORY_DB="+filepath.Join(home, "history.db"),
		"BEETLE_LOGGING_LEVEL=error",
	)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("%v failed: %v", args, err)
	}
	return string(out)
}

// TestSearchCommand tests the "search" command against a fake server
func TestSearchCommand(t *testing.T) {
	bin := buildBinary(t)
	srv := fakeBeets(t)

	out := run(t, bin, srv.URL, "search", "artist:debussy")
	want := "Claude Debussy - Clair de lune\nClaude Debussy - Rêverie\n"
	if out != want {
		t.Errorf("search output = %q, want %q", out, want)
	}

	out = run(t, bin, srv.URL, "search", "--format", "{{.ID}} {{.Length}}", "debussy")
	if !strings.HasPrefix(out, "1 5:01\n2 4:20\n") {
		t.Errorf("formatted output = %q", out)
	}
}

// TestAlbumsCommand tests the "albums" command against a fake server
func TestAlbumsCommand(t *testing.T) {
	bin := buildBinary(t)
	srv := fakeBeets(t)

	out := run(t, bin, srv.URL, "albums")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "* 7") || !strings.HasSuffix(lines[0], "Claude Debussy - Suite bergamasque") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "- 8") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

// TestHistoryCommand tests that an empty history prints nothing but the total
func TestHistoryCommand(t *testing.T) {
	bin := buildBinary(t)

	out := run(t, bin, "http://127.0.0.1:1", "history")
	if out != "0 listens\n" {
		t.Errorf("history output = %q", out)
	}
}

// TestPlayCommand tests headless playback (manual test)
func TestPlayCommand(t *testing.T) {
	t.Skip("Requires mpv and a reachable beets server - run manually")

	// Manual test steps:
	// 1. Start beets: beet web
	// 2. Run: go run . play artist:debussy
	// 3. Verify each track plays in order and the command exits after the last
	// 4. Run: go run . history and verify the plays were recorded
}

// BenchmarkSearchCommand benchmarks the "search" command end to end
func BenchmarkSearchCommand(b *testing.B) {
	bin := buildBinary(b)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(itemsJSON))
	}))
	defer srv.Close()

	env := append(os.Environ(), "HOME="+b.TempDir(), "BEETLE_SERVER_URL="+srv.URL)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmd := exec.Command(bin, "search", "debussy")
		cmd.Env = env
		if err := cmd.Run(); err != nil {
			b.Fatalf("search failed: %v", err)
		}
	}
}
