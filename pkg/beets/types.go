package beets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// ID is an opaque, server-assigned record identifier.
//
// The beets web API serves integer ids; ID accepts both JSON numbers and
// strings so callers never depend on the representation.
type ID string

// String returns the identifier as it appears in request paths.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool {
	return id == ""
}

// UnmarshalJSON decodes a JSON number or string into an ID.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("beets: decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("beets: decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON encodes integer-looking ids as numbers and anything else as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Item represents a single track in the library.
//
// Only ID is guaranteed; every other attribute is display-only and may be
// absent. Attributes without a dedicated field are kept in Fields.
type Item struct {
	ID     ID      // Server-assigned identifier
	Title  string  // Track title
	Artist string  // Track artist
	Album  string  // Album name
	Length float64 // Duration in seconds

	// Fields holds every other attribute the server returned.
	// Numbers are decoded as json.Number.
	Fields map[string]any
}

// RecordID returns the item identifier.
func (i Item) RecordID() ID {
	return i.ID
}

// FieldNames returns the keys of Fields in sorted order.
func (i Item) FieldNames() []string {
	return sortedKeys(i.Fields)
}

// UnmarshalJSON decodes an item, routing unknown attributes into Fields.
func (i *Item) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("beets: decode item: %w", err)
	}

	*i = Item{}
	if err := takeID(raw, &i.ID); err != nil {
		return fmt.Errorf("beets: decode item: %w", err)
	}
	i.Title = takeString(raw, "title")
	i.Artist = takeString(raw, "artist")
	i.Album = takeString(raw, "album")
	i.Length = takeFloat(raw, "length")
	if len(raw) > 0 {
		i.Fields = raw
	}
	return nil
}

// Album represents a release grouping in the library.
type Album struct {
	ID          ID     // Server-assigned identifier
	AlbumArtist string // Album artist
	Album       string // Album name
	ArtPath     string // Server-side cover path; empty when the album has no art

	// Fields holds every other attribute the server returned.
	Fields map[string]any
}

// RecordID returns the album identifier.
func (a Album) RecordID() ID {
	return a.ID
}

// HasArt reports whether the server knows a cover for the album.
func (a Album) HasArt() bool {
	return a.ArtPath != ""
}

// UnmarshalJSON decodes an album, routing unknown attributes into Fields.
func (a *Album) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("beets: decode album: %w", err)
	}

	*a = Album{}
	if err := takeID(raw, &a.ID); err != nil {
		return fmt.Errorf("beets: decode album: %w", err)
	}
	a.AlbumArtist = takeString(raw, "albumartist")
	a.Album = takeString(raw, "album")
	a.ArtPath = takeString(raw, "artpath")
	if len(raw) > 0 {
		a.Fields = raw
	}
	return nil
}

// itemsResponse is the envelope of item/query.
type itemsResponse struct {
	Results []Item `json:"results"`
}

// albumsResponse is the envelope of album listings.
type albumsResponse struct {
	Albums []Album `json:"albums"`
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

func takeID(raw map[string]any, dst *ID) error {
	v, ok := raw["id"]
	if !ok {
		return nil
	}
	delete(raw, "id")
	switch t := v.(type) {
	case json.Number:
		*dst = ID(t.String())
	case string:
		*dst = ID(t)
	case nil:
	default:
		return fmt.Errorf("unexpected id type %T", v)
	}
	return nil
}

func takeString(raw map[string]any, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	delete(raw, key)
	return s
}

func takeFloat(raw map[string]any, key string) float64 {
	v, ok := raw[key]
	if !ok {
		return 0
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0
	}
	f, err := n.Float64()
	if err != nil {
		return 0
	}
	delete(raw, key)
	return f
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
