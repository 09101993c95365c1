// Package export dumps a loaded fixture as JSON Lines plus a manifest to a
// directory or an S3 bucket.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/holocron/internal/catalog"
	"github.com/mesh-intelligence/holocron/pkg/types"
)

// Object names written by Export. The manifest is written last so its
// presence marks a complete export.
const (
	MoviesFile     = "movies.jsonl"
	CharactersFile = "characters.jsonl"
	ManifestFile   = "manifest.json"
)

// Sink stores named export objects.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) error
}

// Manifest describes one export.
type Manifest struct {
	ID         string        `json:"id"`
	Variant    types.Variant `json:"variant"`
	Movies     int           `json:"movies"`
	Characters int           `json:"characters"`
	Files      []string      `json:"files"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Exporter reads through a catalog. Now defaults to time.Now.
type Exporter struct {
	Catalog *catalog.Catalog
	Now     func() time.Time
}

// Export writes movies, characters and the manifest to sink.
func (e *Exporter) Export(ctx context.Context, sink Sink) (Manifest, error) {
	movies, err := e.Catalog.Movies(ctx)
	if err != nil {
		return Manifest{}, err
	}
	characters, err := e.Catalog.Characters(ctx, catalog.CharacterFilter{})
	if err != nil {
		return Manifest{}, err
	}
	if err := checkRefs(movies, characters); err != nil {
		return Manifest{}, err
	}

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	m := Manifest{
		ID:         uuid.Must(uuid.NewV7()).String(),
		Variant:    e.Catalog.Variant(),
		Movies:     len(movies),
		Characters: len(characters),
		Files:      []string{MoviesFile, CharactersFile},
		CreatedAt:  now().UTC(),
	}

	data, err := encodeJSONL(movies)
	if err != nil {
		return m, err
	}
	if err := sink.Put(ctx, MoviesFile, data); err != nil {
		return m, fmt.Errorf("writing %s: %w", MoviesFile, err)
	}
	if data, err = encodeJSONL(characters); err != nil {
		return m, err
	}
	if err := sink.Put(ctx, CharactersFile, data); err != nil {
		return m, fmt.Errorf("writing %s: %w", CharactersFile, err)
	}

	manifest, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return m, fmt.Errorf("encoding manifest: %w", err)
	}
	if err := sink.Put(ctx, ManifestFile, append(manifest, '\n')); err != nil {
		return m, fmt.Errorf("writing %s: %w", ManifestFile, err)
	}
	return m, nil
}

// checkRefs refuses an export whose characters point at movies it does not
// contain.
func checkRefs(movies []types.Movie, characters []types.Character) error {
	ids := make(map[int64]bool, len(movies))
	for _, m := range movies {
		ids[m.ID] = true
	}
	for _, c := range characters {
		for _, ref := range c.MovieRefs() {
			if !ids[ref] {
				return fmt.Errorf("%w: %s (id %d) -> movie %d", types.ErrDanglingReference, c.Name, c.ID, ref)
			}
		}
	}
	return nil
}

func encodeJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("encoding record: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// ContentType returns the media type an object name is stored with.
func ContentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".jsonl"):
		return "application/x-ndjson"
	case strings.HasSuffix(name, ".json"):
		return "application/json"
	}
	return "application/octet-stream"
}
