// Package manifest reads package.json files into raw key/value data.
package manifest

import (
	"bytes"
	"encoding/json"
	"os"

	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/monorun/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ManifestReader = (*Reader)(nil)

// Reader implements ports.ManifestReader for JSON manifests.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read decodes the manifest at path. The top level must be a JSON object.
func (r *Reader) Read(path string) (map[string]any, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from workspace glob expansion
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestParse.Error()), "path", path)
	}

	// A UTF-8 BOM is valid in manifests written by some editors.
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestParse.Error()), "path", path)
	}
	if raw == nil {
		return nil, zerr.With(domain.ErrManifestInvalid, "path", path)
	}

	return raw, nil
}
