package ports

// ManifestReader decodes a manifest file into raw structured data.
//
//go:generate mockgen -source=manifest.go -destination=mocks/mock_manifest.go -package=mocks
type ManifestReader interface {
	Read(path string) (map[string]any, error)
}
