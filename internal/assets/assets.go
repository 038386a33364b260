package assets

import (
	"embed"
	"io/fs"
)

// Curated resource manifests, schemas and report templates (embedded)

//go:embed embedded_manifests/resources.json
var DefaultManifest []byte

//go:embed embedded_schemas/manifest.schema.json
var ManifestSchema []byte

//go:embed embedded_templates
var Templates embed.FS

func GetTemplatesFS() fs.FS {
	if sub, err := fs.Sub(Templates, "embedded_templates"); err == nil {
		return sub
	}
	return Templates
}

// GetTemplate returns an embedded report template by name (e.g. "plan.md.hbs").
func GetTemplate(name string) ([]byte, error) {
	return fs.ReadFile(GetTemplatesFS(), name)
}

// GetEmbeddedAsset retrieves an embedded asset by its registry path
func GetEmbeddedAsset(path string) ([]byte, error) {
	for _, info := range Registry {
		if info.Path != path {
			continue
		}
		switch info.Family {
		case FamilyManifest:
			return DefaultManifest, nil
		case FamilySchema:
			return ManifestSchema, nil
		case FamilyTemplate:
			return fs.ReadFile(Templates, path)
		}
	}
	return nil, fs.ErrNotExist
}
