package assets

// Registry lists embedded assets available at runtime.
// Update this when adding/removing curated assets.

const (
	FamilyManifest = "manifest"
	FamilySchema   = "jsonschema"
	FamilyTemplate = "template"
)

type AssetInfo struct {
	Family  string // manifest, jsonschema, template
	Version string // e.g., draft-07, v1
	Path    string // embed path
}

var Registry = []AssetInfo{
	{
		Family:  FamilyManifest,
		Version: "v1",
		Path:    "embedded_manifests/resources.json",
	},
	{
		Family:  FamilySchema,
		Version: "draft-07",
		Path:    "embedded_schemas/manifest.schema.json",
	},
	{
		Family:  FamilyTemplate,
		Version: "v1",
		Path:    "embedded_templates/plan.md.hbs",
	},
}
