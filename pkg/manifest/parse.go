package manifest

import (
	"fmt"
	"strings"

	"github.com/fulmenhq/resgen/internal/assets"
	"github.com/spf13/afero"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Default returns the embedded manifest covering android and ios icons and
// splash screens.
func Default() (*Manifest, error) {
	return Parse(assets.DefaultManifest)
}

// Load reads and parses a manifest file (JSON or YAML).
func Load(fsys afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a JSON or YAML manifest. The document is validated against
// the embedded manifest schema, then walked node by node so platform and
// category order survive decoding.
func Parse(data []byte) (*Manifest, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ManifestShapeError{Reason: fmt.Sprintf("decode: %v", err)}
	}
	if raw == nil {
		return nil, &ManifestShapeError{Reason: "manifest is empty"}
	}
	if err := ValidateDocument(raw); err != nil {
		return nil, err
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ManifestShapeError{Reason: fmt.Sprintf("decode: %v", err)}
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, &ManifestShapeError{Reason: "top level must map platforms to resource categories"}
	}

	m := &Manifest{Platforms: make([]Platform, 0, len(doc.Content)/2)}
	for _, e := range mappingEntries(doc) {
		p, err := decodePlatform(e.key, e.value)
		if err != nil {
			return nil, err
		}
		m.Platforms = append(m.Platforms, p)
	}
	return m, nil
}

// ValidateDocument checks a decoded manifest document against the embedded
// JSON schema. Violations are reported as a *ManifestShapeError located at
// the first offending platform/category.
func ValidateDocument(doc any) error {
	schemaLoader := gojsonschema.NewBytesLoader(assets.ManifestSchema)
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &ManifestShapeError{Reason: fmt.Sprintf("schema validation error: %v", err)}
	}
	if result.Valid() {
		return nil
	}

	var reasons []string
	for _, desc := range result.Errors() {
		reasons = append(reasons, desc.String())
	}
	shapeErr := &ManifestShapeError{Reason: strings.Join(reasons, "; ")}
	shapeErr.Platform, shapeErr.Category = locate(result.Errors()[0].Field())
	return shapeErr
}

const rootField = "(root)"

// locate splits a gojsonschema field path ("android.icon.images.0") into the
// platform and category it points at.
func locate(field string) (platform, category string) {
	if field == "" || field == rootField {
		return "", ""
	}
	parts := strings.Split(strings.TrimPrefix(field, rootField+"."), ".")
	platform = parts[0]
	if len(parts) > 1 {
		category = parts[1]
	}
	return platform, category
}

// entry is one key/value pair of a YAML mapping with aliases resolved.
type entry struct {
	key   string
	value *yaml.Node
}

// deref follows alias nodes to the node they point at.
func deref(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func isMergeKey(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Value == "<<" &&
		node.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) == 0
}

// mappingEntries lists the pairs of a mapping node in document order,
// following aliases and expanding << merge keys. Explicit keys override
// merged ones; among merged sources the first one wins.
func mappingEntries(node *yaml.Node) []entry {
	var out []entry
	index := make(map[string]int)
	put := func(key string, value *yaml.Node, override bool) {
		if i, ok := index[key]; ok {
			if override {
				out[i].value = value
			}
			return
		}
		index[key] = len(out)
		out = append(out, entry{key: key, value: value})
	}

	var merged []entry
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := deref(node.Content[i]), deref(node.Content[i+1])
		if isMergeKey(key) {
			sources := []*yaml.Node{value}
			if value.Kind == yaml.SequenceNode {
				sources = sources[:0]
				for _, item := range value.Content {
					sources = append(sources, deref(item))
				}
			}
			for _, src := range sources {
				if src.Kind == yaml.MappingNode {
					merged = append(merged, mappingEntries(src)...)
				}
			}
			continue
		}
		put(key.Value, value, true)
	}
	for _, e := range merged {
		put(e.key, e.value, false)
	}
	return out
}

func decodePlatform(name string, node *yaml.Node) (Platform, error) {
	node = deref(node)
	if node.Kind != yaml.MappingNode {
		return Platform{}, &ManifestShapeError{Platform: name, Reason: "expected a mapping of resource categories"}
	}
	entries := mappingEntries(node)
	p := Platform{Name: name, Categories: make([]Category, 0, len(entries))}
	for _, e := range entries {
		c, err := decodeCategory(name, e.key, e.value)
		if err != nil {
			return Platform{}, err
		}
		p.Categories = append(p.Categories, c)
	}
	return p, nil
}

func decodeCategory(platform, name string, node *yaml.Node) (Category, error) {
	node = deref(node)
	if node.Kind != yaml.MappingNode {
		return Category{}, &ManifestShapeError{Platform: platform, Category: name, Reason: "expected a mapping with an images list"}
	}
	c := Category{Name: name}
	for _, e := range mappingEntries(node) {
		var err error
		switch e.key {
		case "nodeName":
			c.NodeName = e.value.Value
		case "nodeAttributes":
			err = e.value.Decode(&c.NodeAttributes)
		case "images":
			err = e.value.Decode(&c.Images)
			if err == nil && c.Images == nil {
				c.Images = []Image{}
			}
		}
		if err != nil {
			return Category{}, &ManifestShapeError{Platform: platform, Category: name, Reason: fmt.Sprintf("%s: %v", e.key, err)}
		}
	}
	if c.Images == nil {
		return Category{}, &ManifestShapeError{Platform: platform, Category: name, Reason: "missing images list"}
	}
	return c, nil
}
