// Package manifest models the declarative resource manifest: which output
// images every platform needs, grouped by resource category.
package manifest

// Manifest is an ordered platform → category → image-set tree. Slice order
// mirrors key order in the source document and is preserved by Flatten.
type Manifest struct {
	Platforms []Platform `json:"platforms"`
}

// Platform groups the resource categories required by one build target.
type Platform struct {
	Name       string     `json:"name"`
	Categories []Category `json:"categories"`
}

// Category is one resource class (icon, splash) within a platform.
// NodeName and NodeAttributes describe the config.xml element that
// references generated images; they are carried through untouched.
type Category struct {
	Name           string   `json:"name"`
	NodeName       string   `json:"node_name,omitempty"`
	NodeAttributes []string `json:"node_attributes,omitempty"`
	Images         []Image  `json:"images"`
}

// Image is a single required output image.
type Image struct {
	Name    string `json:"name" yaml:"name"`
	Width   int    `json:"width" yaml:"width"`
	Height  int    `json:"height" yaml:"height"`
	Density string `json:"density,omitempty" yaml:"density"`
}

// RequiredAsset is one flattened leaf of the manifest.
type RequiredAsset struct {
	Platform         string   `json:"platform"`
	ResourceCategory string   `json:"resource_category"`
	Name             string   `json:"name"`
	Width            int      `json:"width"`
	Height           int      `json:"height"`
	Density          string   `json:"density,omitempty"`
	NodeName         string   `json:"node_name,omitempty"`
	NodeAttributes   []string `json:"node_attributes,omitempty"`
}

// Key returns the asset identity as platform/category/name.
func (a RequiredAsset) Key() string {
	return a.Platform + "/" + a.ResourceCategory + "/" + a.Name
}

// PlatformNames returns platform identifiers in manifest order.
func (m *Manifest) PlatformNames() []string {
	names := make([]string, 0, len(m.Platforms))
	for _, p := range m.Platforms {
		names = append(names, p.Name)
	}
	return names
}

// CategoryNames returns every distinct category name in first-seen order.
func (m *Manifest) CategoryNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, p := range m.Platforms {
		for _, c := range p.Categories {
			if _, ok := seen[c.Name]; ok {
				continue
			}
			seen[c.Name] = struct{}{}
			names = append(names, c.Name)
		}
	}
	return names
}
