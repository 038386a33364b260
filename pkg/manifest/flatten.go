package manifest

import "slices"

// Flatten turns the manifest tree into one RequiredAsset per image, ordered by
// platform, then category, then image. Node metadata is copied down from the
// enclosing category. A platform without categories or a category without an
// images list stops the traversal with a *ManifestShapeError.
func Flatten(m *Manifest) ([]RequiredAsset, error) {
	if m == nil {
		return nil, &ManifestShapeError{Reason: "manifest is nil"}
	}

	var assets []RequiredAsset
	for _, p := range m.Platforms {
		if p.Categories == nil {
			return nil, &ManifestShapeError{Platform: p.Name, Reason: "missing resource categories"}
		}
		for _, c := range p.Categories {
			if c.Images == nil {
				return nil, &ManifestShapeError{Platform: p.Name, Category: c.Name, Reason: "missing images list"}
			}
			for _, img := range c.Images {
				assets = append(assets, RequiredAsset{
					Platform:         p.Name,
					ResourceCategory: c.Name,
					Name:             img.Name,
					Width:            img.Width,
					Height:           img.Height,
					Density:          img.Density,
					NodeName:         c.NodeName,
					NodeAttributes:   slices.Clone(c.NodeAttributes),
				})
			}
		}
	}
	return assets, nil
}
