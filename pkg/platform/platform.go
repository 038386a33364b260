// Package platform narrows manifest platforms and required assets to what the
// project actually has installed.
package platform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fulmenhq/resgen/pkg/manifest"
)

// NoPlatformsAvailableError means none of the manifest platforms are installed
// in the project. Generation cannot proceed and the run must abort.
type NoPlatformsAvailableError struct {
	Manifest  []string
	Installed []string
}

func (e *NoPlatformsAvailableError) Error() string {
	installed := "none"
	if len(e.Installed) > 0 {
		installed = strings.Join(e.Installed, ", ")
	}
	return fmt.Sprintf("no platforms have been added: none of [%s] are installed (installed: %s); add one with `cordova platform add <platform>` and retry",
		strings.Join(e.Manifest, ", "), installed)
}

// IsNoPlatformsAvailable checks if an error is a no-platforms error
func IsNoPlatformsAvailable(err error) bool {
	var npErr *NoPlatformsAvailableError
	return errors.As(err, &npErr)
}

// Active intersects manifest platforms with installed platforms, keeping
// manifest order. An empty intersection is a *NoPlatformsAvailableError.
func Active(manifestPlatforms, installed []string) ([]string, error) {
	have := toSet(installed)
	var active []string
	for _, p := range manifestPlatforms {
		if _, ok := have[p]; ok {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return nil, &NoPlatformsAvailableError{Manifest: manifestPlatforms, Installed: installed}
	}
	return active, nil
}

// FilterAssets keeps assets whose platform is active and whose resource
// category was requested. Input order is preserved.
func FilterAssets(assets []manifest.RequiredAsset, active, categories []string) []manifest.RequiredAsset {
	platforms := toSet(active)
	wanted := toSet(categories)
	out := make([]manifest.RequiredAsset, 0, len(assets))
	for _, a := range assets {
		if _, ok := platforms[a.Platform]; !ok {
			continue
		}
		if _, ok := wanted[a.ResourceCategory]; !ok {
			continue
		}
		out = append(out, a)
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
