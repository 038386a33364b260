// Package configxml reads the settings resgen needs from a Cordova config.xml.
// Only reading happens here; writing resource references back is left to the
// generator.
package configxml

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// ErrNoWidget is returned when the document has no <widget> root.
var ErrNoWidget = errors.New("config.xml has no <widget> root element")

// Preference is a <preference name="..." value="..."/> entry.
type Preference struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Platform string `json:"platform,omitempty"`
}

// Preferences returns widget-level preferences followed by platform-scoped
// ones (<platform name="ios"><preference .../></platform>), in document order.
func Preferences(data []byte) ([]Preference, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse config.xml: %w", err)
	}
	widget := doc.SelectElement("widget")
	if widget == nil {
		return nil, ErrNoWidget
	}

	var prefs []Preference
	for _, el := range widget.SelectElements("preference") {
		prefs = append(prefs, toPreference(el, ""))
	}
	for _, platform := range widget.SelectElements("platform") {
		name := platform.SelectAttrValue("name", "")
		for _, el := range platform.SelectElements("preference") {
			prefs = append(prefs, toPreference(el, name))
		}
	}
	return prefs, nil
}

// Orientation returns the widget-level Orientation preference, or "" when
// the project does not set one. Preference names match case-insensitively.
func Orientation(data []byte) (string, error) {
	prefs, err := Preferences(data)
	if err != nil {
		return "", err
	}
	for _, p := range prefs {
		if p.Platform == "" && strings.EqualFold(p.Name, "orientation") {
			return p.Value, nil
		}
	}
	return "", nil
}

func toPreference(el *etree.Element, platform string) Preference {
	return Preference{
		Name:     el.SelectAttrValue("name", ""),
		Value:    el.SelectAttrValue("value", ""),
		Platform: platform,
	}
}
