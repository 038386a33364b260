package report

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fulmenhq/resgen/pkg/manifest"
	"github.com/fulmenhq/resgen/pkg/plan"
	"github.com/fulmenhq/resgen/pkg/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlan() *plan.Plan {
	icon := manifest.RequiredAsset{Platform: "android", ResourceCategory: "icon", Name: "drawable-ldpi-icon.png", Width: 36, Height: 36, Density: "ldpi"}
	splash := manifest.RequiredAsset{Platform: "ios", ResourceCategory: "splash", Name: "Default~iphone.png", Width: 320, Height: 480}
	return &plan.Plan{
		Project:     "/app",
		Platforms:   []string{"android", "ios"},
		Categories:  []string{"icon", "splash"},
		Orientation: "portrait",
		Jobs: []resolve.Job{
			{Asset: icon, SourcePath: "/app/resources/icon.png", DestinationPath: "/app/resources/android/icon/drawable-ldpi-icon.png"},
			{Asset: splash, DestinationPath: "/app/resources/ios/splash/Default~iphone.png"},
		},
		Unresolved: []manifest.RequiredAsset{splash},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"html", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, samplePlan(), FormatText))
	out := buf.String()

	assert.Contains(t, out, "Platforms:  android, ios")
	assert.Contains(t, out, "Orientation: portrait")
	assert.Contains(t, out, "android Icon")
	assert.Contains(t, out, "ios Splash")
	assert.Contains(t, out, "resources/icon.png")
	assert.Contains(t, out, "(unresolved)")
	assert.Contains(t, out, "2 job(s), 1 unresolved")

	// Columns line up: SIZE header starts where the size cell starts.
	var header, row string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "NAME") && header == "" {
			header = line
		}
		if strings.Contains(line, "drawable-ldpi-icon.png") {
			row = line
		}
	}
	require.NotEmpty(t, header)
	require.NotEmpty(t, row)
	assert.Equal(t, strings.Index(header, "SIZE"), strings.Index(row, "36x36"))
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, samplePlan(), FormatJSON))

	var decoded plan.Plan
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Jobs, 2)
	assert.Equal(t, "/app/resources/icon.png", decoded.Jobs[0].SourcePath)
	assert.Empty(t, decoded.Jobs[1].SourcePath)
	assert.Len(t, decoded.Unresolved, 1)
}

func TestRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, samplePlan(), FormatMarkdown))
	out := buf.String()

	assert.Contains(t, out, "# Resource generation plan")
	assert.Contains(t, out, "## android Icon")
	assert.Contains(t, out, "## ios Splash")
	assert.Contains(t, out, "| drawable-ldpi-icon.png | 36x36 | ldpi | `resources/icon.png` |")
	assert.Contains(t, out, "**unresolved**")
	assert.Contains(t, out, "2 (1 resolved, 1 unresolved)")
	assert.Contains(t, out, "Default~iphone.png")
}

func TestHandoff(t *testing.T) {
	var buf bytes.Buffer
	h := &Handoff{W: &buf, Format: FormatText}
	p := samplePlan()
	require.NoError(t, h.Generate(context.Background(), p, p.Resolved()))
	out := buf.String()
	assert.Contains(t, out, "android Icon")
	assert.NotContains(t, out, "Default~iphone.png")
	assert.NotContains(t, out, "(unresolved)")
	assert.Contains(t, out, "1 job(s), 1 unresolved")
}

func TestHandoffJSONListsHandedJobs(t *testing.T) {
	var buf bytes.Buffer
	h := &Handoff{W: &buf, Format: FormatJSON}
	p := samplePlan()
	require.NoError(t, h.Generate(context.Background(), p, p.Resolved()))

	var got plan.Plan
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Jobs, 1)
	assert.Equal(t, "drawable-ldpi-icon.png", got.Jobs[0].Asset.Name)
	assert.Len(t, got.Unresolved, 1)
	assert.Len(t, p.Jobs, 2)
}
