package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fulmenhq/resgen/internal/ops"
	"github.com/fulmenhq/resgen/pkg/exitcode"
	"github.com/fulmenhq/resgen/pkg/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execRoot runs a freshly built command tree so flag state never leaks
// between tests. It returns stdout; stderr is discarded.
func execRoot(t *testing.T, args []string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	reg := ops.NewRegistry()
	root := newRootCommand(reg)
	require.NoError(t, registerSubcommands(root, reg))

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--log-level", "error", "--no-color"}, args...))
	err := root.Execute()
	return out.String(), err
}

// writeProject lays out a Cordova project on disk. files maps
// slash-separated relative paths to contents; platforms are created as
// empty directories.
func writeProject(t *testing.T, platforms []string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	write := func(rel, content string) {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	write("config.xml", `<?xml version="1.0"?><widget id="io.example.app"><preference name="Orientation" value="portrait"/></widget>`)
	for _, p := range platforms {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "platforms", p), 0o755))
	}
	for rel, content := range files {
		write(rel, content)
	}
	return dir
}

func decodePlan(t *testing.T, out string) plan.Plan {
	t.Helper()
	var p plan.Plan
	require.NoError(t, json.Unmarshal([]byte(out), &p), out)
	return p
}

func TestResources_JSONPlan(t *testing.T) {
	dir := writeProject(t, []string{"android", "ios"}, map[string]string{
		"resources/icon.png":     "png",
		"resources/splash.png":   "png",
		"resources/ios/icon.psd": "psd",
	})

	out, err := execRoot(t, []string{"resources", "--project", dir, "--format", "json"})
	require.NoError(t, err)

	p := decodePlan(t, out)
	assert.Equal(t, []string{"android", "ios"}, p.Platforms)
	assert.Equal(t, "portrait", p.Orientation)
	assert.Len(t, p.Jobs, 48)
	assert.Empty(t, p.Unresolved)

	for _, j := range p.Jobs {
		switch {
		case j.Asset.Platform == "ios" && j.Asset.ResourceCategory == "icon":
			assert.Equal(t, filepath.Join(dir, "resources", "ios", "icon.psd"), j.SourcePath)
		default:
			assert.Equal(t, filepath.Join(dir, "resources", j.Asset.ResourceCategory+".png"), j.SourcePath)
		}
	}

	for _, d := range []string{"android/icon", "android/splash", "ios/icon", "ios/splash"} {
		info, statErr := os.Stat(filepath.Join(dir, "resources", filepath.FromSlash(d)))
		require.NoError(t, statErr, d)
		assert.True(t, info.IsDir())
	}
}

func TestResources_IconOnlyText(t *testing.T) {
	dir := writeProject(t, []string{"android"}, map[string]string{
		"resources/icon.png": "png",
	})

	out, err := execRoot(t, []string{"resources", "--project", dir, "--icon"})
	require.NoError(t, err)

	assert.Contains(t, out, "Categories: icon\n")
	assert.Contains(t, out, "android Icon")
	assert.Contains(t, out, "6 job(s), 0 unresolved")
	assert.NotContains(t, out, "Splash")
}

func TestResources_NoOpCreatesNothing(t *testing.T) {
	dir := writeProject(t, []string{"ios"}, map[string]string{
		"resources/icon.png":   "png",
		"resources/splash.png": "png",
	})

	out, err := execRoot(t, []string{"--no-op", "resources", "--project", dir, "--format", "json"})
	require.NoError(t, err)

	p := decodePlan(t, out)
	assert.True(t, p.NoOp)
	assert.Len(t, p.Directories, 2)
	_, statErr := os.Stat(filepath.Join(dir, "resources", "ios"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestResources_UnresolvedFails(t *testing.T) {
	dir := writeProject(t, []string{"android"}, map[string]string{
		"resources/icon.png": "png",
	})

	out, err := execRoot(t, []string{"resources", "--project", dir, "--format", "json"})
	require.Error(t, err)
	assert.Equal(t, exitcode.ValidationError, exitcode.Code(err))

	// The plan is still printed so the missing sources are visible.
	p := decodePlan(t, out)
	assert.Len(t, p.Unresolved, 12)
	assert.Len(t, p.Jobs, 18)
}

func TestResources_UnresolvedSkip(t *testing.T) {
	dir := writeProject(t, []string{"android"}, map[string]string{
		"resources/icon.png": "png",
	})

	out, err := execRoot(t, []string{"resources", "--project", dir, "--format", "json", "--unresolved", "skip"})
	require.NoError(t, err)
	assert.Len(t, decodePlan(t, out).Unresolved, 12)
}

func TestResources_ConfigFile(t *testing.T) {
	dir := writeProject(t, []string{"android"}, map[string]string{
		"resources/icon.png":         "png",
		"resources/splash.png":       "png",
		"resources/android/icon.png": "platform png",
	})
	cfgPath := filepath.Join(t.TempDir(), "resgen.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("project_dir: "+dir+"\nexclude:\n  - android/**\n"), 0o644))

	out, err := execRoot(t, []string{"resources", "--config", cfgPath, "--format", "json", "--icon"})
	require.NoError(t, err)

	for _, j := range decodePlan(t, out).Jobs {
		assert.Equal(t, filepath.Join(dir, "resources", "icon.png"), j.SourcePath)
	}
}

func TestResources_Errors(t *testing.T) {
	withAndroid := writeProject(t, []string{"android"}, map[string]string{"resources/icon.png": "png"})
	noPlatforms := writeProject(t, nil, map[string]string{"resources/icon.png": "png"})
	badManifest := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(badManifest, []byte("android:\n  icon:\n    images:\n      - name: x.png\n        width: 0\n        height: 36\n"), 0o644))

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"not a cordova project", []string{"resources", "--project", t.TempDir()}, exitcode.ValidationError},
		{"no platforms", []string{"resources", "--project", noPlatforms}, exitcode.ValidationError},
		{"bad format", []string{"resources", "--project", withAndroid, "--format", "yaml"}, exitcode.ConfigError},
		{"bad policy", []string{"resources", "--project", withAndroid, "--unresolved", "ignore"}, exitcode.ConfigError},
		{"invalid manifest", []string{"resources", "--project", withAndroid, "--manifest", badManifest}, exitcode.ConfigError},
		{"missing manifest", []string{"resources", "--project", withAndroid, "--manifest", filepath.Join(withAndroid, "nope.json")}, exitcode.ConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execRoot(t, tt.args)
			require.Error(t, err)
			assert.Equal(t, tt.code, exitcode.Code(err))
		})
	}
}

func TestPlatforms_JSON(t *testing.T) {
	dir := writeProject(t, []string{"ios", "browser"}, nil)

	out, err := execRoot(t, []string{"platforms", "--project", dir, "--format", "json"})
	require.NoError(t, err)

	var r platformsReport
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, []string{"browser", "ios"}, r.Installed)
	assert.Equal(t, []string{"android", "ios"}, r.Manifest)
	assert.Equal(t, []string{"ios"}, r.Active)
}

func TestPlatforms_TextNoneActive(t *testing.T) {
	dir := writeProject(t, nil, nil)

	out, err := execRoot(t, []string{"platforms", "--project", dir})
	require.NoError(t, err)
	assert.Contains(t, out, "android      not installed")
	assert.Contains(t, out, "cordova platform add")
}

func TestManifest_ShowBuiltIn(t *testing.T) {
	out, err := execRoot(t, []string{"manifest", "show"})
	require.NoError(t, err)
	assert.Contains(t, out, "android/icon/drawable-ldpi-icon.png")
	assert.Contains(t, out, "48 image(s)")
}

func TestManifest_Validate(t *testing.T) {
	good := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(good, []byte("web:\n  icon:\n    images:\n      - name: icon-192.png\n        width: 192\n        height: 192\n"), 0o644))

	out, err := execRoot(t, []string{"manifest", "validate", good})
	require.NoError(t, err)
	assert.Contains(t, out, "valid (1 platform(s), 1 image(s))")

	bad := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"web": {"icon": {}}}`), 0o644))
	_, err = execRoot(t, []string{"manifest", "validate", bad})
	require.Error(t, err)
	assert.Equal(t, exitcode.ConfigError, exitcode.Code(err))
}

func TestVersion_JSON(t *testing.T) {
	out, err := execRoot(t, []string{"version", "--format", "json"})
	require.NoError(t, err)

	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "dev", v["version"])
	assert.NotEmpty(t, v["go_version"])
}

func TestVersion_Extended(t *testing.T) {
	out, err := execRoot(t, []string{"version", "--extended"})
	require.NoError(t, err)
	assert.Contains(t, out, "resgen dev\n")
	assert.Contains(t, out, "embedded_schemas/manifest.schema.json")
}

func TestRootHelpGroups(t *testing.T) {
	out, err := execRoot(t, []string{"--help"})
	require.NoError(t, err)
	assert.Contains(t, out, "Resource Commands:")
	assert.Contains(t, out, "  resources")
	assert.Contains(t, out, "Support Commands:")
}

func TestRequestedCategories(t *testing.T) {
	tests := []struct {
		args     []string
		expected []string
	}{
		{nil, plan.DefaultCategories},
		{[]string{"--icon"}, []string{"icon"}},
		{[]string{"-s"}, []string{"splash"}},
		{[]string{"-i", "-s"}, plan.DefaultCategories},
	}
	for _, tt := range tests {
		cmd := newResourcesCommand()
		require.NoError(t, cmd.ParseFlags(tt.args))
		assert.Equal(t, tt.expected, requestedCategories(cmd))
	}
}
