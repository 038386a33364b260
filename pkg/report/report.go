// Package report renders plans for humans and machines.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aymerick/raymond"
	"github.com/fulmenhq/resgen/internal/assets"
	"github.com/fulmenhq/resgen/pkg/plan"
	"github.com/fulmenhq/resgen/pkg/resolve"
	"github.com/fulmenhq/resgen/pkg/safeio"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Format selects an output renderer.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected text|json|markdown)", s)
	}
}

// Render writes p to w in the given format.
func Render(w io.Writer, p *plan.Plan, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case FormatMarkdown:
		return renderMarkdown(w, p)
	default:
		return renderText(w, p)
	}
}

// Handoff is the generator used by the CLI: it hands the job list over by
// rendering the plan.
type Handoff struct {
	W      io.Writer
	Format Format
}

// Generate implements plan.Generator. Only the handed-over jobs are listed;
// unresolved assets still appear in the summary.
func (h *Handoff) Generate(_ context.Context, p *plan.Plan, jobs []resolve.Job) error {
	handed := *p
	handed.Jobs = jobs
	return Render(h.W, &handed, h.Format)
}

// group is the jobs of one platform/category pair.
type group struct {
	Platform string
	Category string
	Jobs     []resolve.Job
}

func (g group) title() string {
	return fmt.Sprintf("%s %s", g.Platform, cases.Title(language.Und).String(g.Category))
}

// groupJobs buckets jobs by platform and category, keeping first-seen order.
func groupJobs(jobs []resolve.Job) []group {
	var groups []group
	index := make(map[string]int)
	for _, j := range jobs {
		key := j.Asset.Platform + "/" + j.Asset.ResourceCategory
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, group{Platform: j.Asset.Platform, Category: j.Asset.ResourceCategory})
		}
		groups[i].Jobs = append(groups[i].Jobs, j)
	}
	return groups
}

func displayPath(p *plan.Plan, path string) string {
	if path == "" || p.Project == "" {
		return path
	}
	return safeio.ToSlashRel(p.Project, path)
}

func renderText(w io.Writer, p *plan.Plan) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Project:    %s\n", p.Project)
	fmt.Fprintf(&b, "Platforms:  %s\n", strings.Join(p.Platforms, ", "))
	fmt.Fprintf(&b, "Categories: %s\n", strings.Join(p.Categories, ", "))
	if p.Orientation != "" {
		fmt.Fprintf(&b, "Orientation: %s\n", p.Orientation)
	}
	if p.NoOp {
		b.WriteString("Mode:       no-op (directories not created)\n")
	}

	for _, g := range groupJobs(p.Jobs) {
		rows := [][]string{{"NAME", "SIZE", "DENSITY", "SOURCE"}}
		for _, j := range g.Jobs {
			density := j.Asset.Density
			if density == "" {
				density = "-"
			}
			src := displayPath(p, j.SourcePath)
			if src == "" {
				src = "(unresolved)"
			}
			rows = append(rows, []string{j.Asset.Name, fmt.Sprintf("%dx%d", j.Asset.Width, j.Asset.Height), density, src})
		}
		fmt.Fprintf(&b, "\n%s\n", g.title())
		writeTable(&b, rows)
	}

	fmt.Fprintf(&b, "\n%d job(s), %d unresolved\n", len(p.Jobs), len(p.Unresolved))
	_, err := io.WriteString(w, b.String())
	return err
}

// writeTable pads every column to its widest cell using display width, so
// names with wide runes still line up.
func writeTable(b *strings.Builder, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}
	for _, row := range rows {
		b.WriteString("  ")
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
}

var (
	markdownOnce sync.Once
	markdownTpl  *raymond.Template
	markdownErr  error
)

func markdownTemplate() (*raymond.Template, error) {
	markdownOnce.Do(func() {
		src, err := assets.GetTemplate("plan.md.hbs")
		if err != nil {
			markdownErr = fmt.Errorf("load markdown template: %w", err)
			return
		}
		markdownTpl, markdownErr = raymond.Parse(string(src))
	})
	return markdownTpl, markdownErr
}

func renderMarkdown(w io.Writer, p *plan.Plan) error {
	tpl, err := markdownTemplate()
	if err != nil {
		return err
	}

	resolved := 0
	var groups []map[string]any
	for _, g := range groupJobs(p.Jobs) {
		var jobs []map[string]any
		for _, j := range g.Jobs {
			if j.Resolved() {
				resolved++
			}
			jobs = append(jobs, map[string]any{
				"name":        j.Asset.Name,
				"width":       j.Asset.Width,
				"height":      j.Asset.Height,
				"density":     j.Asset.Density,
				"source":      displayPath(p, j.SourcePath),
				"destination": displayPath(p, j.DestinationPath),
			})
		}
		groups = append(groups, map[string]any{"title": g.title(), "jobs": jobs})
	}

	out, err := tpl.Exec(map[string]any{
		"project":     p.Project,
		"platforms":   p.Platforms,
		"categories":  p.Categories,
		"orientation": p.Orientation,
		"total":       len(p.Jobs),
		"resolved":    resolved,
		"unresolved":  len(p.Jobs) - resolved,
		"groups":      groups,
	})
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
