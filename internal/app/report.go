package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/facades/internal/engine/cache"
	"go.trai.ch/facades/internal/engine/cacheservice"
	"go.trai.ch/facades/internal/engine/facade"
	"go.trai.ch/facades/internal/ui/output"
	"go.trai.ch/facades/internal/ui/style"
)

// Report describes which facade served each file of a request.
type Report struct {
	Files []FileReport       `json:"files"`
	Stats cacheservice.Stats `json:"stats"`
}

// FileReport is one resolved file.
type FileReport struct {
	Path       string   `json:"path"`
	Module     string   `json:"module"`
	Settings   string   `json:"settings"`
	Resolver   string   `json:"resolver"`
	Chain      []string `json:"chain"`
	Facade     int      `json:"facade"`
	Generation uint64   `json:"generation"`
	Digest     string   `json:"digest"`
}

func newReport(results []resolved, stats cacheservice.Stats) *Report {
	ids := make(map[*facade.Project]int)
	r := &Report{Files: make([]FileReport, 0, len(results)), Stats: stats}

	for _, res := range results {
		p := res.resolution.Project()
		id, ok := ids[p]
		if !ok {
			id = len(ids) + 1
			ids[p] = id
		}

		chain := make([]string, 0, 4)
		for _, link := range p.Chain() {
			chain = append(chain, link.ResolverDebugName())
		}

		r.Files = append(r.Files, FileReport{
			Path:       res.file.Path.String(),
			Module:     res.resolution.Module().String(),
			Settings:   res.resolution.Settings().String(),
			Resolver:   res.analysis.Resolver,
			Chain:      chain,
			Facade:     id,
			Generation: res.analysis.Generation,
			Digest:     strconv.FormatUint(res.analysis.Digest, 16),
		})
	}
	return r
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Render writes the report as a table followed by cache counters.
func (r *Report) Render(w io.Writer) error {
	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(output.ColorProfile())

	header := renderer.NewStyle().Bold(true).Foreground(style.Iris)
	faint := renderer.NewStyle().Foreground(style.Slate)
	facadeStyle := renderer.NewStyle().Foreground(style.Green)

	columns := []string{"FILE", "MODULE", "SETTINGS", "FACADE", "GEN", "RESOLVER"}
	rows := make([][]string, 0, len(r.Files))
	for _, f := range r.Files {
		rows = append(rows, []string{
			f.Path,
			f.Module,
			f.Settings,
			"#" + strconv.Itoa(f.Facade),
			strconv.FormatUint(f.Generation, 10),
			strings.Join(f.Chain, " → "),
		})
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = lipgloss.Width(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	b.WriteString(joinCells(columns, widths, func(_ int, s string) string { return header.Render(s) }))
	for _, row := range rows {
		b.WriteString(joinCells(row, widths, func(i int, s string) string {
			if i == 3 {
				return facadeStyle.Render(s)
			}
			return s
		}))
	}

	b.WriteString("\n")
	for _, line := range []struct {
		name  string
		stats cache.Stats
	}{
		{"global", r.Stats.Global},
		{"script global", r.Stats.ScriptGlobal},
		{"scripts", r.Stats.Scripts},
		{"special", r.Stats.Special},
	} {
		b.WriteString(faint.Render(fmt.Sprintf("%-14s size=%d hits=%d misses=%d evictions=%d",
			line.name, line.stats.Len, line.stats.Hits, line.stats.Misses, line.stats.Evictions)))
		b.WriteString("\n")
	}
	b.WriteString(faint.Render(fmt.Sprintf("%-14s built=%d built-ins=%d",
		"facades", r.Stats.FacadesBuilt, r.Stats.BuiltIns)))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// joinCells pads each cell to its column width. The last column is not padded.
func joinCells(cells []string, widths []int, render func(i int, s string) string) string {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(render(i, cell))
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
		}
	}
	b.WriteString("\n")
	return b.String()
}
