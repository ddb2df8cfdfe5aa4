package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/baolabs/bao-deploy/internal/domain"
	"github.com/baolabs/bao-deploy/internal/usecase"
)

// Color styles for table format
var (
	addressStyle       = color.New(color.FgWhite)
	categoryStyle      = color.New(color.FgCyan)
	sectionHeaderStyle = color.New(color.Bold, color.FgHiWhite)
	faintStyle         = color.New(color.Faint)
)

// EntriesRenderer renders registry entry lists as formatted tables
type EntriesRenderer struct {
	out   io.Writer
	color bool
}

// NewEntriesRenderer creates a new entries renderer
func NewEntriesRenderer(out io.Writer, useColor bool) *EntriesRenderer {
	return &EntriesRenderer{out: out, color: useColor}
}

// Render renders the entry list as a table grouped by category
func (r *EntriesRenderer) Render(result *usecase.EntryListResult) error {
	if len(result.Entries) == 0 {
		fmt.Fprintln(r.out, "No deployments found")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Key", "Address", "Type", "Category", "Block"})

	for _, e := range result.Entries {
		key := e.Key
		addr := e.Address.Hex()
		cat := string(e.Category)
		if r.color {
			addr = addressStyle.Sprint(addr)
			cat = categoryStyle.Sprint(cat)
		}
		t.AppendRow(table.Row{key, addr, e.ContractType, cat, e.BlockNumber})
		if e.IsProxy() && e.Implementation != (e.Address) && e.Implementation.Big().Sign() != 0 {
			impl := "└ impl " + e.Implementation.Hex()
			if r.color {
				impl = faintStyle.Sprint(impl)
			}
			t.AppendRow(table.Row{"", impl, "", "", ""})
		}
	}
	t.Render()

	r.renderSummary(result)
	return nil
}

// renderSummary prints per-category counts below the table
func (r *EntriesRenderer) renderSummary(result *usecase.EntryListResult) {
	titler := cases.Title(language.English)

	categories := make([]string, 0, len(result.Summary.ByCategory))
	for cat := range result.Summary.ByCategory {
		categories = append(categories, string(cat))
	}
	sort.Strings(categories)

	line := fmt.Sprintf("Total: %d", result.Summary.Total)
	for _, cat := range categories {
		count := result.Summary.ByCategory[domain.Category(cat)]
		line += fmt.Sprintf("  %s: %d", titler.String(cat), count)
	}
	if r.color {
		line = faintStyle.Sprint(line)
	}
	fmt.Fprintln(r.out, line)
}
