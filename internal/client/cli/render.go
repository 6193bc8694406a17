package cli

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/schooladmin/internal/client/controller"
	"github.com/dmitrijs2005/schooladmin/internal/client/theme"
	"github.com/dmitrijs2005/schooladmin/internal/models"
)

const secretMask = "********"

// renderPage draws the title, the table (or the load failure) and the open
// dialog, if any.
func renderPage(w io.Writer, pal theme.Palette, res models.Resource, v pageView) {
	pal.Title.Fprintln(w, res.Title)

	switch v.Phase {
	case controller.PhaseLoading:
		pal.Text.Fprintln(w, "Loading...")
		return
	case controller.PhaseFailed:
		pal.Error.Fprintf(w, "Could not load %s: %v\n", strings.ToLower(res.Title), v.Err)
		pal.Text.Fprintf(w, "Navigate to %s again to retry.\n", res.Path)
		return
	}

	if v.Filtered {
		pal.Text.Fprintf(w, "Search id=%s (%d of %d). Type 'clear' to show all.\n", v.Query, len(v.Rows), v.Total)
	}
	renderTable(w, pal, res, v.Rows)

	if v.Mode != controller.ModeClosed {
		renderDialog(w, pal, res, v.Mode, v.Draft)
	}
}

// renderTable aligns the rows with a tabwriter and colours whole lines
// afterwards, so escape codes do not disturb the column widths.
func renderTable(w io.Writer, pal theme.Palette, res models.Resource, rows []map[string]string) {
	if len(rows) == 0 {
		pal.Text.Fprintln(w, "No records.")
		return
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	cols := tableColumns(res)
	header := make([]string, 0, len(cols)+1)
	header = append(header, "ID")
	for _, f := range cols {
		header = append(header, f.Label)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range rows {
		cells := make([]string, 0, len(cols)+1)
		cells = append(cells, row["id"])
		for _, f := range cols {
			cells = append(cells, row[f.Name])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	pal.Header.Fprintln(w, lines[0])
	for _, l := range lines[1:] {
		pal.Text.Fprintln(w, l)
	}
}

// tableColumns are the fields worth listing: secrets never come back from
// the server.
func tableColumns(res models.Resource) []models.Field {
	out := make([]models.Field, 0, len(res.Fields))
	for _, f := range res.Fields {
		if f.Kind != models.KindSecret {
			out = append(out, f)
		}
	}
	return out
}

func renderDialog(w io.Writer, pal theme.Palette, res models.Resource, mode controller.Mode, draft map[string]string) {
	if mode == controller.ModeCreate {
		pal.Title.Fprintf(w, "New %s\n", res.Noun)
	} else {
		pal.Title.Fprintf(w, "Edit %s %s\n", res.Noun, draft["id"])
	}
	for _, f := range res.Fields {
		val := draft[f.Name]
		if f.Kind == models.KindSecret && val != "" {
			val = secretMask
		}
		pal.Text.Fprintf(w, "  %-18s %s\n", f.Label+" ("+f.Name+"):", val)
	}
	pal.Prompt.Fprintln(w, "Use 'set <field> <value>', then 'save' or 'cancel'.")
}

func renderNotices(w io.Writer, pal theme.Palette, notices []controller.Notice) {
	for _, n := range notices {
		c := pal.Text
		switch n.Level {
		case controller.LevelSuccess:
			c = pal.Success
		case controller.LevelWarning:
			c = pal.Warning
		case controller.LevelError:
			c = pal.Error
		}
		c.Fprintln(w, n.Text)
	}
}
