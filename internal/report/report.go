// Package report renders results as terminal tables, XLSX workbooks, and
// message bodies for email delivery.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sitescout/sitescout/internal/links"
	"github.com/sitescout/sitescout/internal/model"
	"github.com/sitescout/sitescout/internal/news"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// LeadsTable renders leads sorted by score.
func LeadsTable(w io.Writer, leads []model.Lead) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Name", "Score", "Velocity", "Authority", "Impact", "URL"})
	for i, l := range leads {
		t.AppendRow(table.Row{
			i + 1, l.Name,
			fmt.Sprintf("%.1f", l.Score),
			fmt.Sprintf("%.0f", l.Velocity),
			fmt.Sprintf("%.0f", l.Authority),
			fmt.Sprintf("%.0f", l.Impact),
			l.URL,
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
	})
	t.Render()
}

// ChecksTable renders uptime check results.
func ChecksTable(w io.Writer, checks []model.Check) {
	t := newTable(w)
	t.AppendHeader(table.Row{"URL", "Status", "Code", "Latency", "Error"})
	for _, c := range checks {
		code := "-"
		if c.StatusCode != 0 {
			code = fmt.Sprintf("%d", c.StatusCode)
		}
		t.AppendRow(table.Row{
			c.URL, string(c.Status), code,
			fmt.Sprintf("%dms", c.LatencyMS),
			c.Error,
		})
	}
	t.Render()
}

// DeadLinksTable renders a link hunt report.
func DeadLinksTable(w io.Writer, rep *links.Report) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Page", "Dead Link", "Status"})
	for _, page := range rep.Pages {
		for _, d := range page.DeadLinks {
			status := d.Reason
			if d.StatusCode != 0 {
				status = fmt.Sprintf("%d %s", d.StatusCode, d.Reason)
			}
			t.AppendRow(table.Row{page.URL, d.URL, status})
		}
	}
	t.Render()
	fmt.Fprintf(w, "%d pages crawled, %d links checked, %d dead\n",
		rep.PagesCrawled, rep.LinksChecked, rep.TotalDead())
}

// SnapshotsTable renders stored snapshots.
func SnapshotsTable(w io.Writer, snaps []model.Snapshot) {
	t := newTable(w)
	t.AppendHeader(table.Row{"URL", "Title", "Hash", "Fetched"})
	for _, s := range snaps {
		hash := s.ContentHash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		t.AppendRow(table.Row{s.URL, s.Title, hash, s.FetchedAt.Format(time.RFC3339)})
	}
	t.Render()
}

// WriteLeadsXLSX writes leads to an XLSX workbook.
func WriteLeadsXLSX(path string, leads []model.Lead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Name", "URL", "Velocity", "Authority", "Impact", "Score", "Notes", "Scored At"} {
		header.AddCell().SetString(h)
	}

	for _, l := range leads {
		row := sheet.AddRow()
		row.AddCell().SetString(l.Name)
		row.AddCell().SetString(l.URL)
		row.AddCell().SetFloat(l.Velocity)
		row.AddCell().SetFloat(l.Authority)
		row.AddCell().SetFloat(l.Impact)
		row.AddCell().SetFloat(l.Score)
		row.AddCell().SetString(l.Notes)
		row.AddCell().SetString(l.ScoredAt.Format(time.RFC3339))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}

// DigestEmailBody renders a news digest as a plain-text email body.
func DigestEmailBody(d *news.Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "News digest: %s\n", d.Topic)
	fmt.Fprintf(&b, "Generated %s\n\n", d.GeneratedAt.Format("2006-01-02 15:04 MST"))
	if d.Overview != "" {
		b.WriteString(d.Overview)
		b.WriteString("\n\n")
	}
	for i, a := range d.Articles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a.Title)
		if a.Summary != "" {
			fmt.Fprintf(&b, "   %s\n", a.Summary)
		}
		fmt.Fprintf(&b, "   %s\n\n", a.URL)
	}
	return b.String()
}

// ActivityEmailBody renders stored activity as a plain-text email body:
// recent watched-page snapshots, unhealthy uptime checks, and top leads.
func ActivityEmailBody(snaps []model.Snapshot, checks []model.Check, leads []model.Lead) string {
	var b strings.Builder
	b.WriteString("Site activity digest\n")
	fmt.Fprintf(&b, "Generated %s\n", time.Now().UTC().Format("2006-01-02 15:04 MST"))

	b.WriteString("\nWatched pages\n")
	if len(snaps) == 0 {
		b.WriteString("  none stored\n")
	}
	for _, s := range snaps {
		fmt.Fprintf(&b, "  %s (last fetched %s)\n", s.URL, s.FetchedAt.Format("2006-01-02 15:04"))
	}

	b.WriteString("\nUptime incidents\n")
	incidents := 0
	for _, c := range checks {
		if c.Healthy() {
			continue
		}
		incidents++
		fmt.Fprintf(&b, "  [%s] %s", c.Status, c.URL)
		if c.Error != "" {
			fmt.Fprintf(&b, ": %s", c.Error)
		}
		fmt.Fprintf(&b, " (%s)\n", c.CheckedAt.Format("2006-01-02 15:04"))
	}
	if incidents == 0 {
		b.WriteString("  none\n")
	}

	b.WriteString("\nTop leads\n")
	if len(leads) == 0 {
		b.WriteString("  none scored\n")
	}
	for i, l := range leads {
		fmt.Fprintf(&b, "  %d. %s (%.1f) %s\n", i+1, l.Name, l.Score, l.URL)
	}

	return b.String()
}

// ChangesEmailBody renders change verdicts as a plain-text email body.
func ChangesEmailBody(verdicts []model.ChangeVerdict) string {
	var b strings.Builder
	b.WriteString("Watched page changes\n\n")
	for _, v := range verdicts {
		switch {
		case v.FirstSeen:
			fmt.Fprintf(&b, "[new] %s\n  first snapshot stored\n\n", v.URL)
		case !v.Changed:
			continue
		case v.Meaningful:
			fmt.Fprintf(&b, "[changed] %s\n  %s\n\n", v.URL, v.Summary)
		default:
			fmt.Fprintf(&b, "[cosmetic] %s\n\n", v.URL)
		}
	}
	return b.String()
}
