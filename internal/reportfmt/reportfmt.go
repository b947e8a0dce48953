// Package reportfmt renders a clonewatch run's results as a colorized
// terminal table, JSON, or TOON, subscribing directly to the driver's
// lifecycle events rather than waiting for a finished Result.
package reportfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	toon "github.com/toon-format/toon-go"

	"github.com/clonewatch/clonewatch/pkg/clone"
	"github.com/clonewatch/clonewatch/pkg/stats"
)

// Format selects a reporter's rendering.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatTOON  Format = "toon"
)

// ParseFormat converts a string to Format, defaulting to table.
func ParseFormat(s string) Format {
	switch s {
	case "json":
		return FormatJSON
	case "toon":
		return FormatTOON
	default:
		return FormatTable
	}
}

// runSummary is the JSON/TOON-serializable shape of a finished run.
type runSummary struct {
	Clones       []clone.Clone               `json:"clones"`
	Total        clone.FormatStat            `json:"total"`
	ByFormat     map[string]clone.FormatStat `json:"byFormat"`
	Distribution stats.Distribution          `json:"distribution"`
}

// Reporter collects every CLONE_FOUND event as a clone.Subscriber and
// renders the accumulated result once the driver signals completion via
// WaitForCompletion.
type Reporter struct {
	clone.BaseSubscriber
	format  Format
	writer  io.Writer
	colored bool
	stat    *clone.Statistic
	clones  []clone.Clone
}

// New builds a Reporter that writes format-rendered output to w once the
// run completes. stat supplies the totals until an END event arrives;
// from then on the reporter reads the Statistic carried by END, which is
// the one the driver is populating.
func New(format Format, w io.Writer, colored bool, stat *clone.Statistic) *Reporter {
	return &Reporter{format: format, writer: w, colored: colored, stat: stat}
}

func (r *Reporter) OnCloneFound(e clone.Event) {
	r.clones = append(r.clones, e.Clone)
}

func (r *Reporter) OnEnd(e clone.Event) {
	if e.Stat != nil {
		r.stat = e.Stat
	}
}

// WaitForCompletion renders the accumulated clones and final statistics.
// The driver calls this after every file has been processed and before
// Run returns (§6 "reporter collaborator").
func (r *Reporter) WaitForCompletion() error {
	summary := runSummary{
		Clones:       r.clones,
		Total:        r.stat.Total,
		ByFormat:     formatsAsStrings(r.stat.ByFormat),
		Distribution: stats.Summarize(r.stat),
	}

	switch r.format {
	case FormatJSON:
		return r.renderJSON(summary)
	case FormatTOON:
		return r.renderTOON(summary)
	default:
		return r.renderTable(summary)
	}
}

func formatsAsStrings(byFormat map[clone.Format]*clone.FormatStat) map[string]clone.FormatStat {
	out := make(map[string]clone.FormatStat, len(byFormat))
	for format, fs := range byFormat {
		out[string(format)] = *fs
	}
	return out
}

func (r *Reporter) renderJSON(summary runSummary) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func (r *Reporter) renderTOON(summary runSummary) error {
	out, err := toon.Marshal(summary, toon.WithIndent(2))
	if err != nil {
		return fmt.Errorf("marshal toon report: %w", err)
	}
	_, err = r.writer.Write([]byte(out))
	return err
}

func (r *Reporter) renderTable(summary runSummary) error {
	if r.colored {
		color.New(color.Bold).Fprintln(r.writer, "clonewatch report")
	} else {
		fmt.Fprintln(r.writer, "clonewatch report")
	}
	fmt.Fprintln(r.writer)

	formats := make([]string, 0, len(summary.ByFormat))
	for f := range summary.ByFormat {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	table := tablewriter.NewTable(r.writer,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
			Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
		}),
	)
	table.Header([]string{"Format", "Sources", "Clones", "Duplicated Lines", "Percentage"})
	for _, f := range formats {
		fs := summary.ByFormat[f]
		table.Append([]string{
			f,
			fmt.Sprintf("%d", fs.Sources),
			fmt.Sprintf("%d", fs.Clones),
			fmt.Sprintf("%d", fs.DuplicatedLines),
			fmt.Sprintf("%.2f%%", fs.Percentage),
		})
	}
	table.Footer(
		"TOTAL",
		fmt.Sprintf("%d", summary.Total.Sources),
		fmt.Sprintf("%d", summary.Total.Clones),
		fmt.Sprintf("%d", summary.Total.DuplicatedLines),
		fmt.Sprintf("%.2f%%", summary.Total.Percentage),
	)
	table.Render()
	return nil
}
