/*
Copyright © 2025 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cowdogmoo/archgen/generator"
	"github.com/cowdogmoo/archgen/templates"
	"github.com/fatih/color"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// OutputFormatter prints command results as a table or as JSON.
type OutputFormatter struct {
	format string
	out    io.Writer
}

// NewOutputFormatter creates a formatter writing to stdout.
func NewOutputFormatter(format string) *OutputFormatter {
	if format == "" || format == "text" {
		format = FormatTable
	}
	return &OutputFormatter{format: format, out: os.Stdout}
}

// WithWriter redirects the output to w.
func (f *OutputFormatter) WithWriter(w io.Writer) *OutputFormatter {
	f.out = w
	return f
}

func (f *OutputFormatter) check() error {
	switch f.format {
	case FormatTable, FormatJSON:
		return nil
	}
	return fmt.Errorf("unsupported output format: %s (expected table or json)", f.format)
}

func (f *OutputFormatter) writeJSON(v any) error {
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func statusColor(s generator.Status) func(format string, a ...any) string {
	switch s {
	case generator.StatusCreated, generator.StatusMerged:
		return color.GreenString
	case generator.StatusMergedWithConflicts, generator.StatusOverwritten:
		return color.YellowString
	case generator.StatusFailed:
		return color.RedString
	}
	return color.HiBlackString
}

// DisplayResult prints the artifacts of a generation, then its notes and
// conflicts.
func (f *OutputFormatter) DisplayResult(res *generator.Result, dryRun bool) error {
	if err := f.check(); err != nil {
		return err
	}
	if f.format == FormatJSON {
		return f.writeJSON(res)
	}

	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STATUS\tPATH\tKIND")
	counts := map[generator.Status]int{}
	for _, a := range res.Artifacts {
		counts[a.Status]++
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", statusColor(a.Status)("%s", a.Status), a.Path, a.Kind)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, a := range res.Artifacts {
		for _, note := range a.Notes {
			_, _ = fmt.Fprintf(f.out, "note: %s: %s\n", a.Path, note)
		}
		if a.Err != nil {
			_, _ = fmt.Fprintf(f.out, "%s %s: %v\n", color.RedString("error:"), a.Path, a.Err)
		}
	}
	for _, c := range res.Conflicts {
		_, _ = fmt.Fprintf(f.out, "%s %s: %s kept %q, template wants %q\n", color.YellowString("conflict:"), c.Path, c.Key, c.Old, c.New)
	}

	var summary []string
	for _, s := range []generator.Status{
		generator.StatusCreated, generator.StatusMerged, generator.StatusMergedWithConflicts,
		generator.StatusOverwritten, generator.StatusSkippedExisting, generator.StatusSkippedIdentical,
		generator.StatusFailed,
	} {
		if n := counts[s]; n > 0 {
			summary = append(summary, fmt.Sprintf("%d %s", n, s))
		}
	}
	prefix := "Total"
	if dryRun {
		prefix = "Dry run"
	}
	_, _ = fmt.Fprintf(f.out, "\n%s: %d artifacts (%s)\n", prefix, len(res.Artifacts), strings.Join(summary, ", "))
	return nil
}

// DisplayValidationReport prints the problems of a pack.
func (f *OutputFormatter) DisplayValidationReport(report *generator.ValidationReport) error {
	if err := f.check(); err != nil {
		return err
	}
	if f.format == FormatJSON {
		return f.writeJSON(report)
	}
	if report.OK() {
		_, _ = fmt.Fprintf(f.out, "%s pack %s is valid\n", color.GreenString("ok:"), report.Pack)
		return nil
	}
	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TEMPLATE\tPROBLEM")
	for _, p := range report.Problems {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", p.TemplatePath, p.Problem)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(f.out, "\nTotal problems: %d\n", len(report.Problems))
	return nil
}

type sourceInfo struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Location string `json:"location"`
	Ref      string `json:"ref,omitempty"`
}

// DisplaySources prints configured template sources. Credentials in URLs
// are redacted.
func (f *OutputFormatter) DisplaySources(sources []templates.NamedSource) error {
	if err := f.check(); err != nil {
		return err
	}
	infos := make([]sourceInfo, 0, len(sources))
	for _, s := range sources {
		info := sourceInfo{Name: s.Name, Kind: s.Source.Kind().String(), Location: templates.Source{Location: s.Source.Location}.String()}
		if !s.Source.IsLocal() {
			info.Ref = s.Source.Ref
		}
		infos = append(infos, info)
	}
	if f.format == FormatJSON {
		return f.writeJSON(infos)
	}

	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tKIND\tLOCATION\tREF")
	for _, s := range infos {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, s.Kind, s.Location, s.Ref)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(f.out, "\nTotal sources: %d\n", len(infos))
	return nil
}

type entryInfo struct {
	Path      string   `json:"path"`
	Kind      string   `json:"kind"`
	Artifact  string   `json:"artifact"`
	Variables []string `json:"variables,omitempty"`
	Digest    string   `json:"digest"`
}

// DisplayEntries prints the entries of a pack.
func (f *OutputFormatter) DisplayEntries(pack *templates.Pack, entries []*templates.Entry) error {
	if err := f.check(); err != nil {
		return err
	}
	infos := make([]entryInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, entryInfo{
			Path:      e.Path(),
			Kind:      string(e.Kind()),
			Artifact:  string(e.Artifact()),
			Variables: e.Variables(),
			Digest:    e.Digest().String(),
		})
	}
	if f.format == FormatJSON {
		return f.writeJSON(infos)
	}

	if m := pack.Manifest(); m != nil {
		title := "Pack: " + m.Name
		if m.Version != "" {
			title += " " + m.Version
		}
		_, _ = fmt.Fprintf(f.out, "%s\n%s\n", title, strings.Repeat("=", len(title)))
		if m.Description != "" {
			_, _ = fmt.Fprintf(f.out, "%s\n", m.Description)
		}
		_, _ = fmt.Fprintf(f.out, "Source: %s (%s)\n\n", pack.Source(), pack.State())
	}
	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PATH\tKIND\tARTIFACT\tVARIABLES")
	for _, e := range infos {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Path, e.Kind, e.Artifact, strings.Join(e.Variables, ", "))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(f.out, "\nTotal templates: %d\n", len(infos))
	return nil
}
