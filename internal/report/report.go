// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders a student's progress: the audit's headline
// numbers and the requirement needs still left to pick.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.yaml.in/yaml/v3"

	"github.com/Najam-Usman/uiuc-course-planner/pkg/types"
)

const (
	genEdHeading   = "General Education to finish"
	coursesHeading = "Major courses to pick"
	emptyMessage   = "Nothing left to pick — or the audit could not be read."
	missingGPA     = "—"
	labelWidth     = 16
)

// Progress is everything shown on the progress view.
type Progress struct {
	Meta       types.AuditMeta       `json:"meta" yaml:"meta"`
	Counters   types.AuditCounters   `json:"counters" yaml:"counters"`
	ImportedAt time.Time             `json:"imported_at,omitzero" yaml:"imported_at,omitempty"`
	Needs      types.ActionableNeeds `json:"needs" yaml:"needs"`
}

// Options controls text rendering.
type Options struct {
	// SearchBaseURL is prefixed to each need's search path to form a link.
	// Links are omitted when it is empty.
	SearchBaseURL string

	// Plain disables colour and bold even on a terminal.
	Plain bool
}

type styles struct {
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	heading lipgloss.Style
	title   lipgloss.Style
	need    lipgloss.Style
	link    lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(w io.Writer, plain bool) styles {
	if plain {
		s := lipgloss.NewStyle()
		return styles{s, s, s, s, s, s, s, s}
	}
	r := lipgloss.NewRenderer(w)
	return styles{
		header:  r.NewStyle().Bold(true),
		label:   r.NewStyle().Foreground(lipgloss.Color("245")),
		value:   r.NewStyle().Bold(true),
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A")),
		title:   r.NewStyle().Bold(true),
		need:    r.NewStyle().Foreground(lipgloss.Color("#FFC107")),
		link:    r.NewStyle().Foreground(lipgloss.Color("#2196F3")).Underline(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Render writes the progress view as text.
func Render(w io.Writer, p Progress, opts Options) error {
	st := newStyles(w, opts.Plain)
	var b strings.Builder

	if h := headerLine(p); h != "" {
		b.WriteString(st.header.Render(h))
		b.WriteString("\n\n")
	}

	c := p.Counters
	kpi := func(label, value string) {
		b.WriteString(st.label.Render(fmt.Sprintf("%-*s", labelWidth, label)))
		b.WriteString(st.value.Render(value))
		b.WriteString("\n")
	}
	kpi("Earned hours", hours(c.EarnedHours))
	kpi("Advanced hours", fmt.Sprintf("%s earned · %s in progress · %s needed",
		hours(c.AdvancedHoursEarned), hours(c.AdvancedHoursInProgress), hours(c.AdvancedHoursNeeded)))
	kpi("UIUC GPA", gpa(c.UIUCGPA))
	kpi("Major GPA", gpa(c.MajorGPA))

	if p.Needs.Empty() {
		b.WriteString("\n")
		b.WriteString(st.muted.Render(emptyMessage))
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	section := func(heading string, needs []types.RequirementNeed) {
		if len(needs) == 0 {
			return
		}
		b.WriteString("\n")
		b.WriteString(st.heading.Render(heading))
		b.WriteString("\n")
		for _, n := range needs {
			b.WriteString("  ")
			b.WriteString(st.title.Render(n.Title))
			b.WriteString("  ")
			b.WriteString(st.need.Render(n.NeedText))
			if len(n.Options) > 0 {
				b.WriteString(st.muted.Render(" · Options: " + strings.Join(n.Options, ", ")))
			}
			b.WriteString("\n")
			if link := Link(opts.SearchBaseURL, n.SearchPath); link != "" {
				b.WriteString("    ")
				b.WriteString(st.link.Render(link))
				b.WriteString("\n")
			}
		}
	}
	section(genEdHeading, p.Needs.GenEds)
	section(coursesHeading, p.Needs.Courses)

	_, err := io.WriteString(w, b.String())
	return err
}

// Link joins a catalog base URL and a need's search path. It returns ""
// when either is missing.
func Link(baseURL, searchPath string) string {
	if baseURL == "" || searchPath == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + searchPath
}

// WriteJSON writes the progress as indented JSON.
func WriteJSON(w io.Writer, p Progress) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// WriteYAML writes the progress as YAML.
func WriteYAML(w io.Writer, p Progress) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

func headerLine(p Progress) string {
	var parts []string
	if p.Meta.Program != "" {
		parts = append(parts, p.Meta.Program)
	}
	if p.Meta.Degree != "" {
		parts = append(parts, p.Meta.Degree)
	}
	if p.Meta.CatalogYear != "" {
		parts = append(parts, "Catalog "+p.Meta.CatalogYear)
	}
	if !p.ImportedAt.IsZero() {
		parts = append(parts, "Imported "+p.ImportedAt.Local().Format("2006-01-02 15:04"))
	}
	return strings.Join(parts, " · ")
}

func hours(v *float64) string {
	if v == nil {
		return "0"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func gpa(v *float64) string {
	if v == nil {
		return missingGPA
	}
	return fmt.Sprintf("%.2f", *v)
}
