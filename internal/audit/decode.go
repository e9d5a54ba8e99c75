// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audit adapts the loosely-typed output of the external audit parser
// into validated types and runs requirement extraction over it.
//
// The parser's JSON is treated as untrusted: every field is optional, any
// field may have the wrong shape, and only malformed JSON syntax is an error.
package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"go.yaml.in/yaml/v3"
	"golang.org/x/text/unicode/norm"

	"github.com/Najam-Usman/uiuc-course-planner/pkg/types"
)

// Decode parses audit parser JSON. Fields with an unexpected shape are
// dropped and noted in Warnings rather than failing the whole document.
func Decode(data []byte) (*types.ParsedAudit, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("audit is not valid JSON")
	}

	a := &types.ParsedAudit{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		a.Warnings = append(a.Warnings, "audit document is not a JSON object")
		a.Sections = []types.AuditSection{}
		return a, nil
	}

	decodeField := func(name string, dst any) {
		raw, ok := fields[name]
		if !ok || isNull(raw) {
			return
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			a.Warnings = append(a.Warnings, fmt.Sprintf("ignoring malformed %s: %v", name, err))
		}
	}

	// Parser warnings first so decode warnings are appended after them.
	decodeField("warnings", &a.Warnings)
	decodeField("meta", &a.Meta)
	decodeField("counters", &a.Counters)
	decodeField("legend", &a.Legend)

	var dropped []string
	a.Courses, dropped = decodeCourses(fields["courses"])
	a.Warnings = append(a.Warnings, dropped...)
	a.Sections = DecodeSections(fields["sections"])

	return a, nil
}

// DecodeSections maps the raw sections array to validated sections. A
// non-array value yields no sections; a non-object entry yields an empty
// section so later entries keep their positions. Non-string titles become
// empty and non-string lines are dropped.
func DecodeSections(raw json.RawMessage) []types.AuditSection {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []types.AuditSection{}
	}

	sections := make([]types.AuditSection, len(items))
	for i, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}

		var title string
		if err := json.Unmarshal(obj["section_title"], &title); err == nil {
			sections[i].Title = normalizeTitle(title)
		}

		var lines []json.RawMessage
		if err := json.Unmarshal(obj["raw_lines"], &lines); err != nil {
			continue
		}
		for _, l := range lines {
			if isNull(l) {
				continue
			}
			var s string
			if err := json.Unmarshal(l, &s); err == nil {
				sections[i].Lines = append(sections[i].Lines, normalizeLine(s))
			}
		}
	}
	return sections
}

// courseRow shadows the fields the parser may emit as either a string or a
// number; YAML audits in particular carry unquoted course numbers.
type courseRow struct {
	types.ParsedCourse
	Subject json.RawMessage `json:"subject"`
	Number  json.RawMessage `json:"number"`
}

// decodeCourses returns the well-formed course rows and a warning for each
// row that had to be dropped.
func decodeCourses(raw json.RawMessage) ([]types.ParsedCourse, []string) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, nil
	}

	var warnings []string
	courses := make([]types.ParsedCourse, 0, len(items))
	for i, item := range items {
		var row courseRow
		if err := json.Unmarshal(item, &row); err != nil {
			warnings = append(warnings, fmt.Sprintf("ignoring malformed course %d: %v", i, err))
			continue
		}
		c := row.ParsedCourse
		c.Subject = scalarString(row.Subject)
		c.Number = scalarString(row.Number)
		courses = append(courses, c)
	}
	return courses, warnings
}

// scalarString returns a JSON string as is and a JSON number as its literal
// text. Anything else yields "".
func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Load reads a parsed audit from a .json, .yaml, or .yml file.
func Load(path string) (*types.ParsedAudit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading audit %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("parsing audit %s: %w", path, err)
		}
	}

	a, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parsing audit %s: %w", path, err)
	}
	return a, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding YAML: %w", err)
	}
	return json.Marshal(doc)
}

// normalizeLine applies NFKC so ligatures, full-width letters, and Roman
// numeral glyphs from PDF text compare equal to their ASCII spellings, and
// drops control characters.
func normalizeLine(s string) string {
	s = norm.NFKC.String(s)
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// normalizeTitle keeps surrounding whitespace: a blank title is still a
// title, and label cleanup trims later.
func normalizeTitle(s string) string {
	return normalizeLine(s)
}
