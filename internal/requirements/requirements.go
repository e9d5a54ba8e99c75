// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package requirements finds the unmet, actionable requirement groups in a
// parsed degree audit.
//
// The audit parser emits one section per requirement block: a title and the
// raw text lines under it. Most sections are summaries, already satisfied,
// or structural sub-group headers. Extract keeps only the sections that still
// need something and sorts them into general-education categories and major
// course picks, mining course codes and a catalog search target for each.
//
// Extract is a pure function. It holds no state between calls and every
// pattern is a compiled package-level regexp, so it is safe for concurrent
// use.
package requirements

import (
	"fmt"
	"strings"

	"github.com/Najam-Usman/uiuc-course-planner/pkg/types"
)

const (
	keyGenEd   = "GENED"
	keyCourses = "COURSES"
)

// TakenSet holds canonical "SUBJECT NUMBER" identifiers of courses a student
// has completed or is taking. A nil TakenSet is empty.
type TakenSet map[string]struct{}

// NewTakenSet builds a TakenSet from canonical course identifiers.
func NewTakenSet(codes ...string) TakenSet {
	s := make(TakenSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether code is in the set.
func (s TakenSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// without returns the codes not in the set, or nil when none remain.
func (s TakenSet) without(codes []string) []string {
	var out []string
	for _, c := range codes {
		if !s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Extract classifies audit sections into unmet gen-ed needs and unmet
// major-course needs. Sections are processed in order and the section index
// is used for need IDs, so skipped sections still consume an index. Output
// order follows input order. A section contributes to at most one list, and
// sections with the same category, title, and need text are reported once.
func Extract(sections []types.AuditSection, taken TakenSet) types.ActionableNeeds {
	result := types.ActionableNeeds{
		GenEds:  []types.RequirementNeed{},
		Courses: []types.RequirementNeed{},
	}
	seen := make(map[string]bool)

	for i, sec := range sections {
		title := sec.Title
		if title == "" || isNoiseTitle(title) {
			continue
		}

		blob := strings.Join(sec.Lines, " ")
		allText := strings.TrimSpace(title + " " + blob)

		needText, ok := extractNeedText(allText)
		if !ok {
			continue
		}
		if satisfiedHintRe.MatchString(allText) {
			continue
		}
		if subGroupRe.MatchString(title) {
			continue
		}

		if isGenEdTitle(title) && !isGenericGenEd(title) {
			clean := stripNumbering(title)
			key := dedupKey(keyGenEd, clean, needText)
			if seen[key] {
				continue
			}
			seen[key] = true

			result.GenEds = append(result.GenEds, types.RequirementNeed{
				ID:         fmt.Sprintf("gened_%d", i),
				Title:      clean,
				NeedText:   needText,
				SearchPath: SearchPath(clean, blob, nil),
			})
			continue
		}

		selectable := selectableRe.MatchString(allText)
		codes := taken.without(ExtractCourseCodes(allText))
		if !selectable && len(codes) == 0 {
			continue
		}

		friendly := FriendlyTitle(title, blob)
		key := dedupKey(keyCourses, friendly, needText)
		if seen[key] {
			continue
		}
		seen[key] = true

		result.Courses = append(result.Courses, types.RequirementNeed{
			ID:         fmt.Sprintf("courses_%d", i),
			Title:      friendly,
			NeedText:   stripParserArtifact(needText),
			SearchPath: SearchPath(friendly, blob, codes),
			Options:    codes,
		})
	}

	return result
}

func dedupKey(category, title, needText string) string {
	return category + "|" + title + "|" + needText
}

func isNoiseTitle(title string) bool {
	return containsAny(strings.ToUpper(title), noiseTitles)
}

func isGenEdTitle(title string) bool {
	return containsAny(strings.ToUpper(title), genEdKeywords)
}

// isGenericGenEd reports whether the title is the umbrella "GENERAL
// EDUCATION" row rather than one specific category.
func isGenericGenEd(title string) bool {
	return strings.Contains(strings.ToUpper(title), "GENERAL EDUCATION") &&
		!genEdSpecificRe.MatchString(title)
}

// extractNeedText finds the first NEEDS marker and normalizes it to
// "NEEDS: <quantity> <unit>".
func extractNeedText(text string) (string, bool) {
	m := needTextRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return "NEEDS: " + strings.TrimSpace(m[1]), true
}

// stripParserArtifact removes the first " 5) " list-marker fragment the
// parser sometimes leaves inside a need line.
func stripParserArtifact(needText string) string {
	loc := parserArtifactRe.FindStringIndex(needText)
	if loc == nil {
		return strings.TrimSpace(needText)
	}
	return strings.TrimSpace(needText[:loc[0]] + needText[loc[1]:])
}
