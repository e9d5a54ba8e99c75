// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package requirements

import (
	"regexp"
	"strings"
)

// noiseTitles are summary and administrative rows printed on every audit.
// A section whose title contains any of them is never actionable.
var noiseTitles = []string{
	"TOTAL HOURS",
	"SUMMARY OF COURSES",
	"CREDIT/NO CREDIT",
	"HOURS IN PROGRESS",
	"EARNED HOURS",
	"0.0 GPA HOURS",
	"2.000 GPA REQUIRED",
	"YOUR GRADE POINT AVERAGE",
	"COMBINED GPA",
	"RESIDENCY REQUIREMENT",
	"STATISTICS AND COMPUTER SCIENCE MAJOR",
}

// genEdKeywords mark a title as a general-education category.
var genEdKeywords = []string{
	"GENERAL EDUCATION",
	"HUMANITIES AND THE ARTS",
	"SOCIAL AND BEHAVIORAL",
	"NATURAL SCIENCES AND TECHNOLOGY",
	"CULTURAL STUDIES",
	"COMPOSITION",
	"QUANTITATIVE REASONING",
	"WESTERN/COMPARATIVE",
	"NON-WESTERN",
	"U.S. MINORITY",
}

// patternRule maps a regular expression to a result value.
type patternRule struct {
	pattern *regexp.Regexp
	value   string
}

// phraseRule maps a set of alternative substrings to a result value.
type phraseRule struct {
	phrases []string
	value   string
}

// courseGroupTitles are checked in order against the upper-cased title and
// body of a course-pick section.
var courseGroupTitles = []patternRule{
	{regexp.MustCompile(`(?i)REQUIRED COMPUTER SCIENCE FOUNDATION`), "CS Foundation"},
	{regexp.MustCompile(`(?i)ONE OF THE FOLLOWING COMBINATIONS`), "Systems pair"},
	{regexp.MustCompile(`(?i)REQUIRED STATISTICS COURSES`), "Required Statistics Core"},
	{regexp.MustCompile(`(?i)STATISTICAL APPLICATION ELECTIVE`), "Statistical Application Elective"},
	{regexp.MustCompile(`(?i)COMPUTATIONAL APPLICATION ELECTIVE`), "Computational Application Elective"},
	{regexp.MustCompile(`(?i)SELECT FROM:\s*CS\s+222.*357.*374.*421`), "CS Core Options"},
	{regexp.MustCompile(`(?i)SELECT FROM:\s*STAT\s+410.*425.*426`), "Statistics Core Electives"},
	{regexp.MustCompile(`(?i)SELECT FROM:\s*CS\s+410.*482`), "Upper-level CS Elective"},
}

// genEdSearchPaths are checked in order. Where one phrase contains another
// ("QUANTITATIVE REASONING II" and "QUANTITATIVE REASONING I") the longer
// one must come first.
var genEdSearchPaths = []phraseRule{
	{[]string{"ADVANCED COMPOSITION"}, "/search?gened=ACP"},
	{[]string{"COMPOSITION I"}, "/search?gened=COMP1"},
	{[]string{"QUANTITATIVE REASONING II", "QR2"}, "/search?gened=QR2"},
	{[]string{"QUANTITATIVE REASONING I", "QR1"}, "/search?gened=QR1"},
	{[]string{"HUMANITIES AND THE ARTS"}, "/search?gened=HUM"},
	{[]string{"SOCIAL AND BEHAVIORAL"}, "/search?gened=SB"},
	{[]string{"NATURAL SCIENCES AND TECHNOLOGY"}, "/search?gened=NAT"},
	{[]string{"WESTERN/COMPARATIVE"}, "/search?gened=WEST"},
	{[]string{"NON-WESTERN"}, "/search?gened=NW"},
	{[]string{"U.S. MINORITY"}, "/search?gened=US"},
}

// advancedLevelSearch applies when nothing more specific matched.
var advancedLevelSearch = phraseRule{
	phrases: []string{"300 OR 400", "ADVANCED HOUR"},
	value:   "/search?minLevel=300",
}

var (
	needTextRe       = regexp.MustCompile(`(?i)NEEDS?:\s*([0-9.]+\s*(?:HOURS?|COURSES?)|1\s*SUB-?GROUP|[0-9]+\s*SUB-?GROUPS?)`)
	satisfiedHintRe  = regexp.MustCompile(`(?i)COURSE TAKEN|EARNED:\s*\d+(\.\d+)?\s*(COURSES?|HOURS?)|COMPLETED`)
	subGroupRe       = regexp.MustCompile(`(?i)SUB-?GROUP`)
	genEdSpecificRe  = regexp.MustCompile(`(?i)HUMANITIES|SOCIAL|NATURAL|CULTURAL|COMPOSITION|QUANTITATIVE|WESTERN|NON-WESTERN|U\.S\.`)
	selectableRe     = regexp.MustCompile(`(?i)SELECT FROM:|ONE OF THE FOLLOWING COMBINATIONS`)
	numberingRe      = regexp.MustCompile(`^\s*\d+\)\s*`)
	selectPrefixRe   = regexp.MustCompile(`(?i)^NEEDS?:.*?\bSELECT FROM:\s*`)
	parserArtifactRe = regexp.MustCompile(`\s+5\)\s*`)
)

// containsAny reports whether s contains any of the substrings.
func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// firstPattern returns the value of the first rule whose pattern matches s.
func firstPattern(rules []patternRule, s string) (string, bool) {
	for _, r := range rules {
		if r.pattern.MatchString(s) {
			return r.value, true
		}
	}
	return "", false
}

// firstPhrase returns the value of the first rule with a phrase contained in s.
func firstPhrase(rules []phraseRule, s string) (string, bool) {
	for _, r := range rules {
		if containsAny(s, r.phrases) {
			return r.value, true
		}
	}
	return "", false
}
