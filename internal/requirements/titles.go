// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package requirements

import (
	"net/url"
	"strings"
)

const defaultCourseGroupTitle = "Major requirement"

// stripNumbering removes a leading "<digits>) " list marker.
func stripNumbering(title string) string {
	return strings.TrimSpace(numberingRe.ReplaceAllString(title, ""))
}

// FriendlyTitle returns a short label for a course-pick section. Known
// requirement groups get fixed names; anything else falls back to the
// section title with its numbering and any "NEEDS: ... SELECT FROM:" lead-in
// removed.
func FriendlyTitle(title, blob string) string {
	t := strings.ToUpper(title + " " + blob)
	if name, ok := firstPattern(courseGroupTitles, t); ok {
		return name
	}

	fallback := selectPrefixRe.ReplaceAllString(stripNumbering(title), "")
	if fallback = strings.TrimSpace(fallback); fallback == "" {
		return defaultCourseGroupTitle
	}
	return fallback
}

// SearchPath returns a catalog search target for a need, or "" when no
// confident mapping exists. Gen-ed phrases win over the subject of the first
// option, which wins over an upper-level hint.
func SearchPath(title, blob string, options []string) string {
	t := strings.ToUpper(title + " " + blob)

	if path, ok := firstPhrase(genEdSearchPaths, t); ok {
		return path
	}
	if len(options) > 0 {
		subject, _, _ := strings.Cut(options[0], " ")
		return "/search?subject=" + url.QueryEscape(subject)
	}
	if containsAny(t, advancedLevelSearch.phrases) {
		return advancedLevelSearch.value
	}
	return ""
}
