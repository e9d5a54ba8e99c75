// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package requirements

import (
	"regexp"
	"strconv"
)

var (
	// courseRunRe matches a subject followed by two or more numbers that
	// share it, e.g. "CS 233, 341/374".
	courseRunRe = regexp.MustCompile(`([A-Z]{2,5})\s+(\d{3}(?:\s*[,/]\s*\d{3})+)`)
	courseRe    = regexp.MustCompile(`([A-Z]{2,5})\s+(\d{3})`)
	threeDigit  = regexp.MustCompile(`\d{3}`)
)

const placeholderNumber = 999

// ExtractCourseCodes returns the distinct "SUBJECT NUMBER" codes mentioned in
// text, in the order they are first seen. Numbers outside [100, 600) and the
// 999 placeholder are ignored.
func ExtractCourseCodes(text string) []string {
	var codes []string
	seen := make(map[string]bool)

	add := func(subject, digits string) {
		num, err := strconv.Atoi(digits)
		if err != nil || num < 100 || num >= 600 || num == placeholderNumber {
			return
		}
		code := subject + " " + strconv.Itoa(num)
		if seen[code] {
			return
		}
		seen[code] = true
		codes = append(codes, code)
	}

	for _, m := range courseRunRe.FindAllStringSubmatch(text, -1) {
		for _, digits := range threeDigit.FindAllString(m[2], -1) {
			add(m[1], digits)
		}
	}
	for _, m := range courseRe.FindAllStringSubmatch(text, -1) {
		add(m[1], m[2])
	}

	return codes
}

