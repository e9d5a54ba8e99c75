// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package audit

import (
	"strings"

	"github.com/Najam-Usman/uiuc-course-planner/internal/requirements"
	"github.com/Najam-Usman/uiuc-course-planner/pkg/types"
)

// CourseKey returns the canonical "SUBJECT NUMBER" identifier for a course.
func CourseKey(subject, number string) string {
	return strings.ToUpper(strings.TrimSpace(subject)) + " " + strings.TrimSpace(number)
}

// SatisfiedSets splits a student's courses by status. Satisfied is the union
// of Completed and InProgress.
type SatisfiedSets struct {
	Satisfied  requirements.TakenSet
	Completed  requirements.TakenSet
	InProgress requirements.TakenSet
}

// BuildSatisfiedSets indexes courses by status. Transfer, planned, and
// ignored rows do not count as satisfied.
func BuildSatisfiedSets(courses []types.ParsedCourse) SatisfiedSets {
	sets := SatisfiedSets{
		Satisfied:  requirements.NewTakenSet(),
		Completed:  requirements.NewTakenSet(),
		InProgress: requirements.NewTakenSet(),
	}
	for _, c := range courses {
		id := CourseKey(c.Subject, c.Number)
		switch c.Status {
		case types.StatusCompleted:
			sets.Satisfied[id] = struct{}{}
			sets.Completed[id] = struct{}{}
		case types.StatusInProgress:
			sets.Satisfied[id] = struct{}{}
			sets.InProgress[id] = struct{}{}
		}
	}
	return sets
}

// TakenSet returns the courses that filter out suggested options.
func TakenSet(courses []types.ParsedCourse) requirements.TakenSet {
	return BuildSatisfiedSets(courses).Satisfied
}

// ParseTaken builds a TakenSet from free-form "SUBJECT NUMBER" strings, as
// typed on a command line.
func ParseTaken(codes []string) requirements.TakenSet {
	taken := requirements.NewTakenSet()
	for _, c := range codes {
		fields := strings.Fields(c)
		if len(fields) != 2 {
			continue
		}
		taken[CourseKey(fields[0], fields[1])] = struct{}{}
	}
	return taken
}

// ComputeStats counts completed, in-progress, and ignored courses.
func ComputeStats(courses []types.ParsedCourse) types.AuditStats {
	var s types.AuditStats
	for _, c := range courses {
		switch c.Status {
		case types.StatusCompleted:
			s.CoursesCompleted++
		case types.StatusInProgress:
			s.CoursesInProgress++
		case types.StatusIgnored:
			s.CoursesIgnored++
		}
	}
	return s
}

// Needs extracts the audit's actionable needs, filtering options against
// the audit's own completed and in-progress courses plus any extra taken
// courses.
func Needs(a *types.ParsedAudit, extra requirements.TakenSet) types.ActionableNeeds {
	if a == nil {
		return requirements.Extract(nil, nil)
	}
	taken := TakenSet(a.Courses)
	for c := range extra {
		taken[c] = struct{}{}
	}
	return requirements.Extract(a.Sections, taken)
}
