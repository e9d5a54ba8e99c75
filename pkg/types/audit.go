// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CourseStatus is the parser's classification of a course row on the audit.
type CourseStatus string

const (
	StatusCompleted  CourseStatus = "completed"
	StatusInProgress CourseStatus = "in_progress"
	StatusTransfer   CourseStatus = "transfer"
	StatusIgnored    CourseStatus = "ignored"
	StatusPlanned    CourseStatus = "planned"
)

// ParsedCourse is one course row recognised by the audit parser.
type ParsedCourse struct {
	// Term is the audit term code (e.g. "FA23").
	Term string `json:"term" yaml:"term"`

	// Subject is the department code as printed (e.g. "CS").
	Subject string `json:"subject" yaml:"subject"`

	// Number is the course number kept as a string (e.g. "199A").
	Number string `json:"number" yaml:"number"`

	// Section is the section token, when the audit prints one.
	Section *string `json:"section" yaml:"section"`

	Credits float64  `json:"credits" yaml:"credits"`
	Grade   string   `json:"grade" yaml:"grade"`
	Flags   []string `json:"flags" yaml:"flags"`

	Status CourseStatus `json:"status" yaml:"status"`

	// Raw is the unparsed audit line the course came from.
	Raw string `json:"raw" yaml:"raw"`
}

// AuditMeta identifies the program the audit was run against.
type AuditMeta struct {
	Program     string `json:"program" yaml:"program"`
	ProgramCode string `json:"program_code,omitempty" yaml:"program_code,omitempty"`
	Degree      string `json:"degree" yaml:"degree"`
	CatalogYear string `json:"catalog_year" yaml:"catalog_year"`
}

// AuditCounters holds the summary numbers printed on the audit. Every field
// is optional because older audit layouts omit some of them.
type AuditCounters struct {
	CollegeMinAdvancedHours *float64 `json:"college_min_advanced_hours,omitempty" yaml:"college_min_advanced_hours,omitempty"`
	UIUCGPA                 *float64 `json:"uiuc_gpa,omitempty" yaml:"uiuc_gpa,omitempty"`
	MajorGPA                *float64 `json:"major_gpa,omitempty" yaml:"major_gpa,omitempty"`
	EarnedHours             *float64 `json:"earned_hours,omitempty" yaml:"earned_hours,omitempty"`
	AdvancedHoursEarned     *float64 `json:"advanced_hours_earned,omitempty" yaml:"advanced_hours_earned,omitempty"`
	AdvancedHoursInProgress *float64 `json:"advanced_hours_in_progress,omitempty" yaml:"advanced_hours_in_progress,omitempty"`
	AdvancedHoursNeeded     *float64 `json:"advanced_hours_needed,omitempty" yaml:"advanced_hours_needed,omitempty"`
}

// AuditSection is one requirement block of the audit after boundary
// validation: a title and its raw text lines.
type AuditSection struct {
	Title string   `json:"section_title" yaml:"section_title"`
	Lines []string `json:"raw_lines" yaml:"raw_lines"`
}

// ParsedAudit is the structured form of a degree audit produced by the
// external audit parser.
type ParsedAudit struct {
	Meta     AuditMeta         `json:"meta" yaml:"meta"`
	Counters AuditCounters     `json:"counters" yaml:"counters"`
	Courses  []ParsedCourse    `json:"courses" yaml:"courses"`
	Sections []AuditSection    `json:"sections" yaml:"sections"`
	Legend   map[string]string `json:"legend,omitempty" yaml:"legend,omitempty"`
	Warnings []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// AuditStats counts courses by status.
type AuditStats struct {
	CoursesCompleted  int `json:"courses_completed" yaml:"courses_completed"`
	CoursesInProgress int `json:"courses_in_progress" yaml:"courses_in_progress"`
	CoursesIgnored    int `json:"courses_ignored" yaml:"courses_ignored"`
}
