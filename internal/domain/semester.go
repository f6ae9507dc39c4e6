package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Semester is a portal semester label in the literal form "YYYY.1" (fall) or
// "YYYY.2" (spring). The label doubles as a query parameter and as a lookup
// key into returned markup.
type Semester string

var semesterPattern = regexp.MustCompile(`^\d{4}\.[12]$`)

// Valid reports whether s has the YYYY.1 / YYYY.2 form.
func (s Semester) Valid() bool {
	return semesterPattern.MatchString(string(s))
}

// ClassToken returns the CSS class token the score page uses for this
// semester: dots replaced with underscores, e.g. "2023.1" -> "2023_1".
func (s Semester) ClassToken() string {
	return strings.ReplaceAll(string(s), ".", "_")
}

// Prev returns the semester one half-year earlier: X.2 -> X.1, X.1 -> (X-1).2.
// Returns s unchanged when the label is malformed.
func (s Semester) Prev() Semester {
	if !s.Valid() {
		return s
	}
	year, _ := strconv.Atoi(string(s[:4]))
	if strings.HasSuffix(string(s), ".2") {
		return Semester(fmt.Sprintf("%d.1", year))
	}
	return Semester(fmt.Sprintf("%d.2", year-1))
}

func (s Semester) String() string { return string(s) }

// CurrentSemester returns the semester in progress at t. The academic year
// rolls over in September: before September the spring term of the previous
// cycle is in progress.
func CurrentSemester(t time.Time) Semester {
	if t.Month() < time.September {
		return Semester(fmt.Sprintf("%d.2", t.Year()-1))
	}
	return Semester(fmt.Sprintf("%d.1", t.Year()))
}

// LastSemester returns the most recent semester whose results are published
// at t. Grades for the in-progress semester are withheld until it ends, so
// this is the label the score page is queried with by default.
func LastSemester(t time.Time) Semester {
	if t.Month() < time.September {
		return Semester(fmt.Sprintf("%d.1", t.Year()-1))
	}
	return Semester(fmt.Sprintf("%d.2", t.Year()))
}
