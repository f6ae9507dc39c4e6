package portal

import (
	"bytes"
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Undertone0809/ecjtu/internal/domain"
)

// ElectiveService fetches elective course enrollments. The upstream renders a
// plain HTML table whose columns are positionally fixed.
type ElectiveService struct {
	client *Client

	// Now supplies the clock for the default semester; nil means time.Now.
	Now func() time.Time
}

// NewElectiveService wraps a client. Set Now to pin the clock.
func NewElectiveService(c *Client) *ElectiveService {
	return &ElectiveService{client: c}
}

// electiveColumns are the table cell offsets the enrollment rows use.
const (
	colSemester     = 0
	colClassName    = 4
	colClassType    = 5
	colAssessment   = 7
	colScheduleInfo = 8
	colClassNumber  = 9
	colCredit       = 11
	colTeacher      = 12
)

// BySemester returns the elective enrollments for one semester.
func (s *ElectiveService) BySemester(ctx context.Context, semester domain.Semester) ([]domain.ElectiveCourse, error) {
	if !semester.Valid() {
		return nil, &ParseError{Resource: "elective", Reason: "malformed semester label " + strconv.Quote(semester.String())}
	}

	query := url.Values{"term": {semester.String()}}
	target := s.client.endpoints.ElectiveQuery + "?" + query.Encode()
	body, err := s.client.Get(ctx, target)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Resource: "elective", Reason: "response is not parseable html"}
	}

	var (
		courses  []domain.ElectiveCourse
		parseErr error
	)
	doc.Find("tbody tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() <= colTeacher {
			parseErr = &ParseError{Resource: "elective", Reason: "enrollment row has too few cells"}
			return false
		}
		credit, err := strconv.ParseFloat(strings.TrimSpace(cells.Eq(colCredit).Text()), 64)
		if err != nil {
			parseErr = &ParseError{Resource: "elective", Reason: "credit is not numeric"}
			return false
		}
		courses = append(courses, domain.ElectiveCourse{
			Semester:     domain.Semester(strings.TrimSpace(cells.Eq(colSemester).Text())),
			ClassName:    strings.TrimSpace(cells.Eq(colClassName).Text()),
			ClassType:    strings.TrimSpace(cells.Eq(colClassType).Text()),
			Assessment:   strings.TrimSpace(cells.Eq(colAssessment).Text()),
			ScheduleInfo: strings.TrimSpace(cells.Eq(colScheduleInfo).Text()),
			ClassNumber:  strings.TrimSpace(cells.Eq(colClassNumber).Text()),
			Credit:       credit,
			Teacher:      strings.TrimSpace(cells.Eq(colTeacher).Text()),
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return courses, nil
}

// Current returns the enrollments for the semester now in progress.
func (s *ElectiveService) Current(ctx context.Context) ([]domain.ElectiveCourse, error) {
	return s.BySemester(ctx, domain.CurrentSemester(s.now()))
}

func (s *ElectiveService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
