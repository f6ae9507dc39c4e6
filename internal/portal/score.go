package portal

import (
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Undertone0809/ecjtu/internal/domain"
)

// ScoreService fetches grades and GPA standing. Both live on the same page:
// the GPA sits in a fixed summary row, scores in semester-classed lists.
type ScoreService struct {
	client *Client

	// Now supplies the clock for the default semester; nil means time.Now.
	Now func() time.Time
}

// NewScoreService wraps a client. Set Now to pin the clock.
func NewScoreService(c *Client) *ScoreService {
	return &ScoreService{client: c}
}

// BySemester returns the published scores for one semester. Matching is done
// on the markup's CSS class tokens with a word boundary, so "2023.1" never
// picks up a "2023_10" list.
func (s *ScoreService) BySemester(ctx context.Context, semester domain.Semester) ([]domain.Score, error) {
	if !semester.Valid() {
		return nil, &ParseError{Resource: "score", Reason: "malformed semester label " + strconv.Quote(semester.String())}
	}
	doc, err := s.fetchPage(ctx)
	if err != nil {
		return nil, err
	}
	return parseScores(doc, semester)
}

// Latest returns the scores for the most recent completed semester. Grades
// for the in-progress one are withheld until it ends.
func (s *ScoreService) Latest(ctx context.Context) ([]domain.Score, error) {
	return s.BySemester(ctx, domain.LastSemester(s.now()))
}

// GPA returns the student's current GPA standing from the summary row.
func (s *ScoreService) GPA(ctx context.Context) (domain.GPA, error) {
	doc, err := s.fetchPage(ctx)
	if err != nil {
		return domain.GPA{}, err
	}
	return parseGPA(doc)
}

func (s *ScoreService) fetchPage(ctx context.Context) (*goquery.Document, error) {
	body, err := s.client.Get(ctx, s.client.endpoints.ScoreQuery)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Resource: "score", Reason: "response is not parseable html"}
	}
	return doc, nil
}

func (s *ScoreService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func parseScores(doc *goquery.Document, semester domain.Semester) ([]domain.Score, error) {
	pattern, err := regexp.Compile(`\b` + regexp.QuoteMeta(semester.ClassToken()) + `\b`)
	if err != nil {
		return nil, &ParseError{Resource: "score", Reason: "bad semester token"}
	}

	var (
		scores   []domain.Score
		parseErr error
	)
	doc.Find("ul").EachWithBreak(func(_ int, ul *goquery.Selection) bool {
		class, _ := ul.Attr("class")
		if !pattern.MatchString(class) {
			return true
		}
		items := ul.Find("li")
		if items.Length() < 6 {
			parseErr = &ParseError{Resource: "score", Reason: "score list has too few fields"}
			return false
		}
		credit, err := strconv.ParseFloat(strings.TrimSpace(items.Eq(4).Text()), 64)
		if err != nil {
			parseErr = &ParseError{Resource: "score", Reason: "credit is not numeric"}
			return false
		}
		scores = append(scores, domain.Score{
			Semester:     semester,
			CourseName:   strings.TrimSpace(items.Eq(1).Text()),
			CourseNature: strings.TrimSpace(items.Eq(2).Text()),
			Credit:       credit,
			Grade:        strings.TrimSpace(items.Eq(5).Text()),
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return scores, nil
}

// parseGPA reads the fixed summary row: the fourth table row carries name,
// class standing and GPA at fixed cell offsets.
func parseGPA(doc *goquery.Document) (domain.GPA, error) {
	rows := doc.Find("tr")
	if rows.Length() < 4 {
		return domain.GPA{}, &ParseError{Resource: "gpa", Reason: "summary row missing"}
	}
	cells := rows.Eq(3).Find("td")
	if cells.Length() < 7 {
		return domain.GPA{}, &ParseError{Resource: "gpa", Reason: "summary row has too few cells"}
	}
	return domain.GPA{
		StudentName: strings.TrimSpace(cells.Eq(1).Text()),
		Status:      strings.TrimSpace(cells.Eq(2).Text()),
		GPA:         strings.TrimSpace(cells.Eq(6).Text()),
	}, nil
}
