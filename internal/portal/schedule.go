package portal

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/Undertone0809/ecjtu/internal/domain"
)

// ScheduleService fetches timetable entries from the records system. The
// upstream serves one day per call as JSON keyed by a date form field.
type ScheduleService struct {
	client *Client

	// Now supplies the clock for "today" and "this week"; nil means
	// time.Now.
	Now func() time.Time
}

// NewScheduleService wraps a client. Set Now to pin the clock.
func NewScheduleService(c *Client) *ScheduleService {
	return &ScheduleService{client: c}
}

type weekCalendarResponse struct {
	Entries []scheduleEntry `json:"weekcalendarpojoList"`
}

type scheduleEntry struct {
	ClassSpan     string `json:"classSpan"`
	Course        string `json:"course"`
	ClassName     string `json:"className"`
	WeekSpan      string `json:"weekSpan"`
	CourseRequire string `json:"courseRequire"`
	TeacherName   string `json:"teacherName"`
	WeekDay       int    `json:"weekDay"`
	ClassRoom     string `json:"classRoom"`
	PKType        string `json:"pkType"`
}

// ByDate returns the courses scheduled for one calendar day. A day without
// classes yields an empty, valid result.
func (s *ScheduleService) ByDate(ctx context.Context, date time.Time) ([]domain.ScheduledCourse, error) {
	form := url.Values{"date": {date.Format("2006-01-02")}}
	body, err := s.client.PostForm(ctx, s.client.endpoints.Schedule, form)
	if err != nil {
		return nil, err
	}

	var payload weekCalendarResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ParseError{Resource: "schedule", Reason: "response is not valid calendar json"}
	}

	courses := make([]domain.ScheduledCourse, 0, len(payload.Entries))
	for _, e := range payload.Entries {
		courses = append(courses, domain.ScheduledCourse{
			ClassSpan:  e.ClassSpan,
			Course:     e.Course,
			CourseName: e.ClassName,
			WeekSpan:   e.WeekSpan,
			CourseType: e.CourseRequire,
			Teacher:    e.TeacherName,
			WeekDay:    e.WeekDay,
			ClassRoom:  e.ClassRoom,
			PKType:     e.PKType,
		})
	}
	return courses, nil
}

// Today returns the courses scheduled for the current day.
func (s *ScheduleService) Today(ctx context.Context) ([]domain.ScheduledCourse, error) {
	return s.ByDate(ctx, s.now())
}

// ThisWeek returns the full week's schedule, Monday first, as seven per-day
// lists fetched sequentially.
func (s *ScheduleService) ThisWeek(ctx context.Context) ([][]domain.ScheduledCourse, error) {
	monday := startOfWeek(s.now())
	week := make([][]domain.ScheduledCourse, 0, 7)
	for i := 0; i < 7; i++ {
		day, err := s.ByDate(ctx, monday.AddDate(0, 0, i))
		if err != nil {
			return nil, err
		}
		week = append(week, day)
	}
	return week, nil
}

func (s *ScheduleService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// startOfWeek returns the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
