package portal

import (
	"context"
	"time"

	"github.com/Undertone0809/ecjtu/internal/domain"
)

// Session bundles the resource services around one authenticated Client. It
// is the one-stop surface for callers that just want records: zero-value
// semesters and dates resolve to "now" defaults.
type Session struct {
	client    *Client
	schedule  *ScheduleService
	scores    *ScoreService
	electives *ElectiveService
}

// NewSession wraps an authenticated (or authenticatable) client.
func NewSession(c *Client) *Session {
	return &Session{
		client:    c,
		schedule:  NewScheduleService(c),
		scores:    NewScoreService(c),
		electives: NewElectiveService(c),
	}
}

// Client exposes the underlying portal client, mainly so callers can
// snapshot cookies after a successful operation.
func (s *Session) Client() *Client { return s.client }

// Login authenticates with the client's bound credentials.
func (s *Session) Login(ctx context.Context) error { return s.client.Login(ctx) }

// Schedule returns the timetable for one day; the zero time means today.
func (s *Session) Schedule(ctx context.Context, date time.Time) ([]domain.ScheduledCourse, error) {
	if date.IsZero() {
		return s.schedule.Today(ctx)
	}
	return s.schedule.ByDate(ctx, date)
}

// WeekSchedule returns the current week's timetable, Monday first.
func (s *Session) WeekSchedule(ctx context.Context) ([][]domain.ScheduledCourse, error) {
	return s.schedule.ThisWeek(ctx)
}

// GPA returns the student's grade point summary.
func (s *Session) GPA(ctx context.Context) (domain.GPA, error) {
	return s.scores.GPA(ctx)
}

// Scores returns one semester's grades; the empty semester means the most
// recent completed one.
func (s *Session) Scores(ctx context.Context, semester domain.Semester) ([]domain.Score, error) {
	if semester == "" {
		return s.scores.Latest(ctx)
	}
	return s.scores.BySemester(ctx, semester)
}

// Electives returns one semester's elective enrollments; the empty semester
// means the one now in progress.
func (s *Session) Electives(ctx context.Context, semester domain.Semester) ([]domain.ElectiveCourse, error) {
	if semester == "" {
		return s.electives.Current(ctx)
	}
	return s.electives.BySemester(ctx, semester)
}
