package http

import (
	"context"
	"time"

	"github.com/Undertone0809/ecjtu/internal/domain"
)

// StudentPortal is the record-fetching surface the handlers need. The zero
// time and empty semester select the "now" defaults. Implemented by
// portal.Session; faked in handler tests.
type StudentPortal interface {
	Schedule(ctx context.Context, date time.Time) ([]domain.ScheduledCourse, error)
	WeekSchedule(ctx context.Context) ([][]domain.ScheduledCourse, error)
	GPA(ctx context.Context) (domain.GPA, error)
	Scores(ctx context.Context, semester domain.Semester) ([]domain.Score, error)
	Electives(ctx context.Context, semester domain.Semester) ([]domain.ElectiveCourse, error)
}

// PortalOpener rebuilds an authenticated portal session for a student from
// their persisted cookies.
type PortalOpener func(ctx context.Context, studentID string) (StudentPortal, error)
