package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Undertone0809/ecjtu/internal/domain"
	"github.com/Undertone0809/ecjtu/pkg/httpx"
	"github.com/Undertone0809/ecjtu/pkg/slogx"
)

// ResourceHandler serves the record queries. Every request rebuilds a portal
// session from the student's persisted cookies; successful payloads are
// cached per student and path for a short window.
type ResourceHandler struct {
	OpenPortal PortalOpener
	Cache      *ResponseCache
}

func (h *ResourceHandler) HandleGPA(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, p StudentPortal) (any, error) {
		return p.GPA(ctx)
	})
}

func (h *ResourceHandler) HandleScheduleToday(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, p StudentPortal) (any, error) {
		return p.Schedule(ctx, time.Time{})
	})
}

func (h *ResourceHandler) HandleScheduleDate(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", r.PathValue("date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "date must be yyyy-mm-dd")
		return
	}
	h.serve(w, r, func(ctx context.Context, p StudentPortal) (any, error) {
		return p.Schedule(ctx, date)
	})
}

func (h *ResourceHandler) HandleScheduleWeek(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, p StudentPortal) (any, error) {
		return p.WeekSchedule(ctx)
	})
}

func (h *ResourceHandler) HandleScores(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, p StudentPortal) (any, error) {
		return p.Scores(ctx, "")
	})
}

func (h *ResourceHandler) HandleScoresSemester(w http.ResponseWriter, r *http.Request) {
	semester := domain.Semester(r.PathValue("semester"))
	if !semester.Valid() {
		respondError(w, http.StatusBadRequest, "semester must be yyyy.1 or yyyy.2")
		return
	}
	h.serve(w, r, func(ctx context.Context, p StudentPortal) (any, error) {
		return p.Scores(ctx, semester)
	})
}

func (h *ResourceHandler) HandleElectives(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, p StudentPortal) (any, error) {
		return p.Electives(ctx, "")
	})
}

func (h *ResourceHandler) HandleElectivesSemester(w http.ResponseWriter, r *http.Request) {
	semester := domain.Semester(r.PathValue("semester"))
	if !semester.Valid() {
		respondError(w, http.StatusBadRequest, "semester must be yyyy.1 or yyyy.2")
		return
	}
	h.serve(w, r, func(ctx context.Context, p StudentPortal) (any, error) {
		return p.Electives(ctx, semester)
	})
}

func (h *ResourceHandler) serve(
	w http.ResponseWriter,
	r *http.Request,
	fetch func(ctx context.Context, p StudentPortal) (any, error),
) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	studentID := httpx.StudentIDFromCtx(ctx)

	if cached, ok := h.Cache.Get(studentID, r.URL.Path); ok {
		respondData(w, json.RawMessage(cached))
		return
	}

	p, err := h.OpenPortal(ctx, studentID)
	if err != nil {
		respondServiceError(w, log, err)
		return
	}

	data, err := fetch(ctx, p)
	if err != nil {
		respondServiceError(w, log, err)
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		log.Error("encode resource payload", "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.Cache.Set(studentID, r.URL.Path, payload)
	respondData(w, json.RawMessage(payload))
}
