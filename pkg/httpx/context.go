package httpx

import "context"

type ctxKey string

// CtxKeyStudentID carries the authenticated student identifier set by the
// authentication middleware.
const CtxKeyStudentID ctxKey = "student_id"

// StudentIDFromCtx returns the authenticated student identifier, or "" when
// the request was not authenticated.
func StudentIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyStudentID).(string); ok {
		return v
	}
	return ""
}
