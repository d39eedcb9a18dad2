package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/newrelic/go-agent/v3/newrelic"
)

type contextKey string

const courseIDKey contextKey = "courseID"

// CourseCtx stores the {courseID} URL parameter in the request context.
func CourseCtx() func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			courseID := chi.URLParam(r, "courseID")

			ctx := context.WithValue(r.Context(), courseIDKey, courseID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CourseIDFromRequest returns the course ID stored by CourseCtx.
func CourseIDFromRequest(r *http.Request) string {
	id, _ := r.Context().Value(courseIDKey).(string)
	return id
}

// NewRelic records every request as a web transaction. A nil app disables it.
func NewRelic(app *newrelic.Application) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if app == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			txn := app.StartTransaction(r.Method + " " + r.URL.Path)
			defer txn.End()

			txn.SetWebRequestHTTP(r)
			w = txn.SetWebResponse(w)
			r = newrelic.RequestWithTransactionContext(r, txn)

			next.ServeHTTP(w, r)
		})
	}
}
