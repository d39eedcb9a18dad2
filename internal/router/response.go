package router

import (
	"net/http"

	"coursemarket/internal/qerrors"

	"github.com/go-chi/render"
	"github.com/golang/glog"
)

// envelope is the JSON body of every response. The payload key differs per endpoint.
type envelope map[string]interface{}

func respond(w http.ResponseWriter, r *http.Request, status int, body envelope) {
	body["success"] = true
	render.Status(r, status)
	render.JSON(w, r, body)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(qerrors.KindOf(err))
	if status == http.StatusInternalServerError {
		glog.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
	}

	render.Status(r, status)
	render.JSON(w, r, envelope{
		"success": false,
		"message": qerrors.Message(err),
	})
}

func statusFor(kind qerrors.Kind) int {
	switch kind {
	case qerrors.BadRequest:
		return http.StatusBadRequest
	case qerrors.Unauthorized:
		return http.StatusUnauthorized
	case qerrors.Forbidden:
		return http.StatusForbidden
	case qerrors.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
