package router

import (
	"context"
	"net/http"

	"coursemarket/internal/auth"
	"coursemarket/internal/middleware"
	"coursemarket/internal/models"
	"coursemarket/internal/qerrors"

	"github.com/go-chi/chi/v5"
	"github.com/mitchellh/mapstructure"
)

// CourseService is implemented by course.Service.
type CourseService interface {
	CreateCourse(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error)
	ListPublishedCourses(ctx context.Context) ([]*models.CourseSummary, error)
	GetCourseDetails(ctx context.Context, courseID string) (*models.CourseDetails, string, error)
	EditCourse(ctx context.Context, req *models.EditCourseRequest) (*models.CourseDetails, error)
	GetFullCourseDetails(ctx context.Context, courseID, userID string) (*models.FullCourseDetails, error)
	ListInstructorCourses(ctx context.Context, instructorID string) ([]*models.Course, error)
	DeleteCourse(ctx context.Context, req *models.DeleteCourseRequest) error
}

type courseHandler struct {
	svc            CourseService
	maxUploadBytes int64
}

// CourseRoutes mounts the course endpoints. requireAuth must put an auth.Identity in the request
// context.
func CourseRoutes(svc CourseService, requireAuth func(http.Handler) http.Handler, maxUploadBytes int64) *chi.Mux {
	h := &courseHandler{svc: svc, maxUploadBytes: maxUploadBytes}
	instructorOnly := auth.RequireAccountType(models.AccountInstructor)

	router := chi.NewRouter()

	// Public catalogue
	router.Get("/getAllCourses", h.getAllCoursesHandler)
	router.With(middleware.CourseCtx()).Get("/getCourseDetails/{courseID}", h.getCourseDetailsHandler)

	// Enrolled users
	router.With(requireAuth, middleware.CourseCtx()).Get("/getFullCourseDetails/{courseID}", h.getFullCourseDetailsHandler)

	// Instructors
	router.With(requireAuth, instructorOnly).Post("/createCourse", h.createCourseHandler)
	router.With(requireAuth, instructorOnly).Post("/editCourse", h.editCourseHandler)
	router.With(requireAuth, instructorOnly).Get("/getInstructorCourses", h.getInstructorCoursesHandler)
	router.With(requireAuth, instructorOnly).Delete("/deleteCourse", h.deleteCourseHandler)
	return router
}

// POST: /createCourse
func (h *courseHandler) createCourseHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	fields, thumbnail, cleanup, err := parseBody(w, r, h.maxUploadBytes)
	defer cleanup()
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.CreateCourseRequest
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &req,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := decoder.Decode(fields); err != nil {
		writeError(w, r, qerrors.NewBadRequest("invalid course: %v", err))
		return
	}
	req.InstructorID = user.ID
	req.Thumbnail = thumbnail

	course, err := h.svc.CreateCourse(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, envelope{
		"data":    course,
		"message": "Course created successfully",
	})
}

// GET: /getAllCourses
func (h *courseHandler) getAllCoursesHandler(w http.ResponseWriter, r *http.Request) {
	courses, err := h.svc.ListPublishedCourses(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, envelope{
		"data":    courses,
		"message": "Data Fetched successfully",
	})
}

// GET: /getCourseDetails/{courseID}
func (h *courseHandler) getCourseDetailsHandler(w http.ResponseWriter, r *http.Request) {
	course, totalDuration, err := h.svc.GetCourseDetails(r.Context(), middleware.CourseIDFromRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, envelope{
		"message":       "Course fetched successfully",
		"course":        course,
		"totalDuration": totalDuration,
	})
}

// POST: /editCourse
func (h *courseHandler) editCourseHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	fields, thumbnail, cleanup, err := parseBody(w, r, h.maxUploadBytes)
	defer cleanup()
	if err != nil {
		writeError(w, r, err)
		return
	}
	courseID := stringField(fields, "courseId")
	delete(fields, "courseId")

	updated, err := h.svc.EditCourse(r.Context(), &models.EditCourseRequest{
		CourseID:  courseID,
		CallerID:  user.ID,
		Updates:   fields,
		Thumbnail: thumbnail,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, envelope{
		"message":       "Course updated successfully",
		"updatedCourse": updated,
	})
}

// GET: /getFullCourseDetails/{courseID}
func (h *courseHandler) getFullCourseDetailsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	full, err := h.svc.GetFullCourseDetails(r.Context(), middleware.CourseIDFromRequest(r), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, envelope{"data": full})
}

// GET: /getInstructorCourses
func (h *courseHandler) getInstructorCoursesHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	courses, err := h.svc.ListInstructorCourses(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, envelope{"courses": courses})
}

// DELETE: /deleteCourse
func (h *courseHandler) deleteCourseHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	fields, _, cleanup, err := parseBody(w, r, h.maxUploadBytes)
	defer cleanup()
	if err != nil {
		writeError(w, r, err)
		return
	}
	courseID := stringField(fields, "courseId")
	if courseID == "" {
		courseID = r.URL.Query().Get("courseId")
	}

	err = h.svc.DeleteCourse(r.Context(), &models.DeleteCourseRequest{CourseID: courseID, CallerID: user.ID})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, envelope{"message": "Course deleted successfully"})
}
