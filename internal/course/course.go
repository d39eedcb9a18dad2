package course

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coursemarket/internal/media"
	"coursemarket/internal/models"
	"coursemarket/internal/qerrors"
	"coursemarket/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/golang/glog"
	"github.com/google/uuid"
)

// Options configures a Service.
type Options struct {
	// MediaFolder is the folder thumbnails are uploaded into.
	MediaFolder string
	// RestrictDraftAccess makes GetFullCourseDetails reject draft courses for anyone but their instructor.
	RestrictDraftAccess bool
}

// Service implements the course operations on top of a Repository and a media Uploader.
type Service struct {
	repo     repository.Repository
	uploader media.Uploader
	opts     Options
	validate *validator.Validate

	now   func() time.Time
	newID func() string
}

func NewService(repo repository.Repository, uploader media.Uploader, opts Options) *Service {
	validate := validator.New()
	// required accepts "" and empty lists held in an interface{}; notblank does not.
	_ = validate.RegisterValidation("notblank", validators.NotBlank)

	return &Service{
		repo:     repo,
		uploader: uploader,
		opts:     opts,
		validate: validate,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// CreateCourse validates the request, uploads the thumbnail if one was sent, and stores the new
// course together with its instructor and category back-references.
func (s *Service) CreateCourse(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error) {
	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	status, ok := models.ParseCourseStatus(req.Status)
	if !ok {
		return nil, qerrors.InvalidStatusError
	}
	tags, err := NormalizeStringList(req.Tag)
	if err != nil {
		return nil, qerrors.NewBadRequest("Tag must be a list of strings: %v", err)
	}
	instructions, err := NormalizeStringList(req.Instructions)
	if err != nil {
		return nil, qerrors.NewBadRequest("Instructions must be a list of strings: %v", err)
	}

	instructor, err := s.repo.GetUserByID(ctx, req.InstructorID)
	if err != nil {
		if qerrors.KindOf(err) == qerrors.NotFound {
			return nil, qerrors.InstructorNotFoundError
		}
		return nil, err
	}
	category, err := s.repo.GetCategoryByID(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	thumbnail, err := s.upload(ctx, req.Thumbnail)
	if err != nil {
		return nil, err
	}

	course := &models.Course{
		ID:                s.newID(),
		CourseName:        req.CourseName,
		CourseDescription: req.CourseDescription,
		WhatYouWillLearn:  req.WhatYouWillLearn,
		Price:             req.Price,
		Tag:               tags,
		Category:          category.ID,
		Instructor:        instructor.ID,
		Thumbnail:         thumbnail,
		Status:            status,
		Instructions:      instructions,
		CourseContent:     []string{},
		StudentsEnrolled:  []string{},
		RatingAndReviews:  []string{},
		CreatedAt:         s.now().UTC(),
	}

	if err := s.repo.Apply(ctx, createPlan(course)); err != nil {
		return nil, fmt.Errorf("error creating course: %w", err)
	}

	glog.Infof("course %s created by instructor %s in category %s", course.ID, instructor.ID, category.ID)
	return course, nil
}

// createPlan inserts the course and links it from its instructor and category.
func createPlan(c *models.Course) []repository.Mutation {
	return []repository.Mutation{
		repository.InsertDoc(models.CoursesCollection, c.ID, c),
		repository.AddRef(models.UsersCollection, c.Instructor, models.UserCoursesField, c.ID),
		repository.AddRef(models.CategoriesCollection, c.Category, models.CategoryCoursesField, c.ID),
	}
}

// ListPublishedCourses returns every published course with its instructor expanded.
func (s *Service) ListPublishedCourses(ctx context.Context) ([]*models.CourseSummary, error) {
	courses, err := s.repo.ListCourses(ctx, repository.CourseFilter{Status: models.StatusPublished})
	if err != nil {
		return nil, err
	}
	return repository.PopulateSummaries(ctx, s.repo, courses)
}

// GetCourseDetails returns the fully expanded course and its formatted total duration.
func (s *Service) GetCourseDetails(ctx context.Context, courseID string) (*models.CourseDetails, string, error) {
	if courseID == "" {
		return nil, "", qerrors.MissingCourseIDError
	}

	details, err := repository.PopulateCourse(ctx, s.repo, courseID)
	if err != nil {
		return nil, "", err
	}
	return details, FormatDuration(TotalDuration(details.CourseContent)), nil
}

// EditCourse applies a partial update to a course owned by the caller and returns the course
// expanded the same way as GetCourseDetails.
func (s *Service) EditCourse(ctx context.Context, req *models.EditCourseRequest) (*models.CourseDetails, error) {
	if req.CourseID == "" {
		return nil, qerrors.MissingCourseIDError
	}

	course, err := s.repo.GetCourseByID(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if course.Instructor != req.CallerID {
		return nil, qerrors.NotCourseInstructorError
	}

	previousCategory := course.Category
	if err := applyUpdates(course, req.Updates); err != nil {
		return nil, err
	}

	if req.Thumbnail != nil {
		thumbnail, err := s.upload(ctx, req.Thumbnail)
		if err != nil {
			return nil, err
		}
		course.Thumbnail = thumbnail
	}

	plan := []repository.Mutation{repository.ReplaceDoc(models.CoursesCollection, course.ID, course)}
	if course.Category != previousCategory {
		if _, err := s.repo.GetCategoryByID(ctx, course.Category); err != nil {
			return nil, err
		}
		if previousCategory != "" {
			plan = append(plan, repository.RemoveRef(models.CategoriesCollection, previousCategory, models.CategoryCoursesField, course.ID))
		}
		plan = append(plan, repository.AddRef(models.CategoriesCollection, course.Category, models.CategoryCoursesField, course.ID))
	}

	if err := s.repo.Apply(ctx, plan); err != nil {
		return nil, fmt.Errorf("error updating course: %w", err)
	}

	glog.Infof("course %s updated by instructor %s", course.ID, req.CallerID)
	return repository.PopulateCourse(ctx, s.repo, course.ID)
}

// GetFullCourseDetails returns the expanded course, its total duration, and the videos the
// caller has completed.
func (s *Service) GetFullCourseDetails(ctx context.Context, courseID, userID string) (*models.FullCourseDetails, error) {
	if courseID == "" {
		return nil, qerrors.MissingCourseIDError
	}

	details, err := repository.PopulateCourse(ctx, s.repo, courseID)
	if err != nil {
		if qerrors.KindOf(err) == qerrors.NotFound {
			return nil, qerrors.NewNotFound("Could not find course with id: %s", courseID)
		}
		return nil, err
	}

	if s.opts.RestrictDraftAccess && details.Status == models.StatusDraft && details.Course.Instructor != userID {
		return nil, qerrors.DraftCourseError
	}

	completed := []string{}
	progress, err := s.repo.GetCourseProgress(ctx, courseID, userID)
	switch {
	case err == nil:
		if progress.CompletedVideos != nil {
			completed = progress.CompletedVideos
		}
	case qerrors.KindOf(err) != qerrors.NotFound:
		return nil, err
	}

	return &models.FullCourseDetails{
		CourseDetails:   details,
		TotalDuration:   FormatDuration(TotalDuration(details.CourseContent)),
		CompletedVideos: completed,
	}, nil
}

// ListInstructorCourses returns the caller's courses, newest first.
func (s *Service) ListInstructorCourses(ctx context.Context, instructorID string) ([]*models.Course, error) {
	return s.repo.ListCourses(ctx, repository.CourseFilter{InstructorID: instructorID, NewestFirst: true})
}

// DeleteCourse removes a course owned by the caller along with its sections and subsections, and
// retracts it from its students, its category and its instructor.
func (s *Service) DeleteCourse(ctx context.Context, req *models.DeleteCourseRequest) error {
	if req.CourseID == "" {
		return qerrors.MissingCourseIDError
	}

	course, err := s.repo.GetCourseByID(ctx, req.CourseID)
	if err != nil {
		return err
	}
	if course.Instructor != req.CallerID {
		return qerrors.NewBadRequest("course can only be deleted by the instructor who created it")
	}

	students, err := s.repo.GetUsersByIDs(ctx, course.StudentsEnrolled)
	if err != nil {
		return err
	}
	sections, err := s.repo.GetSectionsByIDs(ctx, course.CourseContent)
	if err != nil {
		return err
	}
	var category *models.Category
	if course.Category != "" {
		category, err = s.repo.GetCategoryByID(ctx, course.Category)
		if err != nil && qerrors.KindOf(err) != qerrors.NotFound {
			return err
		}
	}

	instructor, err := s.repo.GetUserByID(ctx, course.Instructor)
	if err != nil && qerrors.KindOf(err) != qerrors.NotFound {
		return err
	}

	plan := deletePlan(course, students, sections, category, instructor)
	if err := s.repo.Apply(ctx, plan); err != nil {
		return fmt.Errorf("error deleting course: %w", err)
	}

	glog.Infof("course %s deleted with %d sections and %d enrolled students", course.ID, len(sections), len(students))
	return nil
}

// deletePlan lists the cascade in order: unenroll students, drop each section's subsections and
// then the section, drop the course, then unlink it from its category and instructor. Only
// records that exist get an array update, since updating a missing record fails.
func deletePlan(c *models.Course, students []*models.User, sections []*models.Section, category *models.Category, instructor *models.User) []repository.Mutation {
	var plan []repository.Mutation
	for _, student := range students {
		plan = append(plan, repository.RemoveRef(models.UsersCollection, student.ID, models.UserCoursesField, c.ID))
	}
	for _, section := range sections {
		for _, subID := range section.SubSection {
			plan = append(plan, repository.DeleteDoc(models.SubSectionsCollection, subID))
		}
		plan = append(plan, repository.DeleteDoc(models.SectionsCollection, section.ID))
	}
	plan = append(plan, repository.DeleteDoc(models.CoursesCollection, c.ID))

	if category != nil {
		plan = append(plan, repository.RemoveRef(models.CategoriesCollection, category.ID, models.CategoryCoursesField, c.ID))
	}
	if instructor != nil && !containsUser(students, instructor.ID) {
		plan = append(plan, repository.RemoveRef(models.UsersCollection, instructor.ID, models.UserCoursesField, c.ID))
	}
	return plan
}

func containsUser(users []*models.User, id string) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func (s *Service) upload(ctx context.Context, file *models.Upload) (string, error) {
	if file == nil {
		return "", nil
	}

	res, err := s.uploader.Upload(ctx, file.Content, file.Filename, s.opts.MediaFolder)
	if err != nil {
		return "", fmt.Errorf("error uploading thumbnail: %w", err)
	}
	return res.SecureURL, nil
}

var requiredMessages = map[string]string{
	"CourseName":        "Course name is required",
	"CourseDescription": "Course description is required",
	"WhatYouWillLearn":  "What you will learn is required",
	"Price":             "Price is required",
	"Tag":               "Tag is required",
	"Category":          "Category is required",
	"Status":            "Status is required",
	"Instructions":      "Instructions are required",
}

// validateCreate reports the first missing field, in declaration order.
func (s *Service) validateCreate(req *models.CreateCourseRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	if msg, ok := requiredMessages[verrs[0].StructField()]; ok {
		return &qerrors.Error{Kind: qerrors.BadRequest, Message: msg}
	}
	return qerrors.NewBadRequest("%s is invalid", verrs[0].Field())
}
