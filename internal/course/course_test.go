package course

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"coursemarket/internal/media"
	"coursemarket/internal/models"
	"coursemarket/internal/qerrors"
	"coursemarket/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockUploader is a mock implementation of media.Uploader
type mockUploader struct {
	err     error
	folder  string
	content string
	calls   int
}

func (m *mockUploader) Upload(ctx context.Context, file io.Reader, filename, folder string) (*media.Result, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	b, _ := io.ReadAll(file)
	m.content = string(b)
	m.folder = folder
	return &media.Result{SecureURL: "https://cdn.example.com/" + folder + "/" + filename}, nil
}

func newTestService(t *testing.T, opts Options) (*Service, *repository.MemoryRepository, *mockUploader) {
	t.Helper()

	repo := repository.NewMemoryRepository()
	require.NoError(t, repo.Seed(
		&models.User{ID: "inst", FirstName: "Ada", AccountType: models.AccountInstructor, AdditionalDetails: "prof", Courses: []string{"existing"}},
		&models.Profile{ID: "prof", About: "Teaches Go"},
		&models.User{ID: "stu1", FirstName: "Bo", AccountType: models.AccountStudent, Courses: []string{"existing"}},
		&models.User{ID: "stu2", FirstName: "Cy", AccountType: models.AccountStudent, Courses: []string{"other", "existing"}},
		&models.User{ID: "other-inst", AccountType: models.AccountInstructor, Courses: []string{}},
		&models.Category{ID: "cat", Name: "Programming", Courses: []string{"existing"}},
		&models.Category{ID: "cat2", Name: "Design", Courses: []string{}},
		&models.Course{
			ID:               "existing",
			CourseName:       "Go Basics",
			Instructor:       "inst",
			Category:         "cat",
			Status:           models.StatusDraft,
			Price:            499,
			Tag:              []string{"go"},
			Instructions:     []string{"Bring a laptop"},
			CourseContent:    []string{"sec1", "sec2"},
			StudentsEnrolled: []string{"stu1", "stu2"},
			RatingAndReviews: []string{"rev1"},
			CreatedAt:        time.Unix(1000, 0),
		},
		&models.Section{ID: "sec1", SectionName: "Intro", SubSection: []string{"sub1"}},
		&models.Section{ID: "sec2", SectionName: "Types", SubSection: []string{"sub2"}},
		&models.SubSection{ID: "sub1", TimeDuration: "600"},
		&models.SubSection{ID: "sub2", TimeDuration: " 3061 "},
		&models.SubSection{ID: "unrelated", TimeDuration: "5"},
		&models.RatingAndReview{ID: "rev1", User: "stu1", Rating: 5, Review: "great", Course: "existing"},
		&models.CourseProgress{ID: "prog1", CourseID: "existing", UserID: "stu1", CompletedVideos: []string{"sub1"}},
	))

	uploader := &mockUploader{}
	svc := NewService(repo, uploader, opts)
	svc.newID = func() string { return "new-course" }
	svc.now = func() time.Time { return time.Unix(5000, 0) }
	return svc, repo, uploader
}

func validCreateRequest() *models.CreateCourseRequest {
	return &models.CreateCourseRequest{
		CourseName:        "Concurrency in Go",
		CourseDescription: "Goroutines and channels",
		WhatYouWillLearn:  "How to use select",
		Price:             999,
		Tag:               `["go","concurrency"]`,
		Category:          "cat",
		Status:            "Published",
		Instructions:      []interface{}{"Install Go", "Clone the repo"},
		InstructorID:      "inst",
	}
}

func TestCreateCourse_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *models.CreateCourseRequest)
		message string
	}{
		{"course name", func(r *models.CreateCourseRequest) { r.CourseName = "" }, "Course name is required"},
		{"description", func(r *models.CreateCourseRequest) { r.CourseDescription = "" }, "Course description is required"},
		{"what you will learn", func(r *models.CreateCourseRequest) { r.WhatYouWillLearn = "" }, "What you will learn is required"},
		{"price", func(r *models.CreateCourseRequest) { r.Price = 0 }, "Price is required"},
		{"tag", func(r *models.CreateCourseRequest) { r.Tag = nil }, "Tag is required"},
		{"empty tag", func(r *models.CreateCourseRequest) { r.Tag = "" }, "Tag is required"},
		{"category", func(r *models.CreateCourseRequest) { r.Category = "" }, "Category is required"},
		{"status", func(r *models.CreateCourseRequest) { r.Status = "" }, "Status is required"},
		{"instructions", func(r *models.CreateCourseRequest) { r.Instructions = nil }, "Instructions are required"},
		{"empty instructions", func(r *models.CreateCourseRequest) { r.Instructions = "" }, "Instructions are required"},
		{"blank instructions", func(r *models.CreateCourseRequest) { r.Instructions = "  " }, "Instructions are required"},
		{"empty tag list", func(r *models.CreateCourseRequest) { r.Tag = []interface{}{} }, "Tag is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService(t, Options{})
			req := validCreateRequest()
			tt.mutate(req)

			_, err := svc.CreateCourse(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, qerrors.BadRequest, qerrors.KindOf(err))
			assert.Equal(t, tt.message, err.Error())
			assert.Equal(t, 0, repo.AppliedMutations())
		})
	}
}

func TestCreateCourse_FirstMissingFieldWins(t *testing.T) {
	svc, _, _ := newTestService(t, Options{})

	_, err := svc.CreateCourse(context.Background(), &models.CreateCourseRequest{InstructorID: "inst"})
	assert.EqualError(t, err, "Course name is required")
}

func TestCreateCourse_UnknownCategory(t *testing.T) {
	svc, repo, _ := newTestService(t, Options{})
	req := validCreateRequest()
	req.Category = "nope"

	_, err := svc.CreateCourse(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, qerrors.CategoryNotFoundError))

	_, err = repo.GetCourseByID(context.Background(), "new-course")
	assert.True(t, errors.Is(err, qerrors.CourseNotFoundError))
	assert.Equal(t, 0, repo.AppliedMutations())
}

func TestCreateCourse_UnknownInstructor(t *testing.T) {
	svc, _, _ := newTestService(t, Options{})
	req := validCreateRequest()
	req.InstructorID = "ghost"

	_, err := svc.CreateCourse(context.Background(), req)
	assert.True(t, errors.Is(err, qerrors.InstructorNotFoundError))
}

func TestCreateCourse_InvalidInput(t *testing.T) {
	svc, _, _ := newTestService(t, Options{})

	req := validCreateRequest()
	req.Status = "archived"
	_, err := svc.CreateCourse(context.Background(), req)
	assert.True(t, errors.Is(err, qerrors.InvalidStatusError))

	req = validCreateRequest()
	req.Tag = `["go"`
	_, err = svc.CreateCourse(context.Background(), req)
	assert.Equal(t, qerrors.BadRequest, qerrors.KindOf(err))
}

func TestCreateCourse_Success(t *testing.T) {
	ctx := context.Background()
	svc, repo, uploader := newTestService(t, Options{MediaFolder: "thumbs"})
	req := validCreateRequest()
	req.Status = "published"
	req.Thumbnail = &models.Upload{Filename: "cover.png", Content: strings.NewReader("img")}

	course, err := svc.CreateCourse(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "new-course", course.ID)
	assert.Equal(t, models.StatusPublished, course.Status)
	assert.Equal(t, []string{"go", "concurrency"}, course.Tag)
	assert.Equal(t, []string{"Install Go", "Clone the repo"}, course.Instructions)
	assert.Equal(t, "https://cdn.example.com/thumbs/cover.png", course.Thumbnail)
	assert.Equal(t, "img", uploader.content)
	assert.Equal(t, "thumbs", uploader.folder)
	assert.Equal(t, time.Unix(5000, 0).UTC(), course.CreatedAt)

	stored, err := repo.GetCourseByID(ctx, "new-course")
	require.NoError(t, err)
	assert.Equal(t, course, stored)

	instructor, err := repo.GetUserByID(ctx, "inst")
	require.NoError(t, err)
	assert.Equal(t, []string{"existing", "new-course"}, instructor.Courses)

	category, err := repo.GetCategoryByID(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, []string{"existing", "new-course"}, category.Courses)
}

func TestCreateCourse_NoThumbnail(t *testing.T) {
	svc, _, uploader := newTestService(t, Options{})

	course, err := svc.CreateCourse(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Empty(t, course.Thumbnail)
	assert.Equal(t, 0, uploader.calls)
}

func TestCreateCourse_UploadFailure(t *testing.T) {
	svc, repo, uploader := newTestService(t, Options{})
	uploader.err = errors.New("media service down")
	req := validCreateRequest()
	req.Thumbnail = &models.Upload{Filename: "cover.png", Content: strings.NewReader("img")}

	_, err := svc.CreateCourse(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, qerrors.Internal, qerrors.KindOf(err))
	assert.Equal(t, 0, repo.AppliedMutations())
}

func TestListPublishedCourses(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, Options{})

	courses, err := svc.ListPublishedCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)

	_, err = svc.CreateCourse(ctx, validCreateRequest())
	require.NoError(t, err)

	courses, err = svc.ListPublishedCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Concurrency in Go", courses[0].CourseName)
	require.NotNil(t, courses[0].Instructor)
	assert.Equal(t, "Ada", courses[0].Instructor.FirstName)
}

func TestGetCourseDetails(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, Options{})

	details, duration, err := svc.GetCourseDetails(ctx, "existing")
	require.NoError(t, err)
	assert.Equal(t, "1h 1m", duration)
	assert.Equal(t, "Programming", details.Category.Name)
	assert.Equal(t, "Teaches Go", details.Instructor.AdditionalDetails.About)
	require.Len(t, details.CourseContent, 2)
	assert.Equal(t, "sub2", details.CourseContent[1].SubSection[0].ID)
	require.Len(t, details.RatingAndReviews, 1)
	assert.Equal(t, "great", details.RatingAndReviews[0].Review)

	_, _, err = svc.GetCourseDetails(ctx, "")
	assert.True(t, errors.Is(err, qerrors.MissingCourseIDError))

	_, _, err = svc.GetCourseDetails(ctx, "missing")
	assert.Equal(t, qerrors.NotFound, qerrors.KindOf(err))
}

func TestEditCourse(t *testing.T) {
	ctx := context.Background()

	t.Run("non-instructor is rejected and nothing changes", func(t *testing.T) {
		svc, repo, _ := newTestService(t, Options{})
		before, err := repo.GetCourseByID(ctx, "existing")
		require.NoError(t, err)

		_, err = svc.EditCourse(ctx, &models.EditCourseRequest{
			CourseID: "existing",
			CallerID: "other-inst",
			Updates:  map[string]interface{}{"courseName": "Hijacked"},
		})
		require.Error(t, err)
		assert.Equal(t, qerrors.BadRequest, qerrors.KindOf(err))
		assert.Equal(t, "course can only be edited by the instructor who created it", err.Error())

		after, err := repo.GetCourseByID(ctx, "existing")
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("missing course", func(t *testing.T) {
		svc, _, _ := newTestService(t, Options{})
		_, err := svc.EditCourse(ctx, &models.EditCourseRequest{CourseID: "missing", CallerID: "inst"})
		assert.True(t, errors.Is(err, qerrors.CourseNotFoundError))
	})

	t.Run("unknown and protected keys are ignored", func(t *testing.T) {
		svc, repo, _ := newTestService(t, Options{})
		updated, err := svc.EditCourse(ctx, &models.EditCourseRequest{
			CourseID: "existing",
			CallerID: "inst",
			Updates: map[string]interface{}{
				"courseName":       "Go Fundamentals",
				"price":            "799",
				"tag":              `["go","basics"]`,
				"instructions":     `["Install Go"]`,
				"status":           "published",
				"instructor":       "other-inst",
				"studentsEnrolled": []interface{}{},
				"favouriteColour":  "blue",
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "Go Fundamentals", updated.CourseName)
		assert.Equal(t, "inst", updated.Instructor.ID)

		stored, err := repo.GetCourseByID(ctx, "existing")
		require.NoError(t, err)
		assert.Equal(t, "Go Fundamentals", stored.CourseName)
		assert.Equal(t, float64(799), stored.Price)
		assert.Equal(t, []string{"go", "basics"}, stored.Tag)
		assert.Equal(t, []string{"Install Go"}, stored.Instructions)
		assert.Equal(t, models.StatusPublished, stored.Status)
		assert.Equal(t, "inst", stored.Instructor)
		assert.Equal(t, []string{"stu1", "stu2"}, stored.StudentsEnrolled)
		assert.Empty(t, stored.CourseDescription)
	})

	t.Run("malformed tag is a bad request", func(t *testing.T) {
		svc, repo, _ := newTestService(t, Options{})
		_, err := svc.EditCourse(ctx, &models.EditCourseRequest{
			CourseID: "existing",
			CallerID: "inst",
			Updates:  map[string]interface{}{"tag": "[go"},
		})
		assert.Equal(t, qerrors.BadRequest, qerrors.KindOf(err))
		assert.Equal(t, 0, repo.AppliedMutations())
	})

	for _, field := range []string{"tag", "instructions"} {
		t.Run("blank "+field+" is a bad request", func(t *testing.T) {
			svc, repo, _ := newTestService(t, Options{})
			before, err := repo.GetCourseByID(ctx, "existing")
			require.NoError(t, err)

			_, err = svc.EditCourse(ctx, &models.EditCourseRequest{
				CourseID: "existing",
				CallerID: "inst",
				Updates:  map[string]interface{}{field: " "},
			})
			assert.Equal(t, qerrors.BadRequest, qerrors.KindOf(err))
			assert.Equal(t, 0, repo.AppliedMutations())

			after, err := repo.GetCourseByID(ctx, "existing")
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}

	t.Run("an encoded empty list clears tags", func(t *testing.T) {
		svc, repo, _ := newTestService(t, Options{})
		_, err := svc.EditCourse(ctx, &models.EditCourseRequest{
			CourseID: "existing",
			CallerID: "inst",
			Updates:  map[string]interface{}{"tag": "[]"},
		})
		require.NoError(t, err)

		stored, err := repo.GetCourseByID(ctx, "existing")
		require.NoError(t, err)
		assert.Empty(t, stored.Tag)
	})

	t.Run("new thumbnail replaces the old one", func(t *testing.T) {
		svc, repo, _ := newTestService(t, Options{MediaFolder: "thumbs"})
		_, err := svc.EditCourse(ctx, &models.EditCourseRequest{
			CourseID:  "existing",
			CallerID:  "inst",
			Thumbnail: &models.Upload{Filename: "new.png", Content: strings.NewReader("img")},
		})
		require.NoError(t, err)

		stored, err := repo.GetCourseByID(ctx, "existing")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/thumbs/new.png", stored.Thumbnail)
	})

	t.Run("category change moves the back-reference", func(t *testing.T) {
		svc, repo, _ := newTestService(t, Options{})
		_, err := svc.EditCourse(ctx, &models.EditCourseRequest{
			CourseID: "existing",
			CallerID: "inst",
			Updates:  map[string]interface{}{"category": "cat2"},
		})
		require.NoError(t, err)

		oldCat, err := repo.GetCategoryByID(ctx, "cat")
		require.NoError(t, err)
		assert.Empty(t, oldCat.Courses)
		newCat, err := repo.GetCategoryByID(ctx, "cat2")
		require.NoError(t, err)
		assert.Equal(t, []string{"existing"}, newCat.Courses)
	})

	t.Run("category change to unknown category", func(t *testing.T) {
		svc, _, _ := newTestService(t, Options{})
		_, err := svc.EditCourse(ctx, &models.EditCourseRequest{
			CourseID: "existing",
			CallerID: "inst",
			Updates:  map[string]interface{}{"category": "nope"},
		})
		assert.True(t, errors.Is(err, qerrors.CategoryNotFoundError))
	})
}

func TestGetFullCourseDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("with progress", func(t *testing.T) {
		svc, _, _ := newTestService(t, Options{})
		full, err := svc.GetFullCourseDetails(ctx, "existing", "stu1")
		require.NoError(t, err)
		assert.Equal(t, "1h 1m", full.TotalDuration)
		assert.Equal(t, []string{"sub1"}, full.CompletedVideos)
		assert.Equal(t, "Go Basics", full.CourseDetails.CourseName)
	})

	t.Run("without progress", func(t *testing.T) {
		svc, _, _ := newTestService(t, Options{})
		full, err := svc.GetFullCourseDetails(ctx, "existing", "stu2")
		require.NoError(t, err)
		assert.NotNil(t, full.CompletedVideos)
		assert.Empty(t, full.CompletedVideos)
	})

	t.Run("missing course", func(t *testing.T) {
		svc, _, _ := newTestService(t, Options{})
		_, err := svc.GetFullCourseDetails(ctx, "missing", "stu1")
		require.Error(t, err)
		assert.Equal(t, qerrors.NotFound, qerrors.KindOf(err))
		assert.Equal(t, "Could not find course with id: missing", err.Error())
	})

	t.Run("draft policy", func(t *testing.T) {
		svc, _, _ := newTestService(t, Options{RestrictDraftAccess: true})

		_, err := svc.GetFullCourseDetails(ctx, "existing", "stu1")
		assert.True(t, errors.Is(err, qerrors.DraftCourseError))

		_, err = svc.GetFullCourseDetails(ctx, "existing", "inst")
		assert.NoError(t, err)
	})
}

func TestListInstructorCourses(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, Options{})

	_, err := svc.CreateCourse(ctx, validCreateRequest())
	require.NoError(t, err)

	courses, err := svc.ListInstructorCourses(ctx, "inst")
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "new-course", courses[0].ID)
	assert.Equal(t, "existing", courses[1].ID)

	courses, err = svc.ListInstructorCourses(ctx, "other-inst")
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestDeleteCourse(t *testing.T) {
	ctx := context.Background()

	t.Run("cascade", func(t *testing.T) {
		svc, repo, _ := newTestService(t, Options{})

		err := svc.DeleteCourse(ctx, &models.DeleteCourseRequest{CourseID: "existing", CallerID: "inst"})
		require.NoError(t, err)

		_, err = repo.GetCourseByID(ctx, "existing")
		assert.True(t, errors.Is(err, qerrors.CourseNotFoundError))
		assert.Equal(t, 0, repo.Count(models.SectionsCollection))

		subs, err := repo.GetSubSectionsByIDs(ctx, []string{"sub1", "sub2", "unrelated"})
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, "unrelated", subs[0].ID)

		stu1, err := repo.GetUserByID(ctx, "stu1")
		require.NoError(t, err)
		assert.Empty(t, stu1.Courses)
		stu2, err := repo.GetUserByID(ctx, "stu2")
		require.NoError(t, err)
		assert.Equal(t, []string{"other"}, stu2.Courses)

		category, err := repo.GetCategoryByID(ctx, "cat")
		require.NoError(t, err)
		assert.Empty(t, category.Courses)
		instructor, err := repo.GetUserByID(ctx, "inst")
		require.NoError(t, err)
		assert.Empty(t, instructor.Courses)

		// The category and the users themselves survive.
		assert.Equal(t, 4, repo.Count(models.UsersCollection))
		assert.Equal(t, 2, repo.Count(models.CategoriesCollection))
	})

	t.Run("missing course performs no writes", func(t *testing.T) {
		svc, repo, _ := newTestService(t, Options{})
		err := svc.DeleteCourse(ctx, &models.DeleteCourseRequest{CourseID: "missing", CallerID: "inst"})
		assert.True(t, errors.Is(err, qerrors.CourseNotFoundError))
		assert.Equal(t, 0, repo.AppliedMutations())
	})

	t.Run("missing id", func(t *testing.T) {
		svc, _, _ := newTestService(t, Options{})
		err := svc.DeleteCourse(ctx, &models.DeleteCourseRequest{CallerID: "inst"})
		assert.True(t, errors.Is(err, qerrors.MissingCourseIDError))
	})

	t.Run("only the instructor may delete", func(t *testing.T) {
		svc, repo, _ := newTestService(t, Options{})
		err := svc.DeleteCourse(ctx, &models.DeleteCourseRequest{CourseID: "existing", CallerID: "stu1"})
		assert.Equal(t, qerrors.BadRequest, qerrors.KindOf(err))
		assert.Equal(t, 0, repo.AppliedMutations())
	})
}

func TestDeletePlanOrder(t *testing.T) {
	course := &models.Course{ID: "c", Instructor: "i"}
	students := []*models.User{{ID: "s1"}}
	sections := []*models.Section{{ID: "sec", SubSection: []string{"a", "b"}}}

	plan := deletePlan(course, students, sections, &models.Category{ID: "cat"}, &models.User{ID: "i"})

	var steps []string
	for _, m := range plan {
		steps = append(steps, m.String())
	}
	assert.Equal(t, []string{
		"removeFromSet users/s1.courses c",
		"delete subsections/a",
		"delete subsections/b",
		"delete sections/sec",
		"delete courses/c",
		"removeFromSet categories/cat.courses c",
		"removeFromSet users/i.courses c",
	}, steps)
}
