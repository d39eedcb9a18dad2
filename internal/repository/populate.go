package repository

import (
	"context"
	"errors"
	"fmt"

	"coursemarket/internal/models"
	"coursemarket/internal/qerrors"

	"golang.org/x/sync/errgroup"
)

// PopulateCourse loads the course with the given id and expands its category, instructor (with
// additional details), ratings and sections (with their subsections). Dangling references expand
// to nil or are skipped, the way a document populate would.
func PopulateCourse(ctx context.Context, r Repository, id string) (*models.CourseDetails, error) {
	course, err := r.GetCourseByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details := &models.CourseDetails{Course: course}

	// The four expansions only read, so they run side by side.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		category, err := r.GetCategoryByID(gctx, course.Category)
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("populating category: %w", err)
		}
		details.Category = category
		return nil
	})
	g.Go(func() error {
		instructor, err := populateUser(gctx, r, course.Instructor)
		if err != nil {
			return fmt.Errorf("populating instructor: %w", err)
		}
		details.Instructor = instructor
		return nil
	})
	g.Go(func() error {
		ratings, err := r.GetRatingsByIDs(gctx, course.RatingAndReviews)
		if err != nil {
			return fmt.Errorf("populating ratings: %w", err)
		}
		details.RatingAndReviews = ratings
		return nil
	})
	g.Go(func() error {
		sections, err := populateSections(gctx, r, course.CourseContent)
		if err != nil {
			return fmt.Errorf("populating course content: %w", err)
		}
		details.CourseContent = sections
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return details, nil
}

func populateUser(ctx context.Context, r Repository, id string) (*models.UserDetails, error) {
	user, err := r.GetUserByID(ctx, id)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	details := &models.UserDetails{User: user}
	if user.AdditionalDetails == "" {
		return details, nil
	}
	profile, err := r.GetProfileByID(ctx, user.AdditionalDetails)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	details.AdditionalDetails = profile
	return details, nil
}

func populateSections(ctx context.Context, r Repository, ids []string) ([]*models.SectionDetails, error) {
	sections, err := r.GetSectionsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*models.SectionDetails, 0, len(sections))
	for _, section := range sections {
		subSections, err := r.GetSubSectionsByIDs(ctx, section.SubSection)
		if err != nil {
			return nil, err
		}
		out = append(out, &models.SectionDetails{Section: section, SubSection: subSections})
	}
	return out, nil
}

// PopulateSummaries projects courses to the listing fields and expands each instructor.
func PopulateSummaries(ctx context.Context, r Repository, courses []*models.Course) ([]*models.CourseSummary, error) {
	ids := make([]string, 0, len(courses))
	seen := make(map[string]bool)
	for _, c := range courses {
		if !seen[c.Instructor] {
			seen[c.Instructor] = true
			ids = append(ids, c.Instructor)
		}
	}

	instructors, err := r.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("populating instructors: %w", err)
	}
	byID := make(map[string]*models.User, len(instructors))
	for _, u := range instructors {
		byID[u.ID] = u
	}

	summaries := make([]*models.CourseSummary, 0, len(courses))
	for _, c := range courses {
		summaries = append(summaries, &models.CourseSummary{
			ID:               c.ID,
			CourseName:       c.CourseName,
			Price:            c.Price,
			Thumbnail:        c.Thumbnail,
			Instructor:       byID[c.Instructor],
			RatingAndReviews: nonNil(c.RatingAndReviews),
			StudentsEnrolled: nonNil(c.StudentsEnrolled),
		})
	}
	return summaries, nil
}

func isNotFound(err error) bool {
	var e *qerrors.Error
	return errors.As(err, &e) && e.Kind == qerrors.NotFound
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
