package repository

import (
	"context"
	"fmt"

	"coursemarket/internal/models"
	"coursemarket/internal/qerrors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// GetCourseByID gets the Course document corresponding to the provided course ID.
func (fr *FirebaseRepository) GetCourseByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	if err := fr.getDoc(ctx, models.CoursesCollection, id, &course, qerrors.CourseNotFoundError); err != nil {
		return nil, err
	}
	return &course, nil
}

func (fr *FirebaseRepository) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := fr.getDoc(ctx, models.CategoriesCollection, id, &category, qerrors.CategoryNotFoundError); err != nil {
		return nil, err
	}
	return &category, nil
}

// ListCourses runs the filter as a Firestore query. Filtering on instructor while ordering by
// createdAt needs the composite index (instructor ASC, createdAt DESC).
func (fr *FirebaseRepository) ListCourses(ctx context.Context, filter CourseFilter) ([]*models.Course, error) {
	query := fr.firestoreClient.Collection(models.CoursesCollection).Query
	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}
	if filter.InstructorID != "" {
		query = query.Where("instructor", "==", filter.InstructorID)
	}
	if filter.NewestFirst {
		query = query.OrderBy("createdAt", firestore.Desc)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	courses := make([]*models.Course, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error listing courses: %w", err)
		}

		var c models.Course
		if err := decodeDoc(doc, &c); err != nil {
			return nil, err
		}
		courses = append(courses, &c)
	}
	return courses, nil
}

func (fr *FirebaseRepository) GetSectionsByIDs(ctx context.Context, ids []string) ([]*models.Section, error) {
	sections := make([]*models.Section, 0, len(ids))
	err := fr.getAll(ctx, models.SectionsCollection, ids, func(doc *firestore.DocumentSnapshot) error {
		var s models.Section
		if err := decodeDoc(doc, &s); err != nil {
			return err
		}
		sections = append(sections, &s)
		return nil
	})
	return sections, err
}

func (fr *FirebaseRepository) GetSubSectionsByIDs(ctx context.Context, ids []string) ([]*models.SubSection, error) {
	subSections := make([]*models.SubSection, 0, len(ids))
	err := fr.getAll(ctx, models.SubSectionsCollection, ids, func(doc *firestore.DocumentSnapshot) error {
		var s models.SubSection
		if err := decodeDoc(doc, &s); err != nil {
			return err
		}
		subSections = append(subSections, &s)
		return nil
	})
	return subSections, err
}

func (fr *FirebaseRepository) GetRatingsByIDs(ctx context.Context, ids []string) ([]*models.RatingAndReview, error) {
	ratings := make([]*models.RatingAndReview, 0, len(ids))
	err := fr.getAll(ctx, models.RatingsCollection, ids, func(doc *firestore.DocumentSnapshot) error {
		var r models.RatingAndReview
		if err := decodeDoc(doc, &r); err != nil {
			return err
		}
		ratings = append(ratings, &r)
		return nil
	})
	return ratings, err
}
