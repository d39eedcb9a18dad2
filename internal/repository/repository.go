package repository

import (
	"context"
	"fmt"

	"coursemarket/internal/models"
)

// Repository is the document store consumed by the course service. Single-record lookups fail
// with a qerrors NotFound error when the record does not exist. The ...ByIDs lookups return
// records in the order of ids and skip ids that do not resolve.
type Repository interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
	GetCategoryByID(ctx context.Context, id string) (*models.Category, error)
	GetCourseByID(ctx context.Context, id string) (*models.Course, error)
	GetSectionsByIDs(ctx context.Context, ids []string) ([]*models.Section, error)
	GetSubSectionsByIDs(ctx context.Context, ids []string) ([]*models.SubSection, error)
	GetRatingsByIDs(ctx context.Context, ids []string) ([]*models.RatingAndReview, error)
	// GetCourseProgress returns the progress of userID in courseID, or a NotFound error.
	GetCourseProgress(ctx context.Context, courseID, userID string) (*models.CourseProgress, error)
	ListCourses(ctx context.Context, filter CourseFilter) ([]*models.Course, error)

	// Apply executes a mutation plan in order. See the individual stores for atomicity.
	Apply(ctx context.Context, plan []Mutation) error
	Close() error
}

// CourseFilter narrows ListCourses. Empty fields match everything.
type CourseFilter struct {
	Status       models.CourseStatus
	InstructorID string
	// NewestFirst orders results by creation time, descending.
	NewestFirst bool
}

func (f CourseFilter) matches(c *models.Course) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.InstructorID != "" && c.Instructor != f.InstructorID {
		return false
	}
	return true
}

type MutationKind int

const (
	// Insert creates Doc under ID and fails if the record already exists.
	Insert MutationKind = iota
	// Replace overwrites the record under ID with Doc.
	Replace
	// AddToSet appends Value to the array Field unless it is already present.
	AddToSet
	// RemoveFromSet removes every occurrence of Value from the array Field.
	RemoveFromSet
	// Delete removes the record. Deleting a missing record is not an error.
	Delete
)

func (k MutationKind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Replace:
		return "replace"
	case AddToSet:
		return "addToSet"
	case RemoveFromSet:
		return "removeFromSet"
	case Delete:
		return "delete"
	}
	return fmt.Sprintf("MutationKind(%d)", int(k))
}

// Mutation is a single write step of a plan.
type Mutation struct {
	Kind       MutationKind
	Collection string
	ID         string
	Doc        interface{}
	Field      string
	Value      string
}

func (m Mutation) String() string {
	if m.Field != "" {
		return fmt.Sprintf("%s %s/%s.%s %s", m.Kind, m.Collection, m.ID, m.Field, m.Value)
	}
	return fmt.Sprintf("%s %s/%s", m.Kind, m.Collection, m.ID)
}

func InsertDoc(collection, id string, doc interface{}) Mutation {
	return Mutation{Kind: Insert, Collection: collection, ID: id, Doc: doc}
}

func ReplaceDoc(collection, id string, doc interface{}) Mutation {
	return Mutation{Kind: Replace, Collection: collection, ID: id, Doc: doc}
}

func AddRef(collection, id, field, value string) Mutation {
	return Mutation{Kind: AddToSet, Collection: collection, ID: id, Field: field, Value: value}
}

func RemoveRef(collection, id, field, value string) Mutation {
	return Mutation{Kind: RemoveFromSet, Collection: collection, ID: id, Field: field, Value: value}
}

func DeleteDoc(collection, id string) Mutation {
	return Mutation{Kind: Delete, Collection: collection, ID: id}
}
