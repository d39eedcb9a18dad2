package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"coursemarket/internal/models"
	"coursemarket/internal/qerrors"
)

type docKey struct {
	collection string
	id         string
}

// MemoryRepository is an in-process Repository for local runs and tests. Apply is atomic: a
// plan either commits in full or leaves the store untouched.
type MemoryRepository struct {
	lock    *sync.RWMutex
	docs    map[string]map[string]interface{}
	applied int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		lock: &sync.RWMutex{},
		docs: make(map[string]map[string]interface{}),
	}
}

// Seed inserts records directly, deriving the collection from each record's type.
func (m *MemoryRepository) Seed(docs ...interface{}) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, doc := range docs {
		collection, id, err := collectionOf(doc)
		if err != nil {
			return err
		}
		if m.docs[collection] == nil {
			m.docs[collection] = make(map[string]interface{})
		}
		m.docs[collection][id] = clone(doc)
	}
	return nil
}

// AppliedMutations returns the number of mutations committed through Apply.
func (m *MemoryRepository) AppliedMutations() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.applied
}

// Count returns the number of records in collection.
func (m *MemoryRepository) Count(collection string) int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.docs[collection])
}

func (m *MemoryRepository) get(collection, id string) (interface{}, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	doc, ok := m.docs[collection][id]
	if !ok {
		return nil, false
	}
	return clone(doc), true
}

func (m *MemoryRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	doc, ok := m.get(models.UsersCollection, id)
	if !ok {
		return nil, qerrors.UserNotFoundError
	}
	return doc.(*models.User), nil
}

func (m *MemoryRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if doc, ok := m.get(models.UsersCollection, id); ok {
			users = append(users, doc.(*models.User))
		}
	}
	return users, nil
}

func (m *MemoryRepository) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	doc, ok := m.get(models.ProfilesCollection, id)
	if !ok {
		return nil, qerrors.DocumentNotFoundError
	}
	return doc.(*models.Profile), nil
}

func (m *MemoryRepository) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	doc, ok := m.get(models.CategoriesCollection, id)
	if !ok {
		return nil, qerrors.CategoryNotFoundError
	}
	return doc.(*models.Category), nil
}

func (m *MemoryRepository) GetCourseByID(ctx context.Context, id string) (*models.Course, error) {
	doc, ok := m.get(models.CoursesCollection, id)
	if !ok {
		return nil, qerrors.CourseNotFoundError
	}
	return doc.(*models.Course), nil
}

func (m *MemoryRepository) GetSectionsByIDs(ctx context.Context, ids []string) ([]*models.Section, error) {
	sections := make([]*models.Section, 0, len(ids))
	for _, id := range ids {
		if doc, ok := m.get(models.SectionsCollection, id); ok {
			sections = append(sections, doc.(*models.Section))
		}
	}
	return sections, nil
}

func (m *MemoryRepository) GetSubSectionsByIDs(ctx context.Context, ids []string) ([]*models.SubSection, error) {
	subSections := make([]*models.SubSection, 0, len(ids))
	for _, id := range ids {
		if doc, ok := m.get(models.SubSectionsCollection, id); ok {
			subSections = append(subSections, doc.(*models.SubSection))
		}
	}
	return subSections, nil
}

func (m *MemoryRepository) GetRatingsByIDs(ctx context.Context, ids []string) ([]*models.RatingAndReview, error) {
	ratings := make([]*models.RatingAndReview, 0, len(ids))
	for _, id := range ids {
		if doc, ok := m.get(models.RatingsCollection, id); ok {
			ratings = append(ratings, doc.(*models.RatingAndReview))
		}
	}
	return ratings, nil
}

func (m *MemoryRepository) GetCourseProgress(ctx context.Context, courseID, userID string) (*models.CourseProgress, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	for _, doc := range m.docs[models.CourseProgressCollection] {
		p := doc.(*models.CourseProgress)
		if p.CourseID == courseID && p.UserID == userID {
			return clone(p).(*models.CourseProgress), nil
		}
	}
	return nil, qerrors.DocumentNotFoundError
}

func (m *MemoryRepository) ListCourses(ctx context.Context, filter CourseFilter) ([]*models.Course, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	courses := make([]*models.Course, 0)
	for _, doc := range m.docs[models.CoursesCollection] {
		c := doc.(*models.Course)
		if filter.matches(c) {
			courses = append(courses, clone(c).(*models.Course))
		}
	}

	sort.SliceStable(courses, func(i, j int) bool {
		if courses[i].CreatedAt.Equal(courses[j].CreatedAt) {
			return courses[i].ID < courses[j].ID
		}
		if filter.NewestFirst {
			return courses[i].CreatedAt.After(courses[j].CreatedAt)
		}
		return courses[i].CreatedAt.Before(courses[j].CreatedAt)
	})
	return courses, nil
}

func (m *MemoryRepository) Apply(ctx context.Context, plan []Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	// Deleted records are staged as nil.
	staged := make(map[docKey]interface{})
	lookup := func(k docKey) (interface{}, bool) {
		if doc, ok := staged[k]; ok {
			return doc, doc != nil
		}
		doc, ok := m.docs[k.collection][k.id]
		if !ok {
			return nil, false
		}
		c := clone(doc)
		staged[k] = c
		return c, true
	}

	for _, mut := range plan {
		k := docKey{mut.Collection, mut.ID}
		switch mut.Kind {
		case Insert:
			if _, exists := lookup(k); exists {
				return fmt.Errorf("%s: record already exists", mut)
			}
			staged[k] = clone(mut.Doc)
		case Replace:
			staged[k] = clone(mut.Doc)
		case AddToSet, RemoveFromSet:
			doc, ok := lookup(k)
			if !ok {
				return fmt.Errorf("%s: %w", mut, qerrors.DocumentNotFoundError)
			}
			refs, err := refList(doc, mut.Field)
			if err != nil {
				return fmt.Errorf("%s: %w", mut, err)
			}
			if mut.Kind == AddToSet {
				*refs = addToSet(*refs, mut.Value)
			} else {
				*refs = removeFromSet(*refs, mut.Value)
			}
		case Delete:
			staged[k] = nil
		default:
			return fmt.Errorf("unknown mutation kind %v", mut.Kind)
		}
	}

	for k, doc := range staged {
		if doc == nil {
			delete(m.docs[k.collection], k.id)
			continue
		}
		if m.docs[k.collection] == nil {
			m.docs[k.collection] = make(map[string]interface{})
		}
		m.docs[k.collection][k.id] = doc
	}
	m.applied += len(plan)
	return nil
}

func (m *MemoryRepository) Close() error {
	return nil
}

func addToSet(refs []string, value string) []string {
	for _, r := range refs {
		if r == value {
			return refs
		}
	}
	return append(refs, value)
}

func removeFromSet(refs []string, value string) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if r != value {
			out = append(out, r)
		}
	}
	return out
}

func collectionOf(doc interface{}) (string, string, error) {
	switch d := doc.(type) {
	case *models.User:
		return models.UsersCollection, d.ID, nil
	case *models.Profile:
		return models.ProfilesCollection, d.ID, nil
	case *models.Category:
		return models.CategoriesCollection, d.ID, nil
	case *models.Course:
		return models.CoursesCollection, d.ID, nil
	case *models.Section:
		return models.SectionsCollection, d.ID, nil
	case *models.SubSection:
		return models.SubSectionsCollection, d.ID, nil
	case *models.RatingAndReview:
		return models.RatingsCollection, d.ID, nil
	case *models.CourseProgress:
		return models.CourseProgressCollection, d.ID, nil
	}
	return "", "", fmt.Errorf("unsupported record type %T", doc)
}

// refList returns a pointer to the reference array named field on doc.
func refList(doc interface{}, field string) (*[]string, error) {
	switch d := doc.(type) {
	case *models.User:
		if field == models.UserCoursesField {
			return &d.Courses, nil
		}
	case *models.Category:
		if field == models.CategoryCoursesField {
			return &d.Courses, nil
		}
	case *models.Course:
		switch field {
		case models.CourseStudentsEnrolledField:
			return &d.StudentsEnrolled, nil
		case "courseContent":
			return &d.CourseContent, nil
		case "ratingAndReviews":
			return &d.RatingAndReviews, nil
		}
	case *models.Section:
		if field == models.SectionSubSectionField {
			return &d.SubSection, nil
		}
	}
	return nil, fmt.Errorf("%T has no reference list %q", doc, field)
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func clone(doc interface{}) interface{} {
	switch d := doc.(type) {
	case *models.User:
		c := *d
		c.Courses = cloneStrings(d.Courses)
		return &c
	case *models.Profile:
		c := *d
		return &c
	case *models.Category:
		c := *d
		c.Courses = cloneStrings(d.Courses)
		return &c
	case *models.Course:
		c := *d
		c.Tag = cloneStrings(d.Tag)
		c.Instructions = cloneStrings(d.Instructions)
		c.CourseContent = cloneStrings(d.CourseContent)
		c.StudentsEnrolled = cloneStrings(d.StudentsEnrolled)
		c.RatingAndReviews = cloneStrings(d.RatingAndReviews)
		return &c
	case *models.Section:
		c := *d
		c.SubSection = cloneStrings(d.SubSection)
		return &c
	case *models.SubSection:
		c := *d
		return &c
	case *models.RatingAndReview:
		c := *d
		return &c
	case *models.CourseProgress:
		c := *d
		c.CompletedVideos = cloneStrings(d.CompletedVideos)
		return &c
	}
	return doc
}
