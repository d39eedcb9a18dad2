package repository

import (
	"context"
	"errors"
	"fmt"

	"coursemarket/internal/models"
	"coursemarket/internal/qerrors"

	"github.com/golang/glog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoRepository is a Repository backed by MongoDB. Records use string identifiers in _id.
type MongoRepository struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
}

// NewMongoRepository connects to uri and pings the primary. With transactions set, Apply runs
// each plan inside a session transaction, which needs a replica set.
func NewMongoRepository(ctx context.Context, uri, database string, transactions bool) (*MongoRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("error pinging mongo: %w", err)
	}

	return &MongoRepository{
		client:       client,
		db:           client.Database(database),
		transactions: transactions,
	}, nil
}

func (m *MongoRepository) findOne(ctx context.Context, collection, id string, dst interface{}, notFound error) error {
	if id == "" {
		return notFound
	}

	err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(dst)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("error getting %s/%s: %w", collection, id, err)
	}
	return nil
}

// findByIDs loads the records for ids and returns them in the order of ids.
func findByIDs[T any](ctx context.Context, coll *mongo.Collection, ids []string, idOf func(*T) string) ([]*T, error) {
	out := make([]*T, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("error finding %s: %w", coll.Name(), err)
	}
	var found []*T
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", coll.Name(), err)
	}

	byID := make(map[string]*T, len(found))
	for _, doc := range found {
		byID[idOf(doc)] = doc
	}
	for _, id := range ids {
		if doc, ok := byID[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *MongoRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := m.findOne(ctx, models.UsersCollection, id, &user, qerrors.UserNotFoundError); err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *MongoRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	return findByIDs(ctx, m.db.Collection(models.UsersCollection), ids, func(u *models.User) string { return u.ID })
}

func (m *MongoRepository) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := m.findOne(ctx, models.ProfilesCollection, id, &profile, qerrors.DocumentNotFoundError); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (m *MongoRepository) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := m.findOne(ctx, models.CategoriesCollection, id, &category, qerrors.CategoryNotFoundError); err != nil {
		return nil, err
	}
	return &category, nil
}

func (m *MongoRepository) GetCourseByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	if err := m.findOne(ctx, models.CoursesCollection, id, &course, qerrors.CourseNotFoundError); err != nil {
		return nil, err
	}
	return &course, nil
}

func (m *MongoRepository) GetSectionsByIDs(ctx context.Context, ids []string) ([]*models.Section, error) {
	return findByIDs(ctx, m.db.Collection(models.SectionsCollection), ids, func(s *models.Section) string { return s.ID })
}

func (m *MongoRepository) GetSubSectionsByIDs(ctx context.Context, ids []string) ([]*models.SubSection, error) {
	return findByIDs(ctx, m.db.Collection(models.SubSectionsCollection), ids, func(s *models.SubSection) string { return s.ID })
}

func (m *MongoRepository) GetRatingsByIDs(ctx context.Context, ids []string) ([]*models.RatingAndReview, error) {
	return findByIDs(ctx, m.db.Collection(models.RatingsCollection), ids, func(r *models.RatingAndReview) string { return r.ID })
}

func (m *MongoRepository) GetCourseProgress(ctx context.Context, courseID, userID string) (*models.CourseProgress, error) {
	var progress models.CourseProgress
	err := m.db.Collection(models.CourseProgressCollection).
		FindOne(ctx, bson.M{"courseID": courseID, "userId": userID}).
		Decode(&progress)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, qerrors.DocumentNotFoundError
	}
	if err != nil {
		return nil, fmt.Errorf("error getting course progress: %w", err)
	}
	return &progress, nil
}

func (m *MongoRepository) ListCourses(ctx context.Context, filter CourseFilter) ([]*models.Course, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.InstructorID != "" {
		query["instructor"] = filter.InstructorID
	}
	opts := options.Find()
	if filter.NewestFirst {
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	}

	cursor, err := m.db.Collection(models.CoursesCollection).Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	courses := make([]*models.Course, 0)
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, fmt.Errorf("error decoding courses: %w", err)
	}
	return courses, nil
}

// Apply executes the plan step by step. Without transactions a failing step leaves the earlier
// steps in place.
func (m *MongoRepository) Apply(ctx context.Context, plan []Mutation) error {
	if !m.transactions {
		return m.applySteps(ctx, plan)
	}

	sess, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("error starting session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, m.applySteps(sc, plan)
	})
	return err
}

func (m *MongoRepository) applySteps(ctx context.Context, plan []Mutation) error {
	for i, mut := range plan {
		coll := m.db.Collection(mut.Collection)
		byID := bson.M{"_id": mut.ID}

		var err error
		switch mut.Kind {
		case Insert:
			_, err = coll.InsertOne(ctx, mut.Doc)
		case Replace:
			_, err = coll.ReplaceOne(ctx, byID, mut.Doc, options.Replace().SetUpsert(true))
		case AddToSet, RemoveFromSet:
			op := "$addToSet"
			if mut.Kind == RemoveFromSet {
				op = "$pull"
			}
			var res *mongo.UpdateResult
			res, err = coll.UpdateOne(ctx, byID, bson.M{op: bson.M{mut.Field: mut.Value}})
			if err == nil && res.MatchedCount == 0 {
				err = qerrors.DocumentNotFoundError
			}
		case Delete:
			_, err = coll.DeleteOne(ctx, byID)
		default:
			err = fmt.Errorf("unknown mutation kind %v", mut.Kind)
		}

		if err != nil {
			if i > 0 && !m.transactions {
				glog.Errorf("mutation plan stopped after %d of %d steps", i, len(plan))
			}
			return fmt.Errorf("step %d (%s): %w", i, mut, err)
		}
	}
	return nil
}

func (m *MongoRepository) Close() error {
	return m.client.Disconnect(context.Background())
}
