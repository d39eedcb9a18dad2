package repository

import (
	"context"
	"fmt"

	"coursemarket/internal/models"
	"coursemarket/internal/qerrors"

	firebaseSDK "firebase.google.com/go"

	"cloud.google.com/go/firestore"
	"github.com/golang/glog"
	"github.com/mitchellh/mapstructure"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore rejects batches with more writes than this.
const maxBatchWrites = 500

// FirebaseRepository is a Repository backed by Cloud Firestore.
type FirebaseRepository struct {
	firestoreClient *firestore.Client
}

func NewFirebaseRepository(ctx context.Context, app *firebaseSDK.App) (*FirebaseRepository, error) {
	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("Firestore client error: %w", err)
	}

	return &FirebaseRepository{firestoreClient: firestoreClient}, nil
}

// decodeDoc decodes a snapshot into dst, carrying the document ID in the "_id" key.
func decodeDoc(doc *firestore.DocumentSnapshot, dst interface{}) error {
	data := doc.Data()
	data["_id"] = doc.Ref.ID
	if err := mapstructure.Decode(data, dst); err != nil {
		return fmt.Errorf("error destructuring document %s: %w", doc.Ref.Path, err)
	}
	return nil
}

func (fr *FirebaseRepository) getDoc(ctx context.Context, collection, id string, dst interface{}, notFound error) error {
	if id == "" {
		return notFound
	}

	doc, err := fr.firestoreClient.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("error getting %s/%s: %w", collection, id, err)
	}
	return decodeDoc(doc, dst)
}

// getAll fetches the documents for ids in order, skipping the ones that do not exist.
func (fr *FirebaseRepository) getAll(ctx context.Context, collection string, ids []string, decode func(doc *firestore.DocumentSnapshot) error) error {
	if len(ids) == 0 {
		return nil
	}

	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		refs = append(refs, fr.firestoreClient.Collection(collection).Doc(id))
	}
	if len(refs) == 0 {
		return nil
	}

	docs, err := fr.firestoreClient.GetAll(ctx, refs)
	if err != nil {
		return fmt.Errorf("error getting %s: %w", collection, err)
	}
	for _, doc := range docs {
		if !doc.Exists() {
			continue
		}
		if err := decode(doc); err != nil {
			return err
		}
	}
	return nil
}

// Apply commits the plan as a single atomic write batch. Plans larger than one batch are
// committed batch by batch and are only atomic per batch.
func (fr *FirebaseRepository) Apply(ctx context.Context, plan []Mutation) error {
	if len(plan) == 0 {
		return nil
	}
	if len(plan) > maxBatchWrites {
		glog.Warningf("mutation plan of %d writes is split across batches and is not atomic", len(plan))
	}

	for start := 0; start < len(plan); start += maxBatchWrites {
		end := min(start+maxBatchWrites, len(plan))

		batch := fr.firestoreClient.Batch()
		for _, m := range plan[start:end] {
			ref := fr.firestoreClient.Collection(m.Collection).Doc(m.ID)
			switch m.Kind {
			case Insert:
				batch.Create(ref, m.Doc)
			case Replace:
				batch.Set(ref, m.Doc)
			case AddToSet:
				batch.Update(ref, []firestore.Update{{Path: m.Field, Value: firestore.ArrayUnion(m.Value)}})
			case RemoveFromSet:
				batch.Update(ref, []firestore.Update{{Path: m.Field, Value: firestore.ArrayRemove(m.Value)}})
			case Delete:
				batch.Delete(ref)
			default:
				return fmt.Errorf("unknown mutation kind %v", m.Kind)
			}
		}

		if _, err := batch.Commit(ctx); err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("error committing writes %d-%d: %w", start, end, qerrors.DocumentNotFoundError)
			}
			return fmt.Errorf("error committing writes %d-%d: %w", start, end, err)
		}
	}
	return nil
}

func (fr *FirebaseRepository) Close() error {
	return fr.firestoreClient.Close()
}

func (fr *FirebaseRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := fr.getDoc(ctx, models.UsersCollection, id, &user, qerrors.UserNotFoundError); err != nil {
		return nil, err
	}
	return &user, nil
}

func (fr *FirebaseRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	users := make([]*models.User, 0, len(ids))
	err := fr.getAll(ctx, models.UsersCollection, ids, func(doc *firestore.DocumentSnapshot) error {
		var u models.User
		if err := decodeDoc(doc, &u); err != nil {
			return err
		}
		users = append(users, &u)
		return nil
	})
	return users, err
}

func (fr *FirebaseRepository) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := fr.getDoc(ctx, models.ProfilesCollection, id, &profile, qerrors.DocumentNotFoundError); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (fr *FirebaseRepository) GetCourseProgress(ctx context.Context, courseID, userID string) (*models.CourseProgress, error) {
	iter := fr.firestoreClient.Collection(models.CourseProgressCollection).
		Where("courseID", "==", courseID).
		Where("userId", "==", userID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, qerrors.DocumentNotFoundError
	}
	if err != nil {
		return nil, fmt.Errorf("error getting course progress: %w", err)
	}

	var progress models.CourseProgress
	if err := decodeDoc(doc, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}
