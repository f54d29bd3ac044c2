package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"civicvoice/internal/domain/entity"
	"civicvoice/internal/domain/repository"
	"civicvoice/pkg/errors"
)

const socialPostsCollection = "social_posts"

type firestoreSocialPostRepository struct {
	client *firestore.Client
}

func NewFirestoreSocialPostRepository(client *firestore.Client) repository.SocialPostRepository {
	return &firestoreSocialPostRepository{
		client: client,
	}
}

func (r *firestoreSocialPostRepository) Create(ctx context.Context, post *entity.SocialPost) error {
	ref := r.newRef(post)
	if _, err := ref.Create(ctx, post); err != nil {
		return errors.Internal("Failed to create social post", err)
	}
	return nil
}

func (r *firestoreSocialPostRepository) List(ctx context.Context, limit int) ([]*entity.SocialPost, error) {
	iter := r.feedQuery(limit).Documents(ctx)
	defer iter.Stop()

	var posts []*entity.SocialPost
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate social posts", err)
		}
		post, err := decodeSocialPost(doc)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (r *firestoreSocialPostRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection(socialPostsCollection).Doc(id).Delete(ctx); err != nil {
		return errors.Internal("Failed to delete social post", err)
	}
	return nil
}

func (r *firestoreSocialPostRepository) FindByLocation(ctx context.Context, loc entity.SocialPostLocation) (*entity.SocialPost, error) {
	iter := r.locationQuery(loc).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Social post for location", nil)
		}
		return nil, errors.Internal("Failed to query social posts", err)
	}
	return decodeSocialPost(doc)
}

func (r *firestoreSocialPostRepository) IncrementReportCount(ctx context.Context, id string) error {
	_, err := r.client.Collection(socialPostsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "reportCount", Value: firestore.Increment(1)},
		{Path: "lastUpdated", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Social post", err)
		}
		return errors.Internal("Failed to increment report count", err)
	}
	return nil
}

func (r *firestoreSocialPostRepository) CreateOrIncrement(ctx context.Context, loc entity.SocialPostLocation, post *entity.SocialPost) (bool, error) {
	var created bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		created = false

		docs, err := tx.Documents(r.locationQuery(loc)).GetAll()
		if err != nil {
			return err
		}
		if len(docs) > 0 {
			return tx.Update(docs[0].Ref, []firestore.Update{
				{Path: "reportCount", Value: firestore.Increment(1)},
				{Path: "lastUpdated", Value: time.Now()},
			})
		}

		created = true
		return tx.Create(r.newRef(post), post)
	})
	if err != nil {
		return false, errors.Internal("Failed to record social post", err)
	}
	return created, nil
}

func (r *firestoreSocialPostRepository) CreateForGrievances(ctx context.Context, post *entity.SocialPost, grievanceIDs []string) error {
	ref := r.newRef(post)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(ref, post); err != nil {
			return err
		}
		now := time.Now()
		for _, id := range grievanceIDs {
			err := tx.Update(r.client.Collection(grievancesCollection).Doc(id), []firestore.Update{
				{Path: "postedToSocial", Value: true},
				{Path: "updatedAt", Value: now},
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Internal("Failed to publish social post", err)
	}
	return nil
}

func (r *firestoreSocialPostRepository) ListAIGenerated(ctx context.Context, municipality, category string) ([]*entity.SocialPost, error) {
	docs, err := r.client.Collection(socialPostsCollection).
		Where("municipality", "==", municipality).
		Where("category", "==", category).
		Where("aiGenerated", "==", true).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to query social posts", err)
	}

	posts := make([]*entity.SocialPost, 0, len(docs))
	for _, doc := range docs {
		post, err := decodeSocialPost(doc)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (r *firestoreSocialPostRepository) Watch(ctx context.Context, limit int, fn func([]*entity.SocialPost)) error {
	snapshots := r.feedQuery(limit).Snapshots(ctx)
	defer snapshots.Stop()

	for {
		snap, err := snapshots.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled || err == iterator.Done {
				return nil
			}
			return errors.Internal("Social feed listener failed", err)
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			return errors.Internal("Failed to read social feed snapshot", err)
		}

		posts := make([]*entity.SocialPost, 0, len(docs))
		for _, doc := range docs {
			post, err := decodeSocialPost(doc)
			if err != nil {
				return err
			}
			posts = append(posts, post)
		}
		fn(posts)
	}
}

func (r *firestoreSocialPostRepository) feedQuery(limit int) firestore.Query {
	q := r.client.Collection(socialPostsCollection).OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

func (r *firestoreSocialPostRepository) locationQuery(loc entity.SocialPostLocation) firestore.Query {
	return r.client.Collection(socialPostsCollection).
		Where("category", "==", loc.Category).
		Where("publicAddress", "==", loc.PublicAddress).
		Where("pincode", "==", loc.Pincode).
		Where("aiGenerated", "==", true).
		Limit(1)
}

func (r *firestoreSocialPostRepository) newRef(post *entity.SocialPost) *firestore.DocumentRef {
	coll := r.client.Collection(socialPostsCollection)
	if post.ID == "" {
		ref := coll.NewDoc()
		post.ID = ref.ID
		if post.CreatedAt.IsZero() {
			post.CreatedAt = time.Now()
		}
		return ref
	}
	return coll.Doc(post.ID)
}

func decodeSocialPost(doc *firestore.DocumentSnapshot) (*entity.SocialPost, error) {
	var post entity.SocialPost
	if err := doc.DataTo(&post); err != nil {
		return nil, errors.Internal("Failed to parse social post data", err)
	}
	post.ID = doc.Ref.ID
	return &post, nil
}
