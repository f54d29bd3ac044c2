package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"civicvoice/internal/domain/entity"
	"civicvoice/internal/domain/repository"
	"civicvoice/pkg/errors"
)

const grievancesCollection = "grievances"

type firestoreGrievanceRepository struct {
	client *firestore.Client
}

func NewFirestoreGrievanceRepository(client *firestore.Client) repository.GrievanceRepository {
	return &firestoreGrievanceRepository{
		client: client,
	}
}

func (r *firestoreGrievanceRepository) Create(ctx context.Context, grievance *entity.Grievance) error {
	if grievance.ID == "" {
		grievance.ID = r.client.Collection(grievancesCollection).NewDoc().ID
	}

	now := time.Now()
	if grievance.CreatedAt.IsZero() {
		grievance.CreatedAt = now
	}
	grievance.UpdatedAt = now

	_, err := r.client.Collection(grievancesCollection).Doc(grievance.ID).Create(ctx, grievance)
	if err != nil {
		return errors.Internal("Failed to create grievance", err)
	}
	return nil
}

func (r *firestoreGrievanceRepository) GetByID(ctx context.Context, id string) (*entity.Grievance, error) {
	doc, err := r.client.Collection(grievancesCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Grievance", err)
		}
		return nil, errors.Internal("Failed to get grievance", err)
	}
	return decodeGrievance(doc)
}

// List pushes equality filters into Firestore and sorts in memory, which
// keeps the collection free of composite indexes.
func (r *firestoreGrievanceRepository) List(ctx context.Context, filter entity.GrievanceFilter) ([]*entity.Grievance, error) {
	iter := r.query(filter).Documents(ctx)
	defer iter.Stop()

	var grievances []*entity.Grievance
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate grievances", err)
		}
		g, err := decodeGrievance(doc)
		if err != nil {
			return nil, err
		}
		grievances = append(grievances, g)
	}

	return applyFilter(grievances, filter), nil
}

func (r *firestoreGrievanceRepository) SetAnalysis(ctx context.Context, id string, analysis entity.GrievanceAnalysis) error {
	return r.update(ctx, id, []firestore.Update{
		{Path: "aiPriority", Value: analysis.Priority},
		{Path: "aiSummary", Value: analysis.Summary},
		{Path: "aiTags", Value: analysis.Tags},
		{Path: "aiCause", Value: analysis.Cause},
	})
}

func (r *firestoreGrievanceRepository) MarkResolved(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, []firestore.Update{
		{Path: "status", Value: string(entity.StatusResolved)},
		{Path: "resolvedAt", Value: at},
	})
}

func (r *firestoreGrievanceRepository) MarkVerified(ctx context.Context, id string) error {
	return r.update(ctx, id, []firestore.Update{
		{Path: "verified", Value: true},
	})
}

func (r *firestoreGrievanceRepository) Reopen(ctx context.Context, id string) error {
	return r.update(ctx, id, []firestore.Update{
		{Path: "status", Value: string(entity.StatusPending)},
		{Path: "verified", Value: false},
		{Path: "reopened", Value: true},
	})
}

func (r *firestoreGrievanceRepository) MarkPosted(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(ids))
	for _, id := range ids {
		job, err := bw.Update(r.client.Collection(grievancesCollection).Doc(id), []firestore.Update{
			{Path: "postedToSocial", Value: true},
			{Path: "updatedAt", Value: time.Now()},
		})
		if err != nil {
			bw.End()
			return errors.Internal("Failed to queue posted flag", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return errors.Internal("Failed to mark grievance as posted", err)
		}
	}
	return nil
}

func (r *firestoreGrievanceRepository) Watch(ctx context.Context, filter entity.GrievanceFilter, fn func([]*entity.Grievance)) error {
	snapshots := r.query(filter).Snapshots(ctx)
	defer snapshots.Stop()

	for {
		snap, err := snapshots.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled || err == iterator.Done {
				return nil
			}
			return errors.Internal("Grievance listener failed", err)
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			return errors.Internal("Failed to read grievance snapshot", err)
		}

		grievances := make([]*entity.Grievance, 0, len(docs))
		for _, doc := range docs {
			g, err := decodeGrievance(doc)
			if err != nil {
				return err
			}
			grievances = append(grievances, g)
		}
		fn(applyFilter(grievances, filter))
	}
}

func (r *firestoreGrievanceRepository) query(filter entity.GrievanceFilter) firestore.Query {
	q := r.client.Collection(grievancesCollection).Query
	if filter.UserID != "" {
		q = q.Where("userId", "==", filter.UserID)
	}
	if filter.Municipality != "" {
		q = q.Where("municipality", "==", filter.Municipality)
	}
	if filter.Status != "" {
		q = q.Where("status", "==", string(filter.Status))
	}
	if filter.Priority != "" {
		q = q.Where("aiPriority", "==", filter.Priority)
	}
	return q
}

func (r *firestoreGrievanceRepository) update(ctx context.Context, id string, updates []firestore.Update) error {
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: time.Now()})
	_, err := r.client.Collection(grievancesCollection).Doc(id).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Grievance", err)
		}
		return errors.Internal("Failed to update grievance", err)
	}
	return nil
}

func decodeGrievance(doc *firestore.DocumentSnapshot) (*entity.Grievance, error) {
	var g entity.Grievance
	if err := doc.DataTo(&g); err != nil {
		return nil, errors.Internal("Failed to parse grievance data", err)
	}
	g.ID = doc.Ref.ID
	return &g, nil
}

// applyFilter handles the predicates Firestore cannot express without an
// index and sorts newest first.
func applyFilter(grievances []*entity.Grievance, filter entity.GrievanceFilter) []*entity.Grievance {
	out := grievances[:0]
	for _, g := range grievances {
		if filter.NotPosted && g.PostedToSocial {
			continue
		}
		if filter.ExcludeClosed && g.IsClosed() {
			continue
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
