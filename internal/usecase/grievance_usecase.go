package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"civicvoice/internal/domain/entity"
	"civicvoice/internal/domain/repository"
	"civicvoice/internal/domain/service"
	"civicvoice/pkg/errors"
	"civicvoice/pkg/logger"
)

type GrievanceOptions struct {
	SocialAutoPost  bool
	AnalysisTimeout time.Duration
	MaxPhotoBytes   int
}

type GrievanceUseCase struct {
	grievanceRepo repository.GrievanceRepository
	socialRepo    repository.SocialPostRepository
	ai            *service.AIGateway
	pincodes      service.PincodeResolver
	photos        service.PhotoStore
	admins        *entity.AdminAllowList
	opts          GrievanceOptions

	background sync.WaitGroup
}

// NewGrievanceUseCase wires the citizen flows. photos may be nil, in which
// case photos are stored inline as data URLs.
func NewGrievanceUseCase(
	grievanceRepo repository.GrievanceRepository,
	socialRepo repository.SocialPostRepository,
	ai *service.AIGateway,
	pincodes service.PincodeResolver,
	photos service.PhotoStore,
	admins *entity.AdminAllowList,
	opts GrievanceOptions,
) *GrievanceUseCase {
	if opts.AnalysisTimeout <= 0 {
		opts.AnalysisTimeout = 45 * time.Second
	}
	return &GrievanceUseCase{
		grievanceRepo: grievanceRepo,
		socialRepo:    socialRepo,
		ai:            ai,
		pincodes:      pincodes,
		photos:        photos,
		admins:        admins,
		opts:          opts,
	}
}

type SubmitInput struct {
	UserID       string
	UserEmail    string
	FullName     string
	DoorNo       string
	Area         string
	Pincode      string
	Municipality string
	Category     string
	Title        string
	Description  string
	Photo        string // data:image/...;base64,...
}

func (uc *GrievanceUseCase) Submit(ctx context.Context, input SubmitInput) (*entity.Grievance, error) {
	if uc.admins.Contains(input.UserEmail) {
		return nil, errors.Forbidden("Admins cannot submit grievances. Please use a citizen account.", nil)
	}

	if strings.TrimSpace(input.Photo) == "" {
		return nil, errors.Invalid("PHOTO_REQUIRED", "Please upload a photo of the grievance.")
	}

	loc, err := uc.pincodes.Lookup(ctx, input.Pincode)
	if err != nil {
		return nil, errors.Unavailable("Pincode lookup failed, please try again", err)
	}
	if !loc.Resolved() {
		return nil, errors.Invalid("PINCODE_UNRESOLVED", "Please enter a valid pincode to auto-fill City and State.")
	}

	contentType, photoBytes, err := decodePhoto(input.Photo, uc.opts.MaxPhotoBytes)
	if err != nil {
		return nil, err
	}

	address := entity.ComposeAddress(input.DoorNo, input.Area, loc.City, loc.State, input.Pincode)
	now := time.Now()
	grievance := &entity.Grievance{
		ID:            uuid.New().String(),
		UserID:        input.UserID,
		UserEmail:     input.UserEmail,
		FullName:      input.FullName,
		Address:       address,
		PublicAddress: entity.PublicAddress(address),
		DoorNo:        input.DoorNo,
		Area:          input.Area,
		City:          loc.City,
		State:         loc.State,
		Pincode:       input.Pincode,
		Municipality:  input.Municipality,
		Category:      input.Category,
		Title:         input.Title,
		Description:   input.Description,
		Status:        entity.StatusPending,
		AIPriority:    entity.AnalysisPending,
		AISummary:     entity.AnalysisPending,
		AITags:        []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if uc.photos != nil {
		url, err := uc.photos.UploadPhoto(ctx, bytes.NewReader(photoBytes), contentType, grievance.ID)
		if err != nil {
			return nil, errors.Internal("Failed to store photo", err)
		}
		grievance.PhotoURL = url
	} else {
		grievance.Photo = input.Photo
	}

	if err := uc.grievanceRepo.Create(ctx, grievance); err != nil {
		if grievance.PhotoURL != "" {
			if delErr := uc.photos.DeletePhoto(context.Background(), grievance.PhotoURL); delErr != nil {
				logger.LogJobError("photo-cleanup", grievance.ID, delErr)
			}
		}
		return nil, err
	}

	uc.background.Add(1)
	go func(g entity.Grievance) {
		defer uc.background.Done()
		uc.analyze(&g)
	}(*grievance)

	return grievance, nil
}

// Wait blocks until in-flight background analyses finish.
func (uc *GrievanceUseCase) Wait() {
	uc.background.Wait()
}

// analyze runs detached from the request so that a client disconnect does
// not abandon the update.
func (uc *GrievanceUseCase) analyze(g *entity.Grievance) {
	ctx, cancel := context.WithTimeout(context.Background(), uc.opts.AnalysisTimeout)
	defer cancel()

	analysis := uc.ai.AnalyzeGrievance(ctx, g.Title, g.Description, g.Category, g.Address)
	if err := uc.grievanceRepo.SetAnalysis(ctx, g.ID, analysis); err != nil {
		logger.LogJobError("analysis", g.ID, err)
		return
	}

	if !uc.opts.SocialAutoPost || g.Pincode == "" {
		return
	}

	// The trending job may have published this grievance while the model
	// was running.
	current, err := uc.grievanceRepo.GetByID(ctx, g.ID)
	if err != nil {
		logger.LogJobError("community-post", g.ID, err)
		return
	}
	if current.PostedToSocial {
		return
	}

	if err := uc.postToCommunity(ctx, g, analysis); err != nil {
		logger.LogJobError("community-post", g.ID, err)
		return
	}

	if err := uc.grievanceRepo.MarkPosted(ctx, g.ID); err != nil {
		logger.LogJobError("mark-posted", g.ID, err)
	}
}

// postToCommunity bumps the report count of the post already covering this
// category and place, or drafts a new one.
func (uc *GrievanceUseCase) postToCommunity(ctx context.Context, g *entity.Grievance, analysis entity.GrievanceAnalysis) error {
	loc := entity.SocialPostLocation{
		Category:      g.Category,
		PublicAddress: g.PublicAddress,
		Pincode:       g.Pincode,
	}

	existing, err := uc.socialRepo.FindByLocation(ctx, loc)
	if err == nil {
		return uc.socialRepo.IncrementReportCount(ctx, existing.ID)
	}
	if !errors.IsNotFound(err) {
		return err
	}

	cause := analysis.Cause
	if cause == "" {
		cause = "Unknown"
	}
	content := uc.ai.GenerateSocialPost(ctx, service.SocialPostInput{
		Title:        g.Title,
		Description:  g.Description,
		Cause:        analysis.Cause,
		Municipality: g.Municipality,
		Address:      g.PublicAddress,
	})

	now := time.Now()
	post := &entity.SocialPost{
		Content:       content,
		Municipality:  g.Municipality,
		Category:      g.Category,
		Address:       g.Address,
		PublicAddress: g.PublicAddress,
		Pincode:       g.Pincode,
		Cause:         cause,
		ReportCount:   1,
		AIGenerated:   true,
		CreatedAt:     now,
		LastUpdated:   now,
	}
	created, err := uc.socialRepo.CreateOrIncrement(ctx, loc, post)
	if err != nil {
		return err
	}
	if !created {
		logger.Debug("community post for %s already existed, incremented instead", entity.GroupKey(loc.Category, loc.PublicAddress))
	}
	return nil
}

func (uc *GrievanceUseCase) ListMine(ctx context.Context, userID string) ([]*entity.Grievance, error) {
	return uc.grievanceRepo.List(ctx, entity.GrievanceFilter{UserID: userID})
}

func (uc *GrievanceUseCase) WatchMine(ctx context.Context, userID string, fn func([]*entity.Grievance)) error {
	return uc.grievanceRepo.Watch(ctx, entity.GrievanceFilter{UserID: userID}, fn)
}

type VerifyResult struct {
	Grievance    *entity.Grievance `json:"grievance"`
	PostsRemoved int               `json:"posts_removed"`
}

// VerifyResolution confirms the fix and takes down community posts that
// mention the grievance.
func (uc *GrievanceUseCase) VerifyResolution(ctx context.Context, userID, id string) (*VerifyResult, error) {
	g, err := uc.ownGrievance(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if g.Status != entity.StatusResolved {
		return nil, errors.Invalid("NOT_RESOLVED", "Only resolved grievances can be verified")
	}

	if err := uc.grievanceRepo.MarkVerified(ctx, id); err != nil {
		return nil, err
	}
	g.Verified = true

	result := &VerifyResult{Grievance: g}

	posts, err := uc.socialRepo.ListAIGenerated(ctx, g.Municipality, g.Category)
	if err != nil {
		logger.LogJobError("post-cleanup", g.ID, err)
		return result, nil
	}
	for _, post := range posts {
		if !post.Mentions(g) {
			continue
		}
		if err := uc.socialRepo.Delete(ctx, post.ID); err != nil {
			logger.LogJobError("post-cleanup", post.ID, err)
			continue
		}
		result.PostsRemoved++
	}

	return result, nil
}

func (uc *GrievanceUseCase) Reopen(ctx context.Context, userID, id string) (*entity.Grievance, error) {
	g, err := uc.ownGrievance(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if g.Status != entity.StatusResolved || g.Verified {
		return nil, errors.Invalid("NOT_RESOLVED", "Only resolved grievances awaiting verification can be reopened")
	}

	if err := uc.grievanceRepo.Reopen(ctx, id); err != nil {
		return nil, err
	}

	g.Status = entity.StatusPending
	g.Verified = false
	g.Reopened = true
	return g, nil
}

func (uc *GrievanceUseCase) ownGrievance(ctx context.Context, userID, id string) (*entity.Grievance, error) {
	g, err := uc.grievanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.UserID != userID {
		return nil, errors.Forbidden("You can only act on your own grievances", nil)
	}
	return g, nil
}

func decodePhoto(dataURL string, maxBytes int) (string, []byte, error) {
	const prefix = "data:"
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, prefix+"image/") || !strings.HasSuffix(header, ";base64") {
		return "", nil, errors.Invalid("PHOTO_INVALID", "Photo must be a base64 encoded image")
	}

	contentType := strings.TrimSuffix(strings.TrimPrefix(header, prefix), ";base64")

	if maxBytes > 0 && base64.StdEncoding.DecodedLen(len(payload)) > maxBytes+2 {
		return "", nil, errors.Invalid("PHOTO_TOO_LARGE", "Photo is too large")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Invalid("PHOTO_INVALID", "Photo must be a base64 encoded image")
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return "", nil, errors.Invalid("PHOTO_TOO_LARGE", "Photo is too large")
	}

	return contentType, data, nil
}
