package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"civicvoice/internal/domain/entity"
	"civicvoice/internal/domain/repository"
	"civicvoice/internal/domain/service"
	"civicvoice/pkg/logger"
)

const feedLimit = 50

type TrendingOptions struct {
	Interval  time.Duration
	Threshold int
	// Priority, when set, only considers grievances analysed at that
	// priority.
	Priority string
}

type CommunityUseCase struct {
	grievanceRepo repository.GrievanceRepository
	socialRepo    repository.SocialPostRepository
	ai            *service.AIGateway
	opts          TrendingOptions

	running sync.Mutex
}

func NewCommunityUseCase(
	grievanceRepo repository.GrievanceRepository,
	socialRepo repository.SocialPostRepository,
	ai *service.AIGateway,
	opts TrendingOptions,
) *CommunityUseCase {
	if opts.Threshold < 1 {
		opts.Threshold = 1
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	return &CommunityUseCase{
		grievanceRepo: grievanceRepo,
		socialRepo:    socialRepo,
		ai:            ai,
		opts:          opts,
	}
}

type TrendingReport struct {
	Skipped    bool     `json:"skipped"`
	Candidates int      `json:"candidates"`
	Published  []string `json:"published"`
}

// CheckTrending publishes one post for every bucket of unposted pending
// grievances that reached the threshold. A call made while another is still
// running returns immediately with Skipped set.
func (uc *CommunityUseCase) CheckTrending(ctx context.Context) (*TrendingReport, error) {
	if !uc.running.TryLock() {
		return &TrendingReport{Skipped: true, Published: []string{}}, nil
	}
	defer uc.running.Unlock()

	grievances, err := uc.grievanceRepo.List(ctx, entity.GrievanceFilter{
		Status:    entity.StatusPending,
		NotPosted: true,
		Priority:  uc.opts.Priority,
	})
	if err != nil {
		return nil, err
	}

	buckets := make(map[string][]*entity.Grievance)
	candidates := 0
	for _, g := range grievances {
		// still being analysed; the submission path posts it
		if g.AIPriority == entity.AnalysisPending {
			continue
		}
		key := g.GroupKey()
		buckets[key] = append(buckets[key], g)
		candidates++
	}

	keys := make([]string, 0, len(buckets))
	for key, members := range buckets {
		if len(members) >= uc.opts.Threshold {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	report := &TrendingReport{Candidates: candidates, Published: []string{}}
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		post, err := uc.publish(ctx, buckets[key])
		if err != nil {
			logger.LogJobError("trending", key, err)
			continue
		}
		report.Published = append(report.Published, post.ID)
	}

	return report, nil
}

func (uc *CommunityUseCase) publish(ctx context.Context, members []*entity.Grievance) (*entity.SocialPost, error) {
	first := members[0]
	public := first.PublicAddress
	if public == "" {
		public = entity.PublicAddress(first.Address)
	}

	content := uc.ai.GenerateSocialPost(ctx, service.SocialPostInput{
		Title:        first.Title,
		Description:  first.Description,
		Cause:        first.AICause,
		Municipality: first.Municipality,
		Address:      public,
	})
	if n := len(members); n > 1 {
		content = trendingBanner(n, first.Municipality, first.Category, public) + content
	}

	cause := first.AICause
	if cause == "" {
		cause = "Unknown"
	}

	now := time.Now()
	post := &entity.SocialPost{
		Content:       content,
		Municipality:  first.Municipality,
		Category:      first.Category,
		Address:       first.Address,
		PublicAddress: public,
		Pincode:       first.Pincode,
		Cause:         cause,
		ReportCount:   len(members),
		AIGenerated:   true,
		CreatedAt:     now,
		LastUpdated:   now,
	}
	ids := make([]string, len(members))
	for i, g := range members {
		ids[i] = g.ID
	}
	if err := uc.socialRepo.CreateForGrievances(ctx, post, ids); err != nil {
		return nil, err
	}

	logger.Info("trending: published post %s for %d reports (%s)", post.ID, len(members), first.GroupKey())
	return post, nil
}

func trendingBanner(n int, municipality, category, publicAddress string) string {
	return fmt.Sprintf("⚠️ TRENDING: %d reports in %s regarding %s near %s.\n\n", n, municipality, category, publicAddress)
}

// StartTrendingJob runs CheckTrending once immediately and then on every
// tick until ctx is done.
func (uc *CommunityUseCase) StartTrendingJob(ctx context.Context) {
	ticker := time.NewTicker(uc.opts.Interval)

	go func() {
		defer ticker.Stop()

		uc.runTrendingTick(ctx)
		for {
			select {
			case <-ticker.C:
				uc.runTrendingTick(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	logger.Info("Trending job started (checking every %s, threshold %d)", uc.opts.Interval, uc.opts.Threshold)
}

func (uc *CommunityUseCase) runTrendingTick(ctx context.Context) {
	report, err := uc.CheckTrending(ctx)
	if err != nil {
		logger.Error("Trending job error: %v", err)
		return
	}
	if report.Skipped {
		logger.Warn("Trending job: previous run still in progress, skipping tick")
	}
}

func (uc *CommunityUseCase) ListFeed(ctx context.Context, limit int) ([]*entity.SocialPost, error) {
	if limit <= 0 || limit > feedLimit {
		limit = feedLimit
	}
	return uc.socialRepo.List(ctx, limit)
}

func (uc *CommunityUseCase) WatchFeed(ctx context.Context, fn func([]*entity.SocialPost)) error {
	return uc.socialRepo.Watch(ctx, feedLimit, fn)
}
