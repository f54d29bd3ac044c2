package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"civicvoice/internal/domain/entity"
	"civicvoice/internal/domain/repository"
	"civicvoice/internal/domain/service"
	"civicvoice/pkg/errors"
)

const (
	allMunicipalities = "All"
	insightsSample    = 20
)

type AdminUseCase struct {
	grievanceRepo repository.GrievanceRepository
	ai            *service.AIGateway
}

func NewAdminUseCase(grievanceRepo repository.GrievanceRepository, ai *service.AIGateway) *AdminUseCase {
	return &AdminUseCase{
		grievanceRepo: grievanceRepo,
		ai:            ai,
	}
}

type AdminListInput struct {
	Municipality string
	ShowVerified bool
}

type GrievanceStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Resolved int `json:"resolved"`
	Verified int `json:"verified"`
	Reopened int `json:"reopened"`
}

type ResolveResult struct {
	Grievance  *entity.Grievance `json:"grievance"`
	MailtoLink string            `json:"mailto_link"`
}

func (uc *AdminUseCase) List(ctx context.Context, input AdminListInput) ([]*entity.Grievance, error) {
	return uc.grievanceRepo.List(ctx, adminFilter(input))
}

func (uc *AdminUseCase) WatchAll(ctx context.Context, input AdminListInput, fn func([]*entity.Grievance)) error {
	return uc.grievanceRepo.Watch(ctx, adminFilter(input), fn)
}

func (uc *AdminUseCase) Stats(ctx context.Context, municipality string) (*GrievanceStats, error) {
	grievances, err := uc.grievanceRepo.List(ctx, adminFilter(AdminListInput{Municipality: municipality, ShowVerified: true}))
	if err != nil {
		return nil, err
	}
	return computeStats(grievances), nil
}

func computeStats(grievances []*entity.Grievance) *GrievanceStats {
	stats := &GrievanceStats{Total: len(grievances)}
	for _, g := range grievances {
		switch g.Status {
		case entity.StatusPending:
			stats.Pending++
		case entity.StatusResolved:
			stats.Resolved++
		}
		if g.Verified {
			stats.Verified++
		}
		if g.Reopened {
			stats.Reopened++
		}
	}
	return stats
}

// Resolve marks the grievance resolved and returns a prefilled mailto link
// the admin's mail client can use to notify the citizen.
func (uc *AdminUseCase) Resolve(ctx context.Context, id string) (*ResolveResult, error) {
	g, err := uc.grievanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.Status == entity.StatusResolved {
		return nil, errors.Conflict("Grievance is already resolved")
	}

	now := time.Now()
	if err := uc.grievanceRepo.MarkResolved(ctx, id, now); err != nil {
		return nil, err
	}
	g.Status = entity.StatusResolved
	g.ResolvedAt = &now

	return &ResolveResult{
		Grievance:  g,
		MailtoLink: resolutionMailto(g),
	}, nil
}

func (uc *AdminUseCase) GenerateInsights(ctx context.Context, municipality string) (string, error) {
	grievances, err := uc.grievanceRepo.List(ctx, adminFilter(AdminListInput{Municipality: municipality, ShowVerified: true}))
	if err != nil {
		return "", err
	}
	if len(grievances) == 0 {
		return "No data to analyze.", nil
	}
	if len(grievances) > insightsSample {
		grievances = grievances[:insightsSample]
	}
	return uc.ai.GenerateAdminSuggestions(ctx, grievances), nil
}

func adminFilter(input AdminListInput) entity.GrievanceFilter {
	filter := entity.GrievanceFilter{ExcludeClosed: !input.ShowVerified}
	if input.Municipality != "" && input.Municipality != allMunicipalities {
		filter.Municipality = input.Municipality
	}
	return filter
}

func resolutionMailto(g *entity.Grievance) string {
	subject := "Grievance Resolved: " + g.Title
	body := fmt.Sprintf("Dear Citizen,\n\nYour grievance regarding \"%s\" has been marked as resolved by the municipality.\n\nPlease log in to the portal to verify the resolution.\n\nThank you,\nMunicipality Team", g.Title)
	return "mailto:" + g.UserEmail + "?subject=" + uriComponent(subject) + "&body=" + uriComponent(body)
}

// uriComponent escapes like JavaScript's encodeURIComponent, which mail
// clients expect (spaces as %20, not +).
func uriComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
