package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicvoice/internal/domain/entity"
	"civicvoice/internal/domain/service"
	"civicvoice/pkg/errors"
)

func seedAdminData(repo *memGrievanceRepo) {
	now := time.Now()
	repo.put(&entity.Grievance{ID: "a", Municipality: "North", Category: "Roads", Title: "Pothole", Status: entity.StatusPending, UserEmail: "x@y.com", CreatedAt: now.Add(-3 * time.Minute)})
	repo.put(&entity.Grievance{ID: "b", Municipality: "North", Category: "Water", Title: "Leak", Status: entity.StatusResolved, CreatedAt: now.Add(-2 * time.Minute)})
	repo.put(&entity.Grievance{ID: "c", Municipality: "North", Category: "Water", Title: "Dry tap", Status: entity.StatusResolved, Verified: true, CreatedAt: now.Add(-time.Minute)})
	repo.put(&entity.Grievance{ID: "d", Municipality: "South", Category: "Roads", Title: "Crack", Status: entity.StatusPending, Reopened: true, CreatedAt: now})
}

func TestAdminList_FiltersAndHidesClosed(t *testing.T) {
	repo := newMemGrievanceRepo()
	seedAdminData(repo)
	uc := NewAdminUseCase(repo, service.NewAIGateway(nil))
	ctx := context.Background()

	all, err := uc.List(ctx, AdminListInput{Municipality: "All"})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "b", "a"}, ids(all))

	north, err := uc.List(ctx, AdminListInput{Municipality: "North", ShowVerified: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids(north))
}

func TestAdminStats(t *testing.T) {
	repo := newMemGrievanceRepo()
	seedAdminData(repo)
	uc := NewAdminUseCase(repo, service.NewAIGateway(nil))

	stats, err := uc.Stats(context.Background(), "All")
	require.NoError(t, err)
	assert.Equal(t, GrievanceStats{Total: 4, Pending: 2, Resolved: 2, Verified: 1, Reopened: 1}, *stats)

	stats, err = uc.Stats(context.Background(), "South")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
}

func TestAdminResolve_SetsStatusAndBuildsMailto(t *testing.T) {
	repo := newMemGrievanceRepo()
	seedAdminData(repo)
	uc := NewAdminUseCase(repo, service.NewAIGateway(nil))

	result, err := uc.Resolve(context.Background(), "a")
	require.NoError(t, err)

	stored := repo.get("a")
	assert.Equal(t, entity.StatusResolved, stored.Status)
	require.NotNil(t, stored.ResolvedAt)

	assert.True(t, strings.HasPrefix(result.MailtoLink, "mailto:x@y.com?subject=Grievance%20Resolved%3A%20Pothole&body=Dear%20Citizen%2C"))
	assert.NotContains(t, result.MailtoLink, "+")

	_, err = uc.Resolve(context.Background(), "a")
	assert.True(t, errors.Is(err, "CONFLICT"))

	_, err = uc.Resolve(context.Background(), "missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestAdminInsights(t *testing.T) {
	ctx := context.Background()

	empty := NewAdminUseCase(newMemGrievanceRepo(), service.NewAIGateway(nil))
	text, err := empty.GenerateInsights(ctx, "All")
	require.NoError(t, err)
	assert.Equal(t, "No data to analyze.", text)

	repo := newMemGrievanceRepo()
	for i := 0; i < 25; i++ {
		repo.put(&entity.Grievance{ID: fmt.Sprintf("g%02d", i), Category: "Roads", Title: fmt.Sprintf("Issue %02d", i), Status: entity.StatusPending, CreatedAt: time.Now().Add(time.Duration(i) * time.Second)})
	}
	gen := &scriptedGenerator{answers: map[string]string{"senior data analyst": "Fix roads first."}}
	uc := NewAdminUseCase(repo, service.NewAIGateway(gen))

	text, err = uc.GenerateInsights(ctx, "All")
	require.NoError(t, err)
	assert.Equal(t, "Fix roads first.", text)
	require.Len(t, gen.prompts, 1)
	assert.Equal(t, 20, strings.Count(gen.prompts[0], "- Roads: "))
	assert.Contains(t, gen.prompts[0], "Issue 24")
	assert.NotContains(t, gen.prompts[0], "Issue 04")

	gen.err = fmt.Errorf("boom")
	text, err = uc.GenerateInsights(ctx, "All")
	require.NoError(t, err)
	assert.Equal(t, "Unable to generate suggestions at this time.", text)
}

func ids(list []*entity.Grievance) []string {
	out := make([]string, len(list))
	for i, g := range list {
		out[i] = g.ID
	}
	return out
}
