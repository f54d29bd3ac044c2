package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"civicvoice/internal/domain/entity"
	"civicvoice/internal/domain/service"
	"civicvoice/pkg/errors"
)

type memGrievanceRepo struct {
	mu         sync.Mutex
	items      map[string]*entity.Grievance
	creates    int
	listCalled chan struct{}
	listGate   chan struct{}
}

func newMemGrievanceRepo() *memGrievanceRepo {
	return &memGrievanceRepo{items: make(map[string]*entity.Grievance)}
}

func (r *memGrievanceRepo) put(g *entity.Grievance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *g
	r.items[g.ID] = &cp
}

func (r *memGrievanceRepo) get(id string) *entity.Grievance {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.items[id]
	if !ok {
		return nil
	}
	cp := *g
	return &cp
}

func (r *memGrievanceRepo) Create(_ context.Context, g *entity.Grievance) error {
	r.mu.Lock()
	r.creates++
	r.mu.Unlock()
	r.put(g)
	return nil
}

func (r *memGrievanceRepo) GetByID(_ context.Context, id string) (*entity.Grievance, error) {
	if g := r.get(id); g != nil {
		return g, nil
	}
	return nil, errors.NotFound("Grievance", nil)
}

func (r *memGrievanceRepo) List(_ context.Context, f entity.GrievanceFilter) ([]*entity.Grievance, error) {
	if r.listCalled != nil {
		r.listCalled <- struct{}{}
		<-r.listGate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Grievance
	for _, g := range r.items {
		switch {
		case f.UserID != "" && g.UserID != f.UserID,
			f.Municipality != "" && g.Municipality != f.Municipality,
			f.Status != "" && g.Status != f.Status,
			f.Priority != "" && g.AIPriority != f.Priority,
			f.NotPosted && g.PostedToSocial,
			f.ExcludeClosed && g.IsClosed():
			continue
		}
		cp := *g
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memGrievanceRepo) mutate(id string, fn func(g *entity.Grievance)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.items[id]
	if !ok {
		return errors.NotFound("Grievance", nil)
	}
	fn(g)
	return nil
}

func (r *memGrievanceRepo) SetAnalysis(_ context.Context, id string, a entity.GrievanceAnalysis) error {
	return r.mutate(id, func(g *entity.Grievance) {
		g.AIPriority, g.AISummary, g.AITags, g.AICause = a.Priority, a.Summary, a.Tags, a.Cause
	})
}

func (r *memGrievanceRepo) MarkResolved(_ context.Context, id string, at time.Time) error {
	return r.mutate(id, func(g *entity.Grievance) {
		g.Status = entity.StatusResolved
		g.ResolvedAt = &at
	})
}

func (r *memGrievanceRepo) MarkVerified(_ context.Context, id string) error {
	return r.mutate(id, func(g *entity.Grievance) { g.Verified = true })
}

func (r *memGrievanceRepo) Reopen(_ context.Context, id string) error {
	return r.mutate(id, func(g *entity.Grievance) {
		g.Status = entity.StatusPending
		g.Verified = false
		g.Reopened = true
	})
}

func (r *memGrievanceRepo) MarkPosted(_ context.Context, ids ...string) error {
	for _, id := range ids {
		if err := r.mutate(id, func(g *entity.Grievance) { g.PostedToSocial = true }); err != nil {
			return err
		}
	}
	return nil
}

func (r *memGrievanceRepo) Watch(ctx context.Context, f entity.GrievanceFilter, fn func([]*entity.Grievance)) error {
	list, _ := r.List(ctx, f)
	fn(list)
	<-ctx.Done()
	return nil
}

type memSocialRepo struct {
	mu      sync.Mutex
	posts   map[string]*entity.SocialPost
	seq     int
	deleted []string

	// grievances receives the posted flags from CreateForGrievances.
	grievances *memGrievanceRepo
	publishErr error
}

func newMemSocialRepo() *memSocialRepo {
	return &memSocialRepo{posts: make(map[string]*entity.SocialPost)}
}

func (r *memSocialRepo) all() []*entity.SocialPost {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.SocialPost, 0, len(r.posts))
	for _, p := range r.posts {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memSocialRepo) Create(_ context.Context, p *entity.SocialPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if p.ID == "" {
		p.ID = fmt.Sprintf("post-%02d", r.seq)
	}
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *memSocialRepo) List(_ context.Context, limit int) ([]*entity.SocialPost, error) {
	out := r.all()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memSocialRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *memSocialRepo) find(loc entity.SocialPostLocation) *entity.SocialPost {
	for _, p := range r.posts {
		if p.AIGenerated && p.Category == loc.Category && p.PublicAddress == loc.PublicAddress && p.Pincode == loc.Pincode {
			return p
		}
	}
	return nil
}

func (r *memSocialRepo) FindByLocation(_ context.Context, loc entity.SocialPostLocation) (*entity.SocialPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.find(loc); p != nil {
		cp := *p
		return &cp, nil
	}
	return nil, errors.NotFound("Social post for location", nil)
}

func (r *memSocialRepo) IncrementReportCount(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return errors.NotFound("Social post", nil)
	}
	p.ReportCount++
	return nil
}

func (r *memSocialRepo) CreateOrIncrement(ctx context.Context, loc entity.SocialPostLocation, p *entity.SocialPost) (bool, error) {
	r.mu.Lock()
	if existing := r.find(loc); existing != nil {
		existing.ReportCount++
		r.mu.Unlock()
		return false, nil
	}
	r.mu.Unlock()
	return true, r.Create(ctx, p)
}

func (r *memSocialRepo) CreateForGrievances(ctx context.Context, p *entity.SocialPost, grievanceIDs []string) error {
	if r.publishErr != nil {
		return r.publishErr
	}
	if err := r.Create(ctx, p); err != nil {
		return err
	}
	return r.grievances.MarkPosted(ctx, grievanceIDs...)
}

func (r *memSocialRepo) ListAIGenerated(_ context.Context, municipality, category string) ([]*entity.SocialPost, error) {
	var out []*entity.SocialPost
	for _, p := range r.all() {
		if p.AIGenerated && p.Municipality == municipality && p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memSocialRepo) Watch(ctx context.Context, limit int, fn func([]*entity.SocialPost)) error {
	list, _ := r.List(ctx, limit)
	fn(list)
	<-ctx.Done()
	return nil
}

// scriptedGenerator answers prompts by the first matching substring.
type scriptedGenerator struct {
	mu      sync.Mutex
	answers map[string]string
	err     error
	prompts []string

	// gate, when set, holds every call until it is closed.
	gate chan struct{}
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	if g.gate != nil {
		<-g.gate
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	for needle, answer := range g.answers {
		if strings.Contains(prompt, needle) {
			return answer, nil
		}
	}
	return "", fmt.Errorf("no scripted answer")
}

type stubPincodes map[string]service.Location

func (s stubPincodes) Lookup(_ context.Context, pincode string) (*service.Location, error) {
	if loc, ok := s[pincode]; ok {
		return &loc, nil
	}
	return &service.Location{Pincode: pincode}, nil
}

type memPhotoStore struct {
	uploads map[string][]byte
	deleted []string
}

func (s *memPhotoStore) UploadPhoto(_ context.Context, photo io.Reader, contentType, grievanceID string) (string, error) {
	data, err := io.ReadAll(photo)
	if err != nil {
		return "", err
	}
	if s.uploads == nil {
		s.uploads = make(map[string][]byte)
	}
	url := "https://storage.googleapis.com/test/grievances/" + grievanceID + ".jpg"
	s.uploads[url] = data
	return url, nil
}

func (s *memPhotoStore) DeletePhoto(_ context.Context, url string) error {
	s.deleted = append(s.deleted, url)
	return nil
}

func (s *memPhotoStore) Close() error { return nil }

type stubAuth struct {
	deleted    []string
	created    map[string]string
	verified   map[string]bool
	passwords  map[string]string
	sentVerify []string
	createErr  error
}

func newStubAuth() *stubAuth {
	return &stubAuth{
		created:   make(map[string]string),
		verified:  make(map[string]bool),
		passwords: make(map[string]string),
	}
}

func (a *stubAuth) CreateUser(_ context.Context, email, password, _ string) (string, error) {
	if a.createErr != nil {
		return "", a.createErr
	}
	uid := "uid-" + email
	a.created[email] = uid
	a.passwords[email] = password
	return uid, nil
}

func (a *stubAuth) VerifyToken(_ context.Context, token string) (*entity.AuthIdentity, error) {
	email := strings.TrimPrefix(token, "tok-")
	return &entity.AuthIdentity{UID: "uid-" + email, Email: email, EmailVerified: a.verified["uid-"+email]}, nil
}

func (a *stubAuth) IsEmailVerified(_ context.Context, uid string) (bool, error) {
	return a.verified[uid], nil
}

func (a *stubAuth) SignInWithEmailPassword(_ context.Context, email, password string) (*entity.SignInResult, error) {
	if p, ok := a.passwords[email]; !ok || p != password {
		return nil, fmt.Errorf("INVALID_LOGIN_CREDENTIALS")
	}
	return &entity.SignInResult{UID: "uid-" + email, Email: email, IDToken: "tok-" + email, RefreshToken: "ref", ExpiresIn: "3600"}, nil
}

func (a *stubAuth) SendEmailVerification(_ context.Context, idToken string) error {
	a.sentVerify = append(a.sentVerify, idToken)
	return nil
}

func (a *stubAuth) RefreshIDToken(_ context.Context, refreshToken string) (string, string, error) {
	return "new-" + refreshToken, refreshToken, nil
}

func (a *stubAuth) DeleteUser(_ context.Context, uid string) error {
	a.deleted = append(a.deleted, uid)
	return nil
}

func (a *stubAuth) TestConnection(context.Context) error { return nil }

type memUserRepo struct {
	profiles  map[string]*entity.UserProfile
	createErr error
}

func (r *memUserRepo) Create(_ context.Context, p *entity.UserProfile) error {
	if r.createErr != nil {
		return r.createErr
	}
	if r.profiles == nil {
		r.profiles = make(map[string]*entity.UserProfile)
	}
	r.profiles[p.ID] = p
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.UserProfile, error) {
	if p, ok := r.profiles[id]; ok {
		return p, nil
	}
	return nil, errors.NotFound("User profile", nil)
}
