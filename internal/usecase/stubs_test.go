package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
)

type stubCompanies struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]domain.Company
	hasApp map[uuid.UUID]bool
	err    error
}

func newStubCompanies() *stubCompanies {
	return &stubCompanies{byID: map[uuid.UUID]domain.Company{}, hasApp: map[uuid.UUID]bool{}}
}

func (r *stubCompanies) Add(_ domain.Context, c *domain.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.byID[c.ID] = *c
	return nil
}

func (r *stubCompanies) Update(_ domain.Context, c *domain.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.ID] = *c
	return nil
}

func (r *stubCompanies) Delete(_ domain.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasApp[id] {
		return domain.NewDomainError("Company has job applications and cannot be deleted.")
	}
	delete(r.byID, id)
	return nil
}

func (r *stubCompanies) Get(_ domain.Context, id uuid.UUID) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *stubCompanies) List(_ domain.Context) ([]domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Company
	for _, c := range r.byID {
		out = append(out, c)
	}
	return out, nil
}

func (r *stubCompanies) Exists(_ domain.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.byID[id]
	return ok, nil
}

func (r *stubCompanies) NameTaken(_ domain.Context, name string, exceptID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	for _, c := range r.byID {
		if c.Name == name && c.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

type stubStatuses struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.JobApplicationStatus
}

func newStubStatuses() *stubStatuses {
	return &stubStatuses{byID: map[uuid.UUID]domain.JobApplicationStatus{}}
}

func (r *stubStatuses) Add(_ domain.Context, s *domain.JobApplicationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.ID] = *s
	return nil
}

func (r *stubStatuses) List(_ domain.Context) ([]domain.JobApplicationStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.JobApplicationStatus
	for _, s := range r.byID {
		out = append(out, s)
	}
	return out, nil
}

func (r *stubStatuses) Exists(_ domain.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byID[id]
	return ok, nil
}

func (r *stubStatuses) NameTaken(_ domain.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byID {
		if s.Name == name {
			return true, nil
		}
	}
	return false, nil
}

type stubApplications struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]domain.JobApplication
	companies *stubCompanies
	statuses  *stubStatuses
}

func newStubApplications(c *stubCompanies, s *stubStatuses) *stubApplications {
	return &stubApplications{byID: map[uuid.UUID]domain.JobApplication{}, companies: c, statuses: s}
}

func (r *stubApplications) Add(_ domain.Context, ja *domain.JobApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[ja.ID] = *ja
	return nil
}

func (r *stubApplications) Update(_ domain.Context, ja *domain.JobApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[ja.ID] = *ja
	return nil
}

func (r *stubApplications) Delete(_ domain.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *stubApplications) Get(_ domain.Context, id uuid.UUID) (*domain.JobApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ja, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ja, nil
}

func (r *stubApplications) details(ja domain.JobApplication) domain.JobApplicationDetails {
	d := domain.JobApplicationDetails{JobApplication: ja}
	if c, ok := r.companies.byID[ja.CompanyID]; ok {
		d.CompanyName = c.Name
	}
	if s, ok := r.statuses.byID[ja.StatusID]; ok {
		d.StatusName = s.Name
	}
	return d
}

func (r *stubApplications) GetDetails(_ domain.Context, id uuid.UUID) (domain.JobApplicationDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ja, ok := r.byID[id]
	if !ok {
		return domain.JobApplicationDetails{}, domain.ErrNotFound
	}
	return r.details(ja), nil
}

func (r *stubApplications) ListDetails(_ domain.Context) ([]domain.JobApplicationDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.JobApplicationDetails
	for _, ja := range r.byID {
		out = append(out, r.details(ja))
	}
	return out, nil
}

type stubUsers struct {
	mu      sync.Mutex
	byEmail map[string]domain.User
	err     error
}

func newStubUsers() *stubUsers { return &stubUsers{byEmail: map[string]domain.User{}} }

func (r *stubUsers) Add(_ domain.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEmail[u.Email] = *u
	return nil
}

func (r *stubUsers) GetByEmail(_ domain.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *stubUsers) EmailTaken(_ domain.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *stubUsers) UserNameTaken(_ domain.Context, userName string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.UserName == userName {
			return true, nil
		}
	}
	return false, nil
}

type stubTokens struct {
	mu     sync.Mutex
	tokens []domain.RefreshToken
}

func (r *stubTokens) Add(_ domain.Context, t *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = append(r.tokens, *t)
	return nil
}

func (r *stubTokens) DeleteExpired(_ domain.Context, _ time.Time) (int64, error) { return 0, nil }

// stubAttempts locks after max failures.
type stubAttempts struct {
	mu       sync.Mutex
	max      int
	failures map[string]int
	locked   map[string]bool
}

func newStubAttempts(max int) *stubAttempts {
	return &stubAttempts{max: max, failures: map[string]int{}, locked: map[string]bool{}}
}

func (a *stubAttempts) LockedFor(_ domain.Context, key string) (time.Duration, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.locked[key] {
		return time.Minute, nil
	}
	return 0, nil
}

func (a *stubAttempts) RecordFailure(_ domain.Context, key string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures[key]++
	if a.failures[key] >= a.max {
		a.locked[key] = true
		return true, nil
	}
	return false, nil
}

func (a *stubAttempts) Reset(_ domain.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.failures, key)
	return nil
}

// plainHasher stores passwords with a prefix; tests only.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "plain:" + p, nil }
func (plainHasher) Verify(p, enc string) bool     { return enc == "plain:"+p }

// countingHasher records the hashes Verify was asked to check.
type countingHasher struct {
	plainHasher
	mu       sync.Mutex
	verified []string
}

func (h *countingHasher) Verify(p, enc string) bool {
	h.mu.Lock()
	h.verified = append(h.verified, enc)
	h.mu.Unlock()
	return h.plainHasher.Verify(p, enc)
}

type stubIssuer struct{ n int }

func (i *stubIssuer) AccessToken(u *domain.User) (string, error) { return "access-" + u.UserName, nil }
func (i *stubIssuer) RefreshToken() (string, error) {
	i.n++
	return "refresh-" + string(rune('a'+i.n)), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var errBoom = errors.New("boom")
