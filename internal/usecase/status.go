package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
	"github.com/fairyhunter13/jobtrackr/internal/mediator"
	obsctx "github.com/fairyhunter13/jobtrackr/internal/observability"
)

// GetJobApplicationStatusesQuery lists statuses by display order.
type GetJobApplicationStatusesQuery struct{}

// StatusDTO is the public shape of a status.
type StatusDTO struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	DisplayOrder int        `json:"displayOrder"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt"`
}

// StatusSeed is one status to ensure at startup.
type StatusSeed struct {
	Name         string `yaml:"name"`
	DisplayOrder int    `yaml:"displayOrder"`
}

// DefaultStatuses are the stages every installation starts with.
var DefaultStatuses = []StatusSeed{
	{"Wishlist", 1},
	{"Applied", 2},
	{"Phone Screen", 3},
	{"Interview", 4},
	{"Technical Assessment", 5},
	{"Offer", 6},
	{"Accepted", 7},
	{"Rejected", 8},
	{"Withdrawn", 9},
}

// StatusService lists and seeds job application statuses.
type StatusService struct {
	Statuses domain.StatusRepository
}

// NewStatusService constructs a StatusService.
func NewStatusService(statuses domain.StatusRepository) StatusService {
	return StatusService{Statuses: statuses}
}

// Register binds the status query handler.
func (s StatusService) Register(m *mediator.Mediator) {
	mediator.Register[GetJobApplicationStatusesQuery, []StatusDTO](m, mediator.HandlerFunc[GetJobApplicationStatusesQuery, []StatusDTO](s.List))
}

// List returns every status; never nil.
func (s StatusService) List(ctx context.Context, _ GetJobApplicationStatusesQuery) ([]StatusDTO, error) {
	statuses, err := s.Statuses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("op=status.list: %w", err)
	}
	out := make([]StatusDTO, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, StatusDTO{ID: st.ID, Name: st.Name, DisplayOrder: st.DisplayOrder, CreatedAt: st.CreatedAt, UpdatedAt: st.UpdatedAt})
	}
	return out, nil
}

// Seed inserts every seed whose name is not stored yet and returns how many
// were added. Running it again adds nothing.
func (s StatusService) Seed(ctx context.Context, seeds []StatusSeed) (int, error) {
	added := 0
	for _, seed := range seeds {
		taken, err := s.Statuses.NameTaken(ctx, seed.Name)
		if err != nil {
			return added, fmt.Errorf("op=status.seed: %w", err)
		}
		if taken {
			continue
		}
		st, err := domain.NewJobApplicationStatus(seed.Name, seed.DisplayOrder)
		if err != nil {
			return added, fmt.Errorf("op=status.seed %q: %w", seed.Name, err)
		}
		if err := s.Statuses.Add(ctx, st); err != nil {
			return added, fmt.Errorf("op=status.seed: %w", err)
		}
		added++
	}
	obsctx.LoggerFromContext(ctx).Info("statuses seeded", slog.Int("added", added), slog.Int("total", len(seeds)))
	return added, nil
}
