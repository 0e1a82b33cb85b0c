package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/field-task-api/internal/access"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/repository"
)

const rankingSize = 10

// DashboardService computes read-only aggregates for one company
type DashboardService struct {
	statsRepo repository.StatsRepository
	now       func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(statsRepo repository.StatsRepository) *DashboardService {
	return &DashboardService{statsRepo: statsRepo, now: time.Now}
}

// DashboardInput selects the company and period. A zero company means the
// principal's own, a zero year means all time and a zero month with a year
// means the whole year.
type DashboardInput struct {
	CompanyID uint64
	Year      int
	Month     int
}

// Dashboard is the aggregate view.
type Dashboard struct {
	CompanyID   uint64                            `json:"company_id"`
	Year        int                               `json:"year,omitempty"`
	Month       int                               `json:"month,omitempty"`
	Totals      repository.TaskTotals             `json:"totals"`
	Teams       []repository.TeamStat             `json:"teams"`
	Ranking     []repository.UserRank             `json:"ranking"`
	Assignments map[models.AssignmentStatus]int64 `json:"assignments"`
	MonthlyYear int                               `json:"monthly_year"`
	Monthly     []repository.MonthStat            `json:"monthly"`
}

// GetDashboard aggregates tasks and assignments. Admins see the whole
// company; other users see figures computed over their own rows only.
func (s *DashboardService) GetDashboard(ctx context.Context, p access.Principal, input DashboardInput) (*Dashboard, error) {
	scope, err := access.ListScope(p, input.CompanyID, 0)
	if err != nil {
		return nil, err
	}
	q := repository.StatsQuery{CompanyID: scope.CompanyID, UserID: scope.UserID, Year: input.Year, Month: input.Month}

	totals, err := s.statsRepo.TaskTotals(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to load totals: %w", err)
	}
	teams, err := s.statsRepo.TeamStats(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to load team stats: %w", err)
	}
	ranking, err := s.statsRepo.UserRanking(ctx, q, rankingSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load ranking: %w", err)
	}
	assignments, err := s.statsRepo.AssignmentStatusCounts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment counts: %w", err)
	}

	// The monthly series covers the selected year, or the current one.
	series := q
	if series.Year == 0 {
		series.Year = s.now().Year()
	}
	monthly, err := s.statsRepo.MonthlyStats(ctx, series)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly stats: %w", err)
	}

	return &Dashboard{
		CompanyID:   scope.CompanyID,
		Year:        input.Year,
		Month:       input.Month,
		Totals:      *totals,
		Teams:       teams,
		Ranking:     ranking,
		Assignments: assignments,
		MonthlyYear: series.Year,
		Monthly:     monthly,
	}, nil
}
