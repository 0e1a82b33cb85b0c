package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/field-task-api/internal/database"
	"github.com/yukikurage/field-task-api/internal/models"
	"gorm.io/gorm"
)

// GormStatsRepository is a GORM implementation of StatsRepository
type GormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &GormStatsRepository{db: db}
}

func (r *GormStatsRepository) tasks(ctx context.Context, q StatsQuery) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(
			database.ForCompany("tasks", q.CompanyID),
			database.CreatedInPeriod("tasks", q.Year, q.Month),
		)
	if q.UserID != 0 {
		query = query.Where("tasks.user_id = ?", q.UserID)
	}
	return query
}

func (r *GormStatsRepository) TaskTotals(ctx context.Context, q StatsQuery) (*TaskTotals, error) {
	var totals TaskTotals
	err := r.tasks(ctx, q).
		Select("COUNT(*) AS task_count, " +
			"COALESCE(SUM(tasks.fiber_laid), 0) AS fiber_laid, " +
			"COALESCE(SUM(tasks.cto_count), 0) AS cto_total, " +
			"COALESCE(SUM(tasks.splice_box_count), 0) AS splice_box_total").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *GormStatsRepository) TeamStats(ctx context.Context, q StatsQuery) ([]TeamStat, error) {
	var stats []TeamStat
	err := r.tasks(ctx, q).
		Select("users.team AS team, COUNT(tasks.id) AS task_count, COALESCE(SUM(tasks.fiber_laid), 0) AS fiber_laid").
		Joins("JOIN users ON users.id = tasks.user_id").
		Group("users.team").
		Order("task_count DESC").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *GormStatsRepository) UserRanking(ctx context.Context, q StatsQuery, limit int) ([]UserRank, error) {
	var ranking []UserRank
	query := r.tasks(ctx, q).
		Select("users.id AS user_id, users.full_name AS full_name, users.team AS team, " +
			"COUNT(tasks.id) AS task_count, COALESCE(SUM(tasks.fiber_laid), 0) AS fiber_laid").
		Joins("JOIN users ON users.id = tasks.user_id").
		Group("users.id, users.full_name, users.team").
		Order("task_count DESC").
		Order("users.full_name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&ranking).Error; err != nil {
		return nil, err
	}
	return ranking, nil
}

func (r *GormStatsRepository) AssignmentStatusCounts(ctx context.Context, q StatsQuery) (map[models.AssignmentStatus]int64, error) {
	var rows []struct {
		Status models.AssignmentStatus
		Count  int64
	}
	query := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Scopes(
			database.ForCompany("task_assignments", q.CompanyID),
			database.CreatedInPeriod("task_assignments", q.Year, q.Month),
		)
	if q.UserID != 0 {
		query = query.Where("task_assignments.assigned_to_id = ?", q.UserID)
	}
	err := query.
		Select("task_assignments.status AS status, COUNT(*) AS count").
		Group("task_assignments.status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := map[models.AssignmentStatus]int64{
		models.StatusPending:    0,
		models.StatusInProgress: 0,
		models.StatusCompleted:  0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// MonthlyStats buckets the tasks of one year by UTC creation month. Rows are
// summed in Go so the query stays portable across drivers.
func (r *GormStatsRepository) MonthlyStats(ctx context.Context, q StatsQuery) ([]MonthStat, error) {
	months := make([]MonthStat, 12)
	for i := range months {
		months[i] = MonthStat{Month: i + 1, FiberLaid: decimal.Zero}
	}
	if q.Year <= 0 {
		return months, nil
	}

	var rows []struct {
		CreatedAt      time.Time       `gorm:"column:created_at"`
		CTOCount       int64           `gorm:"column:cto_count"`
		SpliceBoxCount int64           `gorm:"column:splice_box_count"`
		FiberLaid      decimal.Decimal `gorm:"column:fiber_laid"`
	}
	yearly := q
	yearly.Month = 0
	err := r.tasks(ctx, yearly).
		Select("tasks.created_at AS created_at, tasks.cto_count AS cto_count, " +
			"tasks.splice_box_count AS splice_box_count, tasks.fiber_laid AS fiber_laid").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		m := &months[row.CreatedAt.UTC().Month()-1]
		m.Tasks++
		m.CTOs += row.CTOCount
		m.SpliceBox += row.SpliceBoxCount
		m.FiberLaid = m.FiberLaid.Add(row.FiberLaid)
	}
	return months, nil
}
