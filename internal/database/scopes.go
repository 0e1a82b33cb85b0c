package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/field-task-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// ForCompany restricts a query to rows of one tenant.
func ForCompany(table string, companyID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table+".company_id = ?", companyID)
	}
}

// CreatedInPeriod restricts a query to rows created during the given month,
// or during the whole year when month is zero. A zero year leaves the query untouched.
func CreatedInPeriod(table string, year, month int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		start, end, ok := period(year, month)
		if !ok {
			return db
		}
		return db.Where(table+".created_at >= ? AND "+table+".created_at < ?", start, end)
	}
}

// period returns the half-open UTC range covered by year and month.
func period(year, month int) (start, end time.Time, ok bool) {
	if year <= 0 || month < 0 || month > 12 {
		return time.Time{}, time.Time{}, false
	}
	if month == 0 {
		start = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0), true
	}
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), true
}
