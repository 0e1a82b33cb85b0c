// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory sqlite database with foreign keys enforced.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A second connection would see a different in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.Exec("PRAGMA foreign_keys=ON").Error)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// CreateCompany inserts an active company.
func CreateCompany(t *testing.T, db *gorm.DB, name, slug string) *models.Company {
	t.Helper()

	company, err := models.NewCompany(name, slug)
	require.NoError(t, err)
	require.NoError(t, db.Create(company).Error)
	return company
}

// CreateUser inserts an active user with a real bcrypt hash of password.
func CreateUser(t *testing.T, db *gorm.DB, companyID uint64, username, password string, role models.Role) *models.User {
	t.Helper()

	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	user, err := models.NewUser(companyID, username, hash, username+" full", models.TeamFusao, role)
	require.NoError(t, err)
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateSuperAdmin inserts a super-admin in companyID.
func CreateSuperAdmin(t *testing.T, db *gorm.DB, companyID uint64, username, password string) *models.User {
	t.Helper()

	user := CreateUser(t, db, companyID, username, password, models.RoleAdmin)
	require.NoError(t, db.Model(user).Update("is_super_admin", true).Error)
	user.IsSuperAdmin = true
	return user
}
