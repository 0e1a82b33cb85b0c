package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/field-task-api/internal/access"
	"github.com/yukikurage/field-task-api/internal/constants"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/repository"
	"github.com/yukikurage/field-task-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken   = errors.New("username already exists")
	ErrUsernameTooLong = errors.New("username too long")
	ErrTeamTooLong     = errors.New("team name too long")
	ErrWrongPassword   = errors.New("current password is incorrect")
)

// UserService provides business logic for the user directory.
type UserService struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	sessionRepo repository.SessionRepository
	photos      *PhotoService
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	sessionRepo repository.SessionRepository,
	photos *PhotoService,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		sessionRepo: sessionRepo,
		photos:      photos,
	}
}

// CreateUserInput represents input for creating a user
type CreateUserInput struct {
	CompanyID    uint64
	Username     string
	Password     string
	FullName     string
	Team         string
	Role         models.Role
	IsSuperAdmin bool
}

// CreateUser adds a user to a company. Usernames are unique across all companies.
func (s *UserService) CreateUser(ctx context.Context, p access.Principal, input CreateUserInput) (*models.User, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}
	companyID, err := access.ResolveCompany(p, input.CompanyID)
	if err != nil {
		return nil, err
	}
	if input.IsSuperAdmin && !p.IsSuperAdmin {
		return nil, access.ErrForbidden
	}

	username := strings.TrimSpace(input.Username)
	if len(username) > constants.MaxUsernameLength {
		return nil, ErrUsernameTooLong
	}
	if len(strings.TrimSpace(input.Team)) > constants.MaxTeamLength {
		return nil, ErrTeamTooLong
	}

	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find company: %w", err)
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := models.NewUser(companyID, username, hash, input.FullName, input.Team, input.Role)
	if err != nil {
		return nil, err
	}
	user.IsSuperAdmin = input.IsSuperAdmin

	if _, err := s.userRepo.FindByUsername(ctx, user.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// ListUsers returns users of a company ordered by full name. Admin only.
func (s *UserService) ListUsers(ctx context.Context, p access.Principal, companyID uint64) ([]models.User, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}
	companyID, err := access.ResolveCompany(p, companyID)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.ListByCompany(ctx, companyID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListAssignable returns active users of the principal's company other than itself.
func (s *UserService) ListAssignable(ctx context.Context, p access.Principal) ([]models.User, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}

	users, err := s.userRepo.ListByCompany(ctx, p.CompanyID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	result := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.ID != p.UserID {
			result = append(result, u)
		}
	}
	return result, nil
}

// ListCompanyDirectory returns active users of the principal's own company.
// Used by the mobile client to render names.
func (s *UserService) ListCompanyDirectory(ctx context.Context, p access.Principal) ([]models.User, error) {
	users, err := s.userRepo.ListByCompany(ctx, p.CompanyID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser returns a user visible to the principal.
func (s *UserService) GetUser(ctx context.Context, p access.Principal, id uint64) (*models.User, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanReadUser(p, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ToggleActive flips the active flag of another user. Deactivation revokes
// every session of the target.
func (s *UserService) ToggleActive(ctx context.Context, p access.Principal, id uint64) (*models.User, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanManageUser(p, user); err != nil {
		return nil, err
	}

	user.Active = !user.Active
	if err := s.userRepo.UpdateFields(ctx, user.ID, user.CompanyID, map[string]interface{}{"active": user.Active}); err != nil {
		return nil, s.mapUpdateError(err)
	}

	if !user.Active {
		if err := s.sessionRepo.RevokeAllForUser(ctx, user.ID, time.Now()); err != nil {
			return nil, fmt.Errorf("failed to revoke sessions: %w", err)
		}
	}
	return user, nil
}

// ResetPassword sets a new password on another user and revokes its sessions.
func (s *UserService) ResetPassword(ctx context.Context, p access.Principal, id uint64, password string) error {
	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := access.CanManageUser(p, user); err != nil {
		return err
	}
	return s.setPassword(ctx, user, password)
}

// ChangeOwnPassword verifies the current password before replacing it.
// Every session of the user, including the current one, is revoked.
func (s *UserService) ChangeOwnPassword(ctx context.Context, p access.Principal, current, next string) error {
	user, err := s.find(ctx, p.UserID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(current, user.PasswordHash) {
		return ErrWrongPassword
	}
	return s.setPassword(ctx, user, next)
}

func (s *UserService) setPassword(ctx context.Context, user *models.User, password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateFields(ctx, user.ID, user.CompanyID, map[string]interface{}{"password_hash": hash}); err != nil {
		return s.mapUpdateError(err)
	}
	if err := s.sessionRepo.RevokeAllForUser(ctx, user.ID, time.Now()); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

// DeleteUser removes another user with the tasks, assignments and
// notifications it owns.
func (s *UserService) DeleteUser(ctx context.Context, p access.Principal, id uint64) (*repository.CascadeResult, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanManageUser(p, user); err != nil {
		return nil, err
	}

	res, err := s.userRepo.Delete(ctx, user.ID, user.CompanyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	s.photos.Remove(ctx, res.PhotoPaths)
	return res, nil
}

// UpdatePushToken stores the device token of the calling user. An empty token clears it.
func (s *UserService) UpdatePushToken(ctx context.Context, p access.Principal, userID uint64, token string) error {
	if err := access.CanActAs(p, userID); err != nil {
		return err
	}

	var value interface{}
	if t := strings.TrimSpace(token); t != "" {
		value = t
	}
	if err := s.userRepo.UpdateFields(ctx, p.UserID, p.CompanyID, map[string]interface{}{"push_token": value}); err != nil {
		return s.mapUpdateError(err)
	}
	return nil
}

func (s *UserService) find(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (s *UserService) mapUpdateError(err error) error {
	if errors.Is(err, repository.ErrNoRows) {
		return access.ErrNotFound
	}
	return fmt.Errorf("failed to update user: %w", err)
}
