package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/field-task-api/internal/access"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrDuplicateSlug = errors.New("company slug already in use")
)

// CompanyService provides business logic for tenant operations.
type CompanyService struct {
	companyRepo repository.CompanyRepository
	photos      *PhotoService
}

// NewCompanyService creates a new CompanyService.
func NewCompanyService(companyRepo repository.CompanyRepository, photos *PhotoService) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		photos:      photos,
	}
}

// CompanyWithStats pairs a company with its aggregate counts.
type CompanyWithStats struct {
	models.Company
	Stats repository.CompanyStats `json:"stats"`
}

// CreateCompany registers a new tenant. Super-admin only.
func (s *CompanyService) CreateCompany(ctx context.Context, p access.Principal, name, slug string) (*models.Company, error) {
	if err := access.RequireSuperAdmin(p); err != nil {
		return nil, err
	}

	company, err := models.NewCompany(name, slug)
	if err != nil {
		return nil, err
	}

	if _, err := s.companyRepo.FindBySlug(ctx, company.Slug); err == nil {
		return nil, ErrDuplicateSlug
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}

	if err := s.companyRepo.Create(ctx, company); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	return company, nil
}

// ListCompanies returns every tenant with its stats. Super-admin only.
func (s *CompanyService) ListCompanies(ctx context.Context, p access.Principal) ([]CompanyWithStats, error) {
	if err := access.RequireSuperAdmin(p); err != nil {
		return nil, err
	}

	companies, err := s.companyRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	result := make([]CompanyWithStats, 0, len(companies))
	for _, c := range companies {
		stats, err := s.companyRepo.Stats(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load company stats: %w", err)
		}
		result = append(result, CompanyWithStats{Company: c, Stats: *stats})
	}
	return result, nil
}

// GetCompany returns a company the principal may access.
func (s *CompanyService) GetCompany(ctx context.Context, p access.Principal, id uint64) (*CompanyWithStats, error) {
	if err := access.CanAccessCompany(p, id); err != nil {
		return nil, err
	}

	company, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.companyRepo.Stats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load company stats: %w", err)
	}

	return &CompanyWithStats{Company: *company, Stats: *stats}, nil
}

// UpdateCompanyName renames a tenant. Super-admin only.
func (s *CompanyService) UpdateCompanyName(ctx context.Context, p access.Principal, id uint64, name string) (*models.Company, error) {
	if err := access.RequireSuperAdmin(p); err != nil {
		return nil, err
	}

	company, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	renamed, err := models.NewCompany(name, company.Slug)
	if err != nil {
		return nil, err
	}
	company.Name = renamed.Name

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	return company, nil
}

// ToggleActive flips the active flag. Users are not touched; a disabled
// company blocks login and session resolution instead.
func (s *CompanyService) ToggleActive(ctx context.Context, p access.Principal, id uint64) (*models.Company, error) {
	if err := access.CanDeleteCompany(p, id); err != nil {
		return nil, err
	}

	company, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	company.Active = !company.Active
	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	return company, nil
}

// DeleteCompany removes a tenant and everything it owns. Photo objects are
// cleaned from storage after the rows are gone.
func (s *CompanyService) DeleteCompany(ctx context.Context, p access.Principal, id uint64) (*repository.CascadeResult, error) {
	if err := access.CanDeleteCompany(p, id); err != nil {
		return nil, err
	}

	res, err := s.companyRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete company: %w", err)
	}

	s.photos.Remove(ctx, res.PhotoPaths)
	return res, nil
}

func (s *CompanyService) find(ctx context.Context, id uint64) (*models.Company, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find company: %w", err)
	}
	return company, nil
}
