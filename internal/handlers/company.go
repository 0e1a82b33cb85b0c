package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/field-task-api/internal/dto"
	"github.com/yukikurage/field-task-api/internal/services"
)

const companyNotFound = "Company not found"

// CompanyHandler serves the tenant registry. Every route is super-admin only
// except reading one's own company.
type CompanyHandler struct {
	companyService *services.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(companyService *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// CreateCompany registers a new tenant
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	type CreateCompanyRequest struct {
		Name string `json:"name" binding:"required,notblank,max=100"`
		Slug string `json:"slug" binding:"required,slug"`
	}

	var req CreateCompanyRequest
	if !bindJSON(c, &req) {
		return
	}

	company, err := h.companyService.CreateCompany(c.Request.Context(), p, req.Name, req.Slug)
	if err != nil {
		respondError(c, err, companyNotFound)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCompanyDTO(*company, nil))
}

// ListCompanies returns every tenant with its counts
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	companies, err := h.companyService.ListCompanies(c.Request.Context(), p)
	if err != nil {
		respondError(c, err, companyNotFound)
		return
	}

	items := make([]dto.CompanyDTO, len(companies))
	for i := range companies {
		items[i] = dto.ToCompanyDTO(companies[i].Company, &companies[i].Stats)
	}
	c.JSON(http.StatusOK, gin.H{"companies": items})
}

// GetCompany returns one tenant with its counts
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	company, err := h.companyService.GetCompany(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err, companyNotFound)
		return
	}

	c.JSON(http.StatusOK, dto.ToCompanyDTO(company.Company, &company.Stats))
}

// GetCompanyStats returns only the counts of a tenant
func (h *CompanyHandler) GetCompanyStats(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	company, err := h.companyService.GetCompany(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err, companyNotFound)
		return
	}

	c.JSON(http.StatusOK, company.Stats)
}

// UpdateCompany renames a tenant
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	type UpdateCompanyRequest struct {
		Name string `json:"name" binding:"required,notblank,max=100"`
	}

	var req UpdateCompanyRequest
	if !bindJSON(c, &req) {
		return
	}

	company, err := h.companyService.UpdateCompanyName(c.Request.Context(), p, id, req.Name)
	if err != nil {
		respondError(c, err, companyNotFound)
		return
	}

	c.JSON(http.StatusOK, dto.ToCompanyDTO(*company, nil))
}

// ToggleCompany enables or disables a tenant
func (h *CompanyHandler) ToggleCompany(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	company, err := h.companyService.ToggleActive(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err, companyNotFound)
		return
	}

	c.JSON(http.StatusOK, dto.ToCompanyDTO(*company, nil))
}

// DeleteCompany removes a tenant and everything it owns
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	res, err := h.companyService.DeleteCompany(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err, companyNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":             "Company deleted successfully",
		"deleted_users":       res.Users,
		"deleted_tasks":       res.Tasks,
		"deleted_assignments": res.Assignments,
		"deleted_photos":      res.Photos,
	})
}
