package services

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/field-task-api/internal/access"
	"github.com/yukikurage/field-task-api/internal/config"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/notify"
	"github.com/yukikurage/field-task-api/internal/storage"
	"github.com/yukikurage/field-task-api/internal/testutil"
	"gorm.io/gorm"
)

// recordingPublisher keeps every published event for assertions
type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event notify.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) Events() []notify.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notify.Event(nil), p.events...)
}

// serviceSuite seeds two companies: acme with an admin and two technicians,
// and other with its own admin.
type serviceSuite struct {
	suite.Suite
	ctx       context.Context
	db        *gorm.DB
	backend   *storage.LocalBackend
	photos    *PhotoService
	publisher *recordingPublisher

	acme     *models.Company
	other    *models.Company
	admin    *models.User
	tech     *models.User
	tech2    *models.User
	outsider *models.User
}

func (s *serviceSuite) SetupTest() {
	t := s.T()
	s.ctx = context.Background()
	s.db = testutil.NewDB(t)

	backend, err := storage.NewLocalBackend(t.TempDir())
	s.Require().NoError(err)
	s.backend = backend
	s.photos = NewPhotoService(backend, config.UploadConfig{
		MaxFileSize:       1024,
		MaxFilesPerTask:   3,
		AllowedExtensions: []string{"jpg", "jpeg", "png"},
	}, 0)
	s.publisher = &recordingPublisher{}

	s.acme = testutil.CreateCompany(t, s.db, "Acme", "acme")
	s.other = testutil.CreateCompany(t, s.db, "Other", "other")
	s.admin = testutil.CreateUser(t, s.db, s.acme.ID, "manager", "secret1", models.RoleAdmin)
	s.tech = testutil.CreateUser(t, s.db, s.acme.ID, "tech", "secret2", models.RoleUser)
	s.tech2 = testutil.CreateUser(t, s.db, s.acme.ID, "tech2", "secret3", models.RoleUser)
	s.outsider = testutil.CreateUser(t, s.db, s.other.ID, "outsider", "secret4", models.RoleAdmin)
}

func (s *serviceSuite) principal(u *models.User) access.Principal {
	company := s.acme
	if u.CompanyID == s.other.ID {
		company = s.other
	}
	p, err := access.NewPrincipal(u, company)
	s.Require().NoError(err)
	return p
}

func (s *serviceSuite) superAdmin() access.Principal {
	p := s.principal(s.outsider)
	p.IsSuperAdmin = true
	return p
}

func upload(name, body string) PhotoUpload {
	return PhotoUpload{
		Filename: name,
		Size:     int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func taskFields() models.TaskFields {
	return models.TaskFields{
		Contractor:   "Provedor",
		Neighborhood: "Centro",
		CTOOpened:    true,
		CTOCount:     1,
		FiberType:    string(models.FiberF12),
		FiberLaid:    decimal.RequireFromString("12.345"),
	}
}

// objectExists reports whether the local backend still holds key
func (s *serviceSuite) objectExists(key string) bool {
	r, err := s.backend.Open(s.ctx, key)
	if err != nil {
		return false
	}
	r.Close()
	return true
}
