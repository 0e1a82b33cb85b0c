package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/field-task-api/internal/auth"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/repository"
	"github.com/yukikurage/field-task-api/internal/utils"
)

type AuthServiceTestSuite struct {
	serviceSuite
	svc   *AuthService
	users *UserService
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.serviceSuite.SetupTest()
	userRepo := repository.NewUserRepository(s.db)
	sessionRepo := repository.NewSessionRepository(s.db)
	s.svc = NewAuthService(userRepo, sessionRepo, auth.NewTokenIssuer("test-secret", "test"), nil, time.Hour)
	s.users = NewUserService(userRepo, repository.NewCompanyRepository(s.db), sessionRepo, s.photos)
}

func (s *AuthServiceTestSuite) TestLoginAndResolve() {
	res, err := s.svc.Login(s.ctx, LoginInput{Username: " tech ", Password: "secret2"})
	s.Require().NoError(err)
	s.NotEmpty(res.Token)
	s.Equal(s.tech.ID, res.Principal.UserID)
	s.Equal(s.acme.ID, res.Principal.CompanyID)
	s.Equal("Acme", res.Principal.CompanyName)
	s.Equal(models.RoleUser, res.Principal.Role)

	p, err := s.svc.ResolveToken(s.ctx, res.Token)
	s.Require().NoError(err)
	s.Equal(s.tech.ID, p.UserID)
	s.Equal(res.Principal.SessionID, p.SessionID)

	var stored models.Session
	s.Require().NoError(s.db.First(&stored, p.SessionID).Error)
	s.Equal(utils.HashToken(res.Token), stored.TokenHash)
	s.NotEqual(res.Token, stored.TokenHash)
}

func (s *AuthServiceTestSuite) TestLoginRejections() {
	_, err := s.svc.Login(s.ctx, LoginInput{Username: "tech", Password: "wrong-password"})
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.svc.Login(s.ctx, LoginInput{Username: "nobody", Password: "secret2"})
	s.ErrorIs(err, ErrInvalidCredentials)

	s.Require().NoError(s.db.Model(s.tech2).Update("active", false).Error)
	_, err = s.svc.Login(s.ctx, LoginInput{Username: "tech2", Password: "secret3"})
	s.ErrorIs(err, ErrInvalidCredentials)

	s.Require().NoError(s.db.Model(s.other).Update("active", false).Error)
	_, err = s.svc.Login(s.ctx, LoginInput{Username: "outsider", Password: "secret4"})
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestPlaintextHashIsNeverAccepted() {
	s.Require().NoError(s.db.Model(s.tech).Update("password_hash", "plaintext").Error)

	_, err := s.svc.Login(s.ctx, LoginInput{Username: "tech", Password: "plaintext"})
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestDeactivationRevokesAccess() {
	res, err := s.svc.Login(s.ctx, LoginInput{Username: "tech", Password: "secret2"})
	s.Require().NoError(err)

	_, err = s.users.ToggleActive(s.ctx, s.principal(s.admin), s.tech.ID)
	s.Require().NoError(err)

	_, err = s.svc.ResolveToken(s.ctx, res.Token)
	s.ErrorIs(err, ErrSessionInvalid)
}

func (s *AuthServiceTestSuite) TestCompanyDeactivationRevokesAccess() {
	res, err := s.svc.Login(s.ctx, LoginInput{Username: "tech", Password: "secret2"})
	s.Require().NoError(err)

	s.Require().NoError(s.db.Model(s.acme).Update("active", false).Error)

	_, err = s.svc.ResolveToken(s.ctx, res.Token)
	s.ErrorIs(err, ErrSessionInvalid)
}

func (s *AuthServiceTestSuite) TestLogout() {
	res, err := s.svc.Login(s.ctx, LoginInput{Username: "tech", Password: "secret2"})
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Logout(s.ctx, res.Principal.SessionID))

	_, err = s.svc.ResolveToken(s.ctx, res.Token)
	s.ErrorIs(err, ErrSessionInvalid)
	s.NoError(s.svc.Logout(s.ctx, 0))
}

func (s *AuthServiceTestSuite) TestBearerSessions() {
	res, err := s.svc.LoginBearer(s.ctx, LoginInput{Username: "tech", Password: "secret2"})
	s.Require().NoError(err)

	p, err := s.svc.ResolveBearer(s.ctx, res.Token)
	s.Require().NoError(err)
	s.Equal(s.tech.ID, p.UserID)

	_, err = s.svc.ResolveBearer(s.ctx, res.Token+"x")
	s.ErrorIs(err, ErrSessionInvalid)

	other := NewAuthService(
		repository.NewUserRepository(s.db),
		repository.NewSessionRepository(s.db),
		auth.NewTokenIssuer("another-secret", "test"),
		nil,
		time.Hour,
	)
	_, err = other.ResolveBearer(s.ctx, res.Token)
	s.ErrorIs(err, ErrSessionInvalid)

	s.Require().NoError(s.svc.Logout(s.ctx, p.SessionID))
	_, err = s.svc.ResolveBearer(s.ctx, res.Token)
	s.ErrorIs(err, ErrSessionInvalid)
}

func (s *AuthServiceTestSuite) TestExpiryAndPurge() {
	res, err := s.svc.Login(s.ctx, LoginInput{Username: "tech", Password: "secret2"})
	s.Require().NoError(err)

	s.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = s.svc.ResolveToken(s.ctx, res.Token)
	s.ErrorIs(err, ErrSessionInvalid)

	n, err := s.svc.PurgeExpired(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(1, n)
}

func (s *AuthServiceTestSuite) TestLoginPurgesDeadSessions() {
	revoked, err := s.svc.Login(s.ctx, LoginInput{Username: "tech", Password: "secret2"})
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Logout(s.ctx, revoked.Principal.SessionID))

	expiring, err := s.svc.LoginBearer(s.ctx, LoginInput{Username: "tech2", Password: "secret3"})
	s.Require().NoError(err)

	s.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	fresh, err := s.svc.Login(s.ctx, LoginInput{Username: "tech", Password: "secret2"})
	s.Require().NoError(err)

	var ids []uint64
	s.Require().NoError(s.db.Model(&models.Session{}).Pluck("id", &ids).Error)
	s.Equal([]uint64{fresh.Principal.SessionID}, ids)
	s.NotContains(ids, expiring.Principal.SessionID)
}

func (s *AuthServiceTestSuite) TestPasswordChangeRevokesSessions() {
	res, err := s.svc.Login(s.ctx, LoginInput{Username: "tech", Password: "secret2"})
	s.Require().NoError(err)

	err = s.users.ChangeOwnPassword(s.ctx, res.Principal, "bad", "new-secret")
	s.ErrorIs(err, ErrWrongPassword)

	err = s.users.ChangeOwnPassword(s.ctx, res.Principal, "secret2", "abc")
	s.ErrorIs(err, utils.ErrPasswordTooShort)

	s.Require().NoError(s.users.ChangeOwnPassword(s.ctx, res.Principal, "secret2", "new-secret"))

	_, err = s.svc.ResolveToken(s.ctx, res.Token)
	s.ErrorIs(err, ErrSessionInvalid)

	_, err = s.svc.Login(s.ctx, LoginInput{Username: "tech", Password: "new-secret"})
	s.NoError(err)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
