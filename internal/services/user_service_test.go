package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/field-task-api/internal/access"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/repository"
	"github.com/yukikurage/field-task-api/internal/utils"
)

type UserServiceTestSuite struct {
	serviceSuite
	svc       *UserService
	companies *CompanyService
	tasks     *TaskService
}

func (s *UserServiceTestSuite) SetupTest() {
	s.serviceSuite.SetupTest()
	companyRepo := repository.NewCompanyRepository(s.db)
	s.svc = NewUserService(
		repository.NewUserRepository(s.db),
		companyRepo,
		repository.NewSessionRepository(s.db),
		s.photos,
	)
	s.companies = NewCompanyService(companyRepo, s.photos)
	s.tasks = NewTaskService(repository.NewTaskRepository(s.db), s.photos, nil)
}

func (s *UserServiceTestSuite) TestCreateUser() {
	user, err := s.svc.CreateUser(s.ctx, s.principal(s.admin), CreateUserInput{
		Username: "  newtech ",
		Password: "secret9",
		FullName: "New Tech",
		Team:     models.TeamInfraestrutura,
		Role:     models.RoleUser,
	})
	s.Require().NoError(err)
	s.Equal("newtech", user.Username)
	s.Equal(s.acme.ID, user.CompanyID)
	s.True(user.Active)
	s.True(utils.CheckPassword("secret9", user.PasswordHash))
	s.NotEqual("secret9", user.PasswordHash)
}

func (s *UserServiceTestSuite) TestCreateUserRules() {
	input := CreateUserInput{Username: "someone", Password: "secret9", FullName: "Someone", Role: models.RoleUser}

	_, err := s.svc.CreateUser(s.ctx, s.principal(s.tech), input)
	s.ErrorIs(err, access.ErrForbidden)

	// Usernames are unique across companies
	taken := input
	taken.Username = "outsider"
	_, err = s.svc.CreateUser(s.ctx, s.principal(s.admin), taken)
	s.ErrorIs(err, ErrUsernameTaken)

	foreign := input
	foreign.CompanyID = s.other.ID
	_, err = s.svc.CreateUser(s.ctx, s.principal(s.admin), foreign)
	s.ErrorIs(err, access.ErrNotFound)

	super := input
	super.IsSuperAdmin = true
	_, err = s.svc.CreateUser(s.ctx, s.principal(s.admin), super)
	s.ErrorIs(err, access.ErrForbidden)

	short := input
	short.Password = "123"
	_, err = s.svc.CreateUser(s.ctx, s.principal(s.admin), short)
	s.ErrorIs(err, utils.ErrPasswordTooShort)

	created, err := s.svc.CreateUser(s.ctx, s.superAdmin(), foreign)
	s.Require().NoError(err)
	s.Equal(s.other.ID, created.CompanyID)
}

func (s *UserServiceTestSuite) TestReadScope() {
	_, err := s.svc.GetUser(s.ctx, s.principal(s.tech), s.tech2.ID)
	s.ErrorIs(err, access.ErrNotFound)

	own, err := s.svc.GetUser(s.ctx, s.principal(s.tech), s.tech.ID)
	s.Require().NoError(err)
	s.Equal(s.tech.ID, own.ID)

	_, err = s.svc.GetUser(s.ctx, s.principal(s.outsider), s.tech.ID)
	s.ErrorIs(err, access.ErrNotFound)

	users, err := s.svc.ListUsers(s.ctx, s.principal(s.admin), 0)
	s.Require().NoError(err)
	s.Len(users, 3)

	_, err = s.svc.ListUsers(s.ctx, s.principal(s.admin), s.other.ID)
	s.ErrorIs(err, access.ErrNotFound)

	assignable, err := s.svc.ListAssignable(s.ctx, s.principal(s.admin))
	s.Require().NoError(err)
	s.Len(assignable, 2)
	for _, u := range assignable {
		s.NotEqual(s.admin.ID, u.ID)
	}
}

func (s *UserServiceTestSuite) TestManageUsers() {
	_, err := s.svc.ToggleActive(s.ctx, s.principal(s.admin), s.admin.ID)
	s.ErrorIs(err, access.ErrSelfAction)

	_, err = s.svc.ToggleActive(s.ctx, s.principal(s.tech), s.tech2.ID)
	s.ErrorIs(err, access.ErrNotFound)

	_, err = s.svc.ToggleActive(s.ctx, s.principal(s.outsider), s.tech.ID)
	s.ErrorIs(err, access.ErrNotFound)

	toggled, err := s.svc.ToggleActive(s.ctx, s.principal(s.admin), s.tech.ID)
	s.Require().NoError(err)
	s.False(toggled.Active)

	s.Require().NoError(s.svc.ResetPassword(s.ctx, s.principal(s.admin), s.tech.ID, "brand-new"))
	reloaded, err := s.svc.GetUser(s.ctx, s.principal(s.admin), s.tech.ID)
	s.Require().NoError(err)
	s.True(utils.CheckPassword("brand-new", reloaded.PasswordHash))
}

func (s *UserServiceTestSuite) TestDeleteUserCascades() {
	task, err := s.tasks.CreateTask(s.ctx, s.principal(s.tech), taskFields(), []PhotoUpload{upload("a.jpg", "1")})
	s.Require().NoError(err)

	res, err := s.svc.DeleteUser(s.ctx, s.principal(s.admin), s.tech.ID)
	s.Require().NoError(err)
	s.EqualValues(1, res.Tasks)
	s.EqualValues(1, res.Photos)
	s.False(s.objectExists(task.Photos[0].StoragePath))

	_, err = s.svc.GetUser(s.ctx, s.principal(s.admin), s.tech.ID)
	s.ErrorIs(err, access.ErrNotFound)
}

func (s *UserServiceTestSuite) TestUpdatePushToken() {
	err := s.svc.UpdatePushToken(s.ctx, s.principal(s.tech), s.tech2.ID, "ExponentPushToken[x]")
	s.ErrorIs(err, access.ErrNotFound)

	s.Require().NoError(s.svc.UpdatePushToken(s.ctx, s.principal(s.tech), s.tech.ID, " ExponentPushToken[x] "))
	user, err := s.svc.GetUser(s.ctx, s.principal(s.tech), s.tech.ID)
	s.Require().NoError(err)
	s.Require().NotNil(user.PushToken)
	s.Equal("ExponentPushToken[x]", *user.PushToken)

	s.Require().NoError(s.svc.UpdatePushToken(s.ctx, s.principal(s.tech), s.tech.ID, ""))
	user, err = s.svc.GetUser(s.ctx, s.principal(s.tech), s.tech.ID)
	s.Require().NoError(err)
	s.Nil(user.PushToken)
}

func (s *UserServiceTestSuite) TestCompanyRegistry() {
	_, err := s.companies.CreateCompany(s.ctx, s.principal(s.admin), "Nova", "nova")
	s.ErrorIs(err, access.ErrForbidden)

	_, err = s.companies.CreateCompany(s.ctx, s.superAdmin(), "Dup", "acme")
	s.ErrorIs(err, ErrDuplicateSlug)

	_, err = s.companies.CreateCompany(s.ctx, s.superAdmin(), "Bad", "Bad Slug")
	s.ErrorIs(err, models.ErrInvalidSlug)

	created, err := s.companies.CreateCompany(s.ctx, s.superAdmin(), "Nova", "nova")
	s.Require().NoError(err)
	s.True(created.Active)

	list, err := s.companies.ListCompanies(s.ctx, s.superAdmin())
	s.Require().NoError(err)
	s.Len(list, 3)

	_, err = s.companies.ToggleActive(s.ctx, s.superAdmin(), s.other.ID)
	s.ErrorIs(err, access.ErrSelfAction)

	_, err = s.companies.DeleteCompany(s.ctx, s.superAdmin(), s.other.ID)
	s.ErrorIs(err, access.ErrSelfAction)

	res, err := s.companies.DeleteCompany(s.ctx, s.superAdmin(), s.acme.ID)
	s.Require().NoError(err)
	s.EqualValues(3, res.Users)

	_, err = s.companies.GetCompany(s.ctx, s.superAdmin(), s.acme.ID)
	s.ErrorIs(err, access.ErrNotFound)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
