package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/field-task-api/internal/access"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/repository"
)

type AssignmentServiceTestSuite struct {
	serviceSuite
	svc           *AssignmentService
	notifications *NotificationService
}

func (s *AssignmentServiceTestSuite) SetupTest() {
	s.serviceSuite.SetupTest()
	s.svc = NewAssignmentService(
		repository.NewAssignmentRepository(s.db),
		repository.NewUserRepository(s.db),
		s.photos,
		s.publisher,
		nil,
	)
	s.notifications = NewNotificationService(repository.NewNotificationRepository(s.db))
}

func (s *AssignmentServiceTestSuite) assign(to *models.User) *models.Assignment {
	a, err := s.svc.CreateAssignment(s.ctx, s.principal(s.admin), CreateAssignmentInput{
		AssignedToID: to.ID,
		Title:        "Trocar CTO",
		MapsLink:     "https://www.google.com/maps/@-23.5505,-46.6333,15z",
		Priority:     "alta",
	})
	s.Require().NoError(err)
	return a
}

func (s *AssignmentServiceTestSuite) TestCreateAssignmentNotifiesAssignee() {
	a := s.assign(s.tech)

	s.Equal(models.StatusPending, a.Status)
	s.Equal(models.PriorityHigh, a.Priority)
	s.Require().NotNil(a.Latitude)
	s.InDelta(-23.5505, *a.Latitude, 1e-9)
	s.InDelta(-46.6333, *a.Longitude, 1e-9)

	list, err := s.notifications.ListForUser(s.ctx, s.principal(s.tech), s.tech.ID, false)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(models.NotificationTaskAssigned, list[0].Type)
	s.Require().NotNil(list[0].ReferenceID)
	s.Equal(a.ID, *list[0].ReferenceID)

	events := s.publisher.Events()
	s.Require().Len(events, 1)
	s.Equal(s.tech.ID, events[0].UserID)
	s.Equal(list[0].ID, events[0].NotificationID)
}

func (s *AssignmentServiceTestSuite) TestCreateAssignmentRules() {
	_, err := s.svc.CreateAssignment(s.ctx, s.principal(s.tech), CreateAssignmentInput{AssignedToID: s.tech2.ID, Title: "x"})
	s.ErrorIs(err, access.ErrForbidden)

	_, err = s.svc.CreateAssignment(s.ctx, s.principal(s.admin), CreateAssignmentInput{AssignedToID: s.outsider.ID, Title: "x"})
	s.ErrorIs(err, ErrAssigneeNotFound)

	_, err = s.svc.CreateAssignment(s.ctx, s.principal(s.admin), CreateAssignmentInput{AssignedToID: s.admin.ID, Title: "x"})
	s.ErrorIs(err, models.ErrSelfAssignment)

	_, err = s.svc.CreateAssignment(s.ctx, s.principal(s.admin), CreateAssignmentInput{AssignedToID: s.tech.ID, Title: "   "})
	s.ErrorIs(err, models.ErrEmptyTitle)

	_, err = s.svc.CreateAssignment(s.ctx, s.principal(s.admin), CreateAssignmentInput{AssignedToID: s.tech.ID, Title: "x", Latitude: "-23"})
	s.ErrorIs(err, models.ErrInvalidCoordinates)

	s.Require().NoError(s.db.Model(s.tech2).Update("active", false).Error)
	_, err = s.svc.CreateAssignment(s.ctx, s.principal(s.admin), CreateAssignmentInput{AssignedToID: s.tech2.ID, Title: "x"})
	s.ErrorIs(err, models.ErrInactiveAssignee)

	s.Empty(s.publisher.Events())
}

func (s *AssignmentServiceTestSuite) TestStatusLifecycle() {
	a := s.assign(s.tech)
	tech := s.principal(s.tech)

	updated, err := s.svc.UpdateStatus(s.ctx, tech, a.ID, UpdateStatusInput{Status: "em_andamento"})
	s.Require().NoError(err)
	s.Equal(models.StatusInProgress, updated.Status)
	s.NotNil(updated.StartedAt)
	s.Nil(updated.CompletedAt)

	// Repeating the status only records notes
	notes := "Cabo rompido"
	updated, err = s.svc.UpdateStatus(s.ctx, tech, a.ID, UpdateStatusInput{Status: "in_progress", Observations: &notes})
	s.Require().NoError(err)
	s.Equal(notes, updated.Observations)

	_, err = s.svc.UpdateStatus(s.ctx, tech, a.ID, UpdateStatusInput{Status: "pending"})
	s.ErrorIs(err, models.ErrStatusRegression)

	updated, err = s.svc.UpdateStatus(s.ctx, tech, a.ID, UpdateStatusInput{Status: "completed"})
	s.Require().NoError(err)
	s.NotNil(updated.CompletedAt)

	_, err = s.svc.UpdateStatus(s.ctx, tech, a.ID, UpdateStatusInput{Status: "in_progress"})
	s.ErrorIs(err, models.ErrAssignmentClosed)

	_, err = s.svc.UpdateStatus(s.ctx, tech, a.ID, UpdateStatusInput{Status: "done"})
	s.ErrorIs(err, models.ErrInvalidStatus)

	list, err := s.notifications.ListForUser(s.ctx, s.principal(s.admin), s.admin.ID, false)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	kinds := []models.NotificationType{list[0].Type, list[1].Type}
	s.ElementsMatch([]models.NotificationType{models.NotificationTaskUpdated, models.NotificationTaskCompleted}, kinds)

	// one assigned event plus two status events
	s.Len(s.publisher.Events(), 3)
}

func (s *AssignmentServiceTestSuite) TestStatusUpdateAccess() {
	a := s.assign(s.tech)

	_, err := s.svc.UpdateStatus(s.ctx, s.principal(s.tech2), a.ID, UpdateStatusInput{Status: "in_progress"})
	s.ErrorIs(err, access.ErrNotFound)

	_, err = s.svc.UpdateStatus(s.ctx, s.principal(s.outsider), a.ID, UpdateStatusInput{Status: "in_progress"})
	s.ErrorIs(err, access.ErrNotFound)

	_, err = s.svc.UpdateStatus(s.ctx, s.principal(s.admin), a.ID, UpdateStatusInput{Status: "in_progress"})
	s.Require().NoError(err)
	_, err = s.svc.UpdateStatus(s.ctx, s.principal(s.tech), a.ID, UpdateStatusInput{Status: "completed"})
	s.Require().NoError(err)

	// Messages credit whoever made the change.
	list, err := s.notifications.ListForUser(s.ctx, s.principal(s.admin), s.admin.ID, false)
	s.Require().NoError(err)
	messages := make([]string, len(list))
	for i, n := range list {
		messages[i] = n.Message
	}
	s.ElementsMatch([]string{
		"manager full alterou o status de 'Trocar CTO' para Em Andamento",
		"tech full alterou o status de 'Trocar CTO' para Concluída",
	}, messages)
}

func (s *AssignmentServiceTestSuite) TestListAssignmentsScope() {
	s.assign(s.tech)
	s.assign(s.tech)
	s.assign(s.tech2)

	own, total, err := s.svc.ListAssignments(s.ctx, s.principal(s.tech), ListAssignmentsInput{Page: 1, PageSize: 20})
	s.Require().NoError(err)
	s.EqualValues(2, total)
	for _, a := range own {
		s.Equal(s.tech.ID, a.AssignedToID)
	}

	_, _, err = s.svc.ListAssignments(s.ctx, s.principal(s.tech), ListAssignmentsInput{AssignedToID: s.tech2.ID, Page: 1, PageSize: 20})
	s.ErrorIs(err, access.ErrNotFound)

	_, total, err = s.svc.ListAssignments(s.ctx, s.principal(s.admin), ListAssignmentsInput{Page: 1, PageSize: 20})
	s.Require().NoError(err)
	s.EqualValues(3, total)

	_, total, err = s.svc.ListAssignments(s.ctx, s.principal(s.admin), ListAssignmentsInput{Status: "pendente", Page: 1, PageSize: 20})
	s.Require().NoError(err)
	s.EqualValues(3, total)

	_, total, err = s.svc.ListAssignments(s.ctx, s.principal(s.outsider), ListAssignmentsInput{Page: 1, PageSize: 20})
	s.Require().NoError(err)
	s.Zero(total)
}

func (s *AssignmentServiceTestSuite) TestPhotosAndDelete() {
	a := s.assign(s.tech)

	_, err := s.svc.AddPhotos(s.ctx, s.principal(s.tech2), a.ID, []PhotoUpload{upload("a.jpg", "1")})
	s.ErrorIs(err, access.ErrNotFound)

	photos, err := s.svc.AddPhotos(s.ctx, s.principal(s.tech), a.ID, []PhotoUpload{upload("a.jpg", "1"), upload("b.png", "2")})
	s.Require().NoError(err)
	s.Require().Len(photos, 2)

	listed, err := s.svc.ListPhotos(s.ctx, s.principal(s.admin), a.ID)
	s.Require().NoError(err)
	s.Len(listed, 2)

	s.ErrorIs(s.svc.DeleteAssignment(s.ctx, s.principal(s.tech), a.ID), access.ErrForbidden)
	s.ErrorIs(s.svc.DeleteAssignment(s.ctx, s.principal(s.outsider), a.ID), access.ErrNotFound)

	s.Require().NoError(s.svc.DeleteAssignment(s.ctx, s.principal(s.admin), a.ID))
	for _, p := range photos {
		s.False(s.objectExists(p.StoragePath))
	}

	list, err := s.notifications.ListForUser(s.ctx, s.principal(s.tech), s.tech.ID, false)
	s.Require().NoError(err)
	s.Empty(list)
}

func TestAssignmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AssignmentServiceTestSuite))
}
