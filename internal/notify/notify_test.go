package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/field-task-api/internal/config"
	"github.com/yukikurage/field-task-api/internal/models"
)

func TestConnectWithoutURLIsNop(t *testing.T) {
	p, err := Connect(&config.NATSConfig{})
	require.NoError(t, err)
	assert.IsType(t, Nop{}, p)
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	p.Close()
}

func TestNewEvent(t *testing.T) {
	ref := uint64(9)
	token := "ExponentPushToken[x]"
	n := &models.Notification{ID: 3, UserID: 5, CompanyID: 1, Type: models.NotificationTaskAssigned, Title: "t", ReferenceID: &ref}

	e := NewEvent(n, &token)
	assert.Equal(t, uint64(3), e.NotificationID)
	assert.Equal(t, uint64(5), e.UserID)
	assert.Equal(t, &ref, e.ReferenceID)
	assert.Equal(t, &token, e.PushToken)

	assert.Equal(t, "field.notifications.5", (&NATSPublisher{prefix: "field.notifications"}).Subject(5))
}
