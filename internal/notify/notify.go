// Package notify fans stored notifications out to an external push worker.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"github.com/yukikurage/field-task-api/internal/config"
	"github.com/yukikurage/field-task-api/internal/models"
)

// Event is the payload published for every stored notification.
type Event struct {
	NotificationID uint64                  `json:"notification_id"`
	UserID         uint64                  `json:"user_id"`
	CompanyID      uint64                  `json:"company_id"`
	Type           models.NotificationType `json:"type"`
	Title          string                  `json:"title"`
	Message        string                  `json:"message"`
	ReferenceID    *uint64                 `json:"reference_id,omitempty"`
	PushToken      *string                 `json:"push_token,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}

// NewEvent copies a stored notification. pushToken may be nil.
func NewEvent(n *models.Notification, pushToken *string) Event {
	return Event{
		NotificationID: n.ID,
		UserID:         n.UserID,
		CompanyID:      n.CompanyID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		ReferenceID:    n.ReferenceID,
		PushToken:      pushToken,
		CreatedAt:      n.CreatedAt,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close()                               {}

// NATSPublisher publishes events as JSON on <prefix>.<user_id>.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

// Connect returns a Nop publisher when cfg.URL is empty.
func Connect(cfg *config.NATSConfig) (Publisher, error) {
	if cfg.URL == "" {
		log.Info().Msg("NATS_URL not set, notification events disabled")
		return Nop{}, nil
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name("field-task-api"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(10),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("Disconnected from NATS")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Msg("Reconnected to NATS")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	log.Info().Str("url", cfg.URL).Msg("Connected to NATS")
	return &NATSPublisher{nc: nc, prefix: cfg.SubjectPrefix}, nil
}

func (p *NATSPublisher) Subject(userID uint64) string {
	return fmt.Sprintf("%s.%d", p.prefix, userID)
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.Subject(event.UserID), data)
}

func (p *NATSPublisher) Close() {
	p.nc.Drain()
}
