// Package events publishes benefit lifecycle events for downstream notifiers.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tribe-backend/pkg/models"
)

// TypeBenefitCreated is emitted once per inserted (tribe, tier) benefit record.
const TypeBenefitCreated = "benefit.created"

// BenefitCreated is the payload of a TypeBenefitCreated event.
type BenefitCreated struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	OccurredAt  time.Time   `json:"occurredAt"`
	Tribe       string      `json:"tribe"`
	Tier        models.Tier `json:"tier"`
	TierName    string      `json:"tierName"`
	BenefitID   string      `json:"benefitId"`
	BenefitText string      `json:"benefitText"`
	Author      string      `json:"author,omitempty"`
}

// NewBenefitCreated builds the event for a stored benefit. author is the
// authenticated wallet, empty when posting is unauthenticated.
func NewBenefitCreated(b models.Benefit, author string, now time.Time) BenefitCreated {
	return BenefitCreated{
		ID:          uuid.NewString(),
		Type:        TypeBenefitCreated,
		OccurredAt:  now.UTC(),
		Tribe:       b.Tribe,
		Tier:        b.Tier,
		TierName:    b.Tier.Name(),
		BenefitID:   b.ID,
		BenefitText: b.BenefitText,
		Author:      author,
	}
}

// Key partitions events by tribe so one tribe's events stay ordered.
func (e BenefitCreated) Key() string {
	return e.Tribe
}

// Publisher is the interface used by handlers to publish events.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }

func (NoopPublisher) Close() error { return nil }
