// Package events handles event emission for association lifecycle changes
package events

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/kelmerpassos/ipet-api/pkg/kafka"
	"github.com/kelmerpassos/ipet-api/pkg/models"
	"github.com/kelmerpassos/ipet-api/pkg/tracing"
)

// Emitter publishes association lifecycle events
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitAssociationCreated emits an association.created event
func (e *Emitter) EmitAssociationCreated(ctx context.Context, assoc *models.Association, source string) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitAssociationCreated")
	defer span.End()

	event := &kafka.AssociationEvent{
		EventType:     kafka.EventAssociationCreated,
		CustomerID:    assoc.CustomerID,
		ProductID:     assoc.ProductID,
		CurrentStatus: string(assoc.CurrentStatus),
		CreatedAt:     assoc.CreatedAt,
		Source:        source,
		EmittedAt:     time.Now().UTC(),
	}

	if err := e.producer.PublishAssociationEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit association.created event")
		return err
	}

	return nil
}

// EmitAssociationStatusChanged emits an association.status_changed event
func (e *Emitter) EmitAssociationStatusChanged(ctx context.Context, assoc *models.Association) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitAssociationStatusChanged")
	defer span.End()

	event := &kafka.AssociationEvent{
		EventType:     kafka.EventAssociationStatusChanged,
		CustomerID:    assoc.CustomerID,
		ProductID:     assoc.ProductID,
		CurrentStatus: string(assoc.CurrentStatus),
		CreatedAt:     assoc.CreatedAt,
		Source:        kafka.SourceAPI,
		EmittedAt:     time.Now().UTC(),
	}

	if err := e.producer.PublishAssociationEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit association.status_changed event")
		return err
	}

	return nil
}
