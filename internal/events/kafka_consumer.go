package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/carpool-platform/service-rides/pkg/kafka"
)

// ProfileRegistry is the slice of the profile service the consumer needs to
// keep the driver and rider replicas current.
type ProfileRegistry interface {
	RegisterDriver(ctx context.Context, id uuid.UUID, name, email, phone, gender, vehicleType, vehicleModel, vehicleNumber string) error
	UpdateDriverProfile(ctx context.Context, id uuid.UUID, name, email, phone, gender, vehicleType, vehicleModel, vehicleNumber string) error
	RegisterRider(ctx context.Context, id uuid.UUID, name, email, phone string) error
}

// UserEventConsumer listens to identity-service user events and keeps the
// local driver and rider replicas current.
type UserEventConsumer struct {
	consumer *kafka.Consumer
	profiles ProfileRegistry
	logger   *zap.Logger
}

// NewUserEventConsumer creates a new UserEventConsumer.
func NewUserEventConsumer(
	brokers []string,
	groupID string,
	profiles ProfileRegistry,
	logger *zap.Logger,
) *UserEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicUserEvents, logger)
	return &UserEventConsumer{
		consumer: consumer,
		profiles: profiles,
		logger:   logger,
	}
}

// Start begins consuming user events. This blocks until the context is cancelled.
func (c *UserEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *UserEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *UserEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from user topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case DriverRegistered:
		return c.handleDriverRegistered(ctx, cloudEvent)
	case DriverProfileUpdated:
		return c.handleDriverProfileUpdated(ctx, cloudEvent)
	case RiderRegistered:
		return c.handleRiderRegistered(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled user event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *UserEventConsumer) handleDriverRegistered(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt DriverRegisteredEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse DriverRegisteredEvent data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	if err := c.profiles.RegisterDriver(ctx, evt.DriverID,
		evt.Name, evt.Email, evt.Phone, evt.Gender,
		evt.VehicleType, evt.VehicleModel, evt.VehicleNumber,
	); err != nil {
		c.logger.Error("failed to register driver replica",
			zap.String("driver_id", evt.DriverID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (c *UserEventConsumer) handleDriverProfileUpdated(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt DriverProfileUpdatedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse DriverProfileUpdatedEvent data", zap.Error(err))
		return nil
	}

	if err := c.profiles.UpdateDriverProfile(ctx, evt.DriverID,
		evt.Name, evt.Email, evt.Phone, evt.Gender,
		evt.VehicleType, evt.VehicleModel, evt.VehicleNumber,
	); err != nil {
		c.logger.Error("failed to update driver replica",
			zap.String("driver_id", evt.DriverID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (c *UserEventConsumer) handleRiderRegistered(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt RiderRegisteredEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse RiderRegisteredEvent data", zap.Error(err))
		return nil
	}

	if err := c.profiles.RegisterRider(ctx, evt.RiderID, evt.Name, evt.Email, evt.Phone); err != nil {
		c.logger.Error("failed to register rider replica",
			zap.String("rider_id", evt.RiderID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
