//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/carpool-platform/service-rides/internal/application"
	driverDomain "github.com/carpool-platform/service-rides/internal/domain/driver"
	riderDomain "github.com/carpool-platform/service-rides/internal/domain/rider"
	rideEvents "github.com/carpool-platform/service-rides/internal/events"
	"github.com/carpool-platform/service-rides/internal/repository"
	"github.com/carpool-platform/service-rides/pkg/kafka"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// ridesStack holds wired-up rides service components.
type ridesStack struct {
	Rides           *application.RideService
	Bookings        *application.BookingService
	Profiles        *application.ProfileService
	Consumer        *rideEvents.UserEventConsumer
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	// Start PostgreSQL container with log-based wait strategy.
	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_rides",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_rides sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.RideModel{},
		&repository.DriverModel{},
		&repository.DriverRideModel{},
		&repository.RiderModel{},
		&repository.RiderBookingModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, rideEvents.TopicRideEvents, rideEvents.TopicUserEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupRidesStack wires up the full rides service stack.
func setupRidesStack(t *testing.T, db *gorm.DB, brokers []string) *ridesStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	rideRepo := repository.NewGormRideRepository(db)
	driverRepo := repository.NewGormDriverRepository(db)
	riderRepo := repository.NewGormRiderRepository(db)
	producer := kafka.NewProducer(brokers, logger)

	rideSvc := application.NewRideService(rideRepo, driverRepo, riderRepo, producer, logger)
	bookingSvc := application.NewBookingService(rideRepo, driverRepo, riderRepo, producer, logger)
	profileSvc := application.NewProfileService(driverRepo, riderRepo, logger)

	groupID := fmt.Sprintf("test-rides-%s", uuid.New().String()[:8])
	consumer := rideEvents.NewUserEventConsumer(brokers, groupID, profileSvc, logger)

	return &ridesStack{
		Rides:           rideSvc,
		Bookings:        bookingSvc,
		Profiles:        profileSvc,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedDriver inserts a driver replica directly through the repository.
func seedDriver(t *testing.T, db *gorm.DB, driverID uuid.UUID) {
	t.Helper()
	repo := repository.NewGormDriverRepository(db)
	drv, err := driverDomain.NewDriver(driverID,
		"Test Driver", "driver@test.local", "+60123456789", "male",
		"sedan", "Proton Saga", "WXY 1234")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(context.Background(), drv), "failed to seed driver")
}

// seedRider inserts a rider replica directly through the repository.
func seedRider(t *testing.T, db *gorm.DB, riderID uuid.UUID) {
	t.Helper()
	repo := repository.NewGormRiderRepository(db)
	rd, err := riderDomain.NewRider(riderID, "Test Rider", "rider@test.local", "+60198765432")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(context.Background(), rd), "failed to seed rider")
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForDriverRow polls the drivers table until a row with the id appears.
func waitForDriverRow(t *testing.T, db *gorm.DB, driverID uuid.UUID, timeout time.Duration) repository.DriverModel {
	t.Helper()
	var result repository.DriverModel
	require.Eventually(t, func() bool {
		var model repository.DriverModel
		if err := db.Where("id = ?", driverID).First(&model).Error; err != nil {
			return false
		}
		result = model
		return true
	}, timeout, 200*time.Millisecond, "driver replica %s did not appear", driverID)
	return result
}

// waitForRiderRow polls the riders table until a row with the id appears.
func waitForRiderRow(t *testing.T, db *gorm.DB, riderID uuid.UUID, timeout time.Duration) repository.RiderModel {
	t.Helper()
	var result repository.RiderModel
	require.Eventually(t, func() bool {
		var model repository.RiderModel
		if err := db.Where("id = ?", riderID).First(&model).Error; err != nil {
			return false
		}
		result = model
		return true
	}, timeout, 200*time.Millisecond, "rider replica %s did not appear", riderID)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
