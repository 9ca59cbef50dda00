package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carpool-platform/service-rides/pkg/apperrors"
)

func newProfileService() (*ProfileService, *memDriverRepo, *memRiderRepo) {
	drivers := newMemDriverRepo()
	riders := newMemRiderRepo()
	return NewProfileService(drivers, riders, zap.NewNop()), drivers, riders
}

func TestRegisterDriver_ThenGet(t *testing.T) {
	svc, _, _ := newProfileService()
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, svc.RegisterDriver(ctx, id, "Aina Rahman", "aina@test.local",
		"+60121112222", "female", "suv", "Proton X70", "VBK 3321"))

	profile, err := svc.GetDriver(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Aina Rahman", profile.Name)
	assert.Equal(t, "Proton X70", profile.VehicleModel)
	assert.Empty(t, profile.RideIDs)
}

func TestGetDriver_Unknown(t *testing.T) {
	svc, _, _ := newProfileService()

	_, err := svc.GetDriver(context.Background(), uuid.New())
	require.ErrorIs(t, err, apperrors.ErrDriverNotFound)
}

func TestUpdateDriverProfile_PartialFieldsKeepRest(t *testing.T) {
	svc, _, _ := newProfileService()
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, svc.RegisterDriver(ctx, id, "Aina Rahman", "aina@test.local",
		"+60121112222", "female", "suv", "Proton X70", "VBK 3321"))

	// Only the phone changes; empty fields leave existing values alone.
	require.NoError(t, svc.UpdateDriverProfile(ctx, id, "", "", "+60129998888", "", "", "", ""))

	profile, err := svc.GetDriver(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "+60129998888", profile.Phone)
	assert.Equal(t, "Aina Rahman", profile.Name)
	assert.Equal(t, "VBK 3321", profile.VehicleNumber)
}

func TestUpdateDriverProfile_UnknownDriverRegisters(t *testing.T) {
	svc, _, _ := newProfileService()
	ctx := context.Background()
	id := uuid.New()

	// An out-of-order update event must still materialize the replica.
	require.NoError(t, svc.UpdateDriverProfile(ctx, id, "Hafiz Omar", "hafiz@test.local",
		"+60123334444", "male", "sedan", "Honda City", "WVX 9090"))

	profile, err := svc.GetDriver(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Hafiz Omar", profile.Name)
}

func TestRegisterRider_ThenGet(t *testing.T) {
	svc, _, riders := newProfileService()
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, svc.RegisterRider(ctx, id, "Hafiz Omar", "hafiz@test.local", "+60123334444"))

	rideID := uuid.New()
	require.NoError(t, riders.RecordBooking(ctx, id, rideID))

	profile, err := svc.GetRider(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Hafiz Omar", profile.Name)
	assert.Equal(t, []uuid.UUID{rideID}, profile.BookedRides)
}
