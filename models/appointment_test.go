package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    AppointmentStatus
		to      AppointmentStatus
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusNoShow, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusNoShow, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusNoShow, StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			appt := Appointment{Status: tt.from}
			err := appt.CanTransition(tt.to)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusNoShow.IsTerminal())
}

func TestResourceRefFallback(t *testing.T) {
	appt := Appointment{BusinessID: 7}
	assert.Equal(t, BusinessRef(7), appt.ResourceRef())

	employeeID := uint(3)
	appt.EmployeeID = &employeeID
	assert.Equal(t, EmployeeRef(3), appt.ResourceRef())
}

func TestEndsAt(t *testing.T) {
	appt := Appointment{Date: "2025-12-15", EndTime: "17:30"}
	got, err := appt.EndsAt(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 15, 17, 30, 0, 0, time.UTC), got)
}

func TestBusinessSettingsCapacity(t *testing.T) {
	assert.Equal(t, 1, BusinessSettings{CapacityMode: CapacitySingle, DefaultCapacity: 5}.Capacity())
	assert.Equal(t, 5, BusinessSettings{CapacityMode: CapacityMulti, DefaultCapacity: 5}.Capacity())
	assert.Equal(t, 1, BusinessSettings{CapacityMode: CapacityMulti}.Capacity())
}
