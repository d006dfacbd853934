package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookably/booking-app/errs"
)

// monday is a fixed future Monday so notice/advance checks are deterministic.
var monday = time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)

// now is the prior Wednesday morning, comfortably outside any notice window.
var now = time.Date(2025, 12, 10, 8, 0, 0, 0, time.UTC)

func starts(slots []Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Start
	}
	return out
}

func TestGenerateSlotsFullDayWithBreak(t *testing.T) {
	// 09:00-17:00 with a 12:00-13:00 break, 30 min service on a 30 min
	// step: 14 slots, never 12:00 or 12:30.
	slots, err := GenerateSlots(SlotRequest{
		Date:        monday,
		Now:         now,
		Open:        []Interval{{Start: 540, End: 720}, {Start: 780, End: 1020}},
		DurationMin: 30,
		StepMin:     30,
		Capacity:    1,
	})
	require.NoError(t, err)

	want := []string{
		"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
		"13:00", "13:30", "14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
	}
	assert.Equal(t, want, starts(slots))
	assert.NotContains(t, starts(slots), "12:00")
	assert.NotContains(t, starts(slots), "12:30")
	assert.Equal(t, "09:30", slots[0].End)
}

func TestGenerateSlotsServiceMustFitInterval(t *testing.T) {
	// A 45 min service stepping by 30 inside 09:00-10:30: starts at 09:00
	// and 09:30 fit, 10:00 would end past the interval.
	slots, err := GenerateSlots(SlotRequest{
		Date:        monday,
		Now:         now,
		Open:        []Interval{{Start: 540, End: 630}},
		DurationMin: 45,
		StepMin:     30,
		Capacity:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30"}, starts(slots))
}

func TestGenerateSlotsOccupancy(t *testing.T) {
	base := SlotRequest{
		Date:        monday,
		Now:         now,
		Open:        []Interval{{Start: 540, End: 720}}, // 09:00-12:00
		DurationMin: 60,
		StepMin:     60,
	}

	t.Run("single capacity blocks overlap", func(t *testing.T) {
		req := base
		req.Capacity = 1
		req.Booked = []Booked{{Start: 600, End: 660}} // 10:00-11:00
		slots, err := GenerateSlots(req)
		require.NoError(t, err)
		assert.Equal(t, []string{"09:00", "11:00"}, starts(slots))
	})

	t.Run("buffer after an appointment blocks the following slot", func(t *testing.T) {
		req := base
		req.Capacity = 1
		req.BufferMin = 15
		req.Booked = []Booked{{Start: 600, End: 660}} // blocks through 11:15
		slots, err := GenerateSlots(req)
		require.NoError(t, err)
		// 11:00 overlaps the buffer tail; only 09:00 survives.
		assert.Equal(t, []string{"09:00"}, starts(slots))
	})

	t.Run("buffer does not extend before an appointment", func(t *testing.T) {
		req := base
		req.Capacity = 1
		req.BufferMin = 15
		req.Booked = []Booked{{Start: 600, End: 720}} // 10:00-12:00
		slots, err := GenerateSlots(req)
		require.NoError(t, err)
		// 09:00-10:00 abuts the appointment start and stays bookable.
		assert.Equal(t, []string{"09:00"}, starts(slots))
	})

	t.Run("multi capacity allows overlap up to the limit", func(t *testing.T) {
		req := base
		req.Capacity = 2
		req.Booked = []Booked{{Start: 600, End: 660}}
		slots, err := GenerateSlots(req)
		require.NoError(t, err)
		assert.Equal(t, []string{"09:00", "10:00", "11:00"}, starts(slots))

		req.Booked = append(req.Booked, Booked{Start: 600, End: 660})
		slots, err = GenerateSlots(req)
		require.NoError(t, err)
		assert.Equal(t, []string{"09:00", "11:00"}, starts(slots))
	})
}

func TestGenerateSlotsPolicyWindow(t *testing.T) {
	open := []Interval{{Start: 540, End: 1020}}

	t.Run("past date rejected", func(t *testing.T) {
		_, err := GenerateSlots(SlotRequest{
			Date:        monday,
			Now:         time.Date(2025, 12, 16, 8, 0, 0, 0, time.UTC),
			Open:        open,
			DurationMin: 30,
			Capacity:    1,
		})
		var policy *errs.PolicyRejectedError
		require.ErrorAs(t, err, &policy)
	})

	t.Run("date beyond max advance rejected", func(t *testing.T) {
		_, err := GenerateSlots(SlotRequest{
			Date:           monday,
			Now:            now,
			Open:           open,
			DurationMin:    30,
			Capacity:       1,
			MaxAdvanceDays: 3,
		})
		var policy *errs.PolicyRejectedError
		require.ErrorAs(t, err, &policy)
	})

	t.Run("notice window covering the whole date rejected", func(t *testing.T) {
		_, err := GenerateSlots(SlotRequest{
			Date:           monday,
			Now:            time.Date(2025, 12, 14, 23, 0, 0, 0, time.UTC),
			Open:           open,
			DurationMin:    30,
			Capacity:       1,
			MinNoticeHours: 30,
		})
		var policy *errs.PolicyRejectedError
		require.ErrorAs(t, err, &policy)
	})

	t.Run("policy rejection is distinct from a fully booked day", func(t *testing.T) {
		// Fully booked: no error, empty result.
		slots, err := GenerateSlots(SlotRequest{
			Date:        monday,
			Now:         now,
			Open:        []Interval{{Start: 540, End: 600}},
			Booked:      []Booked{{Start: 540, End: 600}},
			DurationMin: 60,
			Capacity:    1,
		})
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("same-day notice trims only the early candidates", func(t *testing.T) {
		slots, err := GenerateSlots(SlotRequest{
			Date:           monday,
			Now:            time.Date(2025, 12, 15, 9, 30, 0, 0, time.UTC),
			Open:           []Interval{{Start: 540, End: 840}}, // 09:00-14:00
			DurationMin:    60,
			StepMin:        60,
			Capacity:       1,
			MinNoticeHours: 2,
		})
		require.NoError(t, err)
		// Earliest allowed start is 11:30, so 12:00 and 13:00 survive.
		assert.Equal(t, []string{"12:00", "13:00"}, starts(slots))
	})
}

func TestMaxConcurrent(t *testing.T) {
	booked := []Booked{
		{Start: 600, End: 660},
		{Start: 630, End: 690},
		{Start: 660, End: 720},
	}

	assert.Equal(t, 2, MaxConcurrent(booked, 600, 720, 0))
	assert.Equal(t, 0, MaxConcurrent(booked, 540, 600, 0))
	assert.Equal(t, 1, MaxConcurrent(booked, 690, 750, 0))
	// With a buffer the first window stretches to 675 and three overlap at 660.
	assert.Equal(t, 3, MaxConcurrent(booked, 600, 720, 15))
	assert.Equal(t, 0, MaxConcurrent(nil, 600, 720, 0))
}
