package availability

import (
	"sort"
	"time"

	"github.com/bookably/booking-app/errs"
	"github.com/bookably/booking-app/utils"
)

// Slot is one bookable candidate start, tagged with its computed end.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Booked is an existing committed appointment's window on the resource/date,
// in minutes since midnight. Cancelled appointments must not be passed in.
type Booked struct {
	Start int
	End   int
}

// SlotRequest carries everything the generator needs. It is a pure
// computation: the request includes "now" so tests inject the clock, and the
// result is advisory only. The commit boundary re-validates.
type SlotRequest struct {
	Date time.Time // midnight of the requested date, business time zone
	Now  time.Time

	Open     []Interval
	Booked   []Booked
	Capacity int

	DurationMin    int
	StepMin        int
	BufferMin      int
	MinNoticeHours int
	MaxAdvanceDays int
}

// GenerateSlots walks the open intervals at StepMin granularity and returns
// the candidates that fit the service duration and survive the occupancy
// check. A date outside the notice/advance window returns
// PolicyRejectedError, which callers must keep distinct from an empty result
// (a fully booked or closed day).
func GenerateSlots(req SlotRequest) ([]Slot, error) {
	if req.DurationMin <= 0 {
		return nil, errs.Validation("service duration must be positive")
	}
	if req.StepMin <= 0 {
		req.StepMin = req.DurationMin
	}
	capacity := req.Capacity
	if capacity < 1 {
		capacity = 1
	}

	if err := CheckBookingWindow(req.Date, req.Now, req.MinNoticeHours, req.MaxAdvanceDays); err != nil {
		return nil, err
	}

	earliest := req.Now.Add(time.Duration(req.MinNoticeHours) * time.Hour)

	var slots []Slot
	for _, open := range req.Open {
		for start := open.Start; start+req.DurationMin <= open.End; start += req.StepMin {
			end := start + req.DurationMin
			if utils.At(req.Date, start).Before(earliest) {
				continue
			}
			if MaxConcurrent(req.Booked, start, end, req.BufferMin) >= capacity {
				continue
			}
			slots = append(slots, Slot{
				Start: utils.FormatClock(start),
				End:   utils.FormatClock(end),
			})
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Start < slots[j].Start })
	return slots, nil
}

// CheckBookingWindow rejects dates outside the notice/advance policy. The
// reserve path runs the same check so a policy violation never reaches the
// conflict guard.
func CheckBookingWindow(date, now time.Time, noticeHours, advanceDays int) error {
	today := utils.StartOfDay(now.In(date.Location()))
	dayEnd := date.AddDate(0, 0, 1)

	if date.Before(today) {
		return errs.PolicyRejected("date %s is in the past", date.Format(utils.DateLayout))
	}
	// The whole day fails the notice window only when even its last instant
	// is too soon.
	if !now.Add(time.Duration(noticeHours) * time.Hour).Before(dayEnd) {
		return errs.PolicyRejected("date %s is inside the %dh booking notice window",
			date.Format(utils.DateLayout), noticeHours)
	}
	if advanceDays > 0 {
		limit := today.AddDate(0, 0, advanceDays)
		if date.After(limit) {
			return errs.PolicyRejected("date %s is more than %d days ahead",
				date.Format(utils.DateLayout), advanceDays)
		}
	}
	return nil
}

// MaxConcurrent returns the highest number of booked windows simultaneously
// covering any instant of the candidate [start, end). Each booked window
// blocks [Start, End+buffer): buffer applies after an appointment only. The
// conflict guard runs the same predicate at commit time.
func MaxConcurrent(booked []Booked, start, end, buffer int) int {
	peak := 0
	at := func(instant int) {
		n := 0
		for _, b := range booked {
			if b.Start <= instant && instant < b.End+buffer {
				n++
			}
		}
		if n > peak {
			peak = n
		}
	}

	at(start)
	for _, b := range booked {
		if b.Start >= start && b.Start < end {
			at(b.Start)
		}
	}
	return peak
}
