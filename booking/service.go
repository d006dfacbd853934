package booking

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookably/booking-app/availability"
	"github.com/bookably/booking-app/errs"
	"github.com/bookably/booking-app/metrics"
	"github.com/bookably/booking-app/models"
	"github.com/bookably/booking-app/utils"
)

// Invalidator drops cached slot sets when occupancy changes. A nil
// invalidator is a no-op.
type Invalidator interface {
	Invalidate(ctx context.Context, ref models.ResourceRef, date string)
}

// Service orchestrates availability resolution, slot generation and the
// transactional booking flow. The clock is injected so sweep and notice
// logic are testable without real timers.
type Service struct {
	store    Store
	dir      Directory
	resolver *availability.Resolver
	cache    Invalidator
	log      zerolog.Logger
	clock    func() time.Time
}

func NewService(store Store, dir Directory, resolver *availability.Resolver, cache Invalidator, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		dir:      dir,
		resolver: resolver,
		cache:    cache,
		log:      log,
		clock:    time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (s *Service) SetClock(clock func() time.Time) {
	s.clock = clock
}

// TransitionResult gives the notification collaborator enough to act on:
// the updated appointment plus the states it moved between.
type TransitionResult struct {
	Appointment *models.Appointment      `json:"appointment"`
	From        models.AppointmentStatus `json:"from"`
	To          models.AppointmentStatus `json:"to"`
}

// bookingContext is everything resolved once per request: the business and
// its settings, the target resource, the service, and the parsed date.
type bookingContext struct {
	business *models.Business
	settings models.BusinessSettings
	service  *models.Service
	resource models.ResourceRef
	loc      *time.Location
	date     time.Time // midnight, business zone
	dateStr  string
}

func (s *Service) resolveBookingContext(ctx context.Context, businessID uint, employeeID *uint, serviceID uint, date string) (*bookingContext, error) {
	business, err := s.dir.Business(ctx, businessID)
	if err != nil {
		return nil, err
	}
	settings := business.Settings

	service, err := s.dir.Service(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if service.BusinessID != businessID {
		return nil, errs.NotFound("service", serviceID)
	}
	if service.Duration <= 0 {
		return nil, errs.Validation("service %d has no duration configured", serviceID)
	}

	resource := models.BusinessRef(businessID)
	if employeeID != nil && *employeeID != 0 {
		employee, err := s.dir.Employee(ctx, *employeeID)
		if err != nil {
			return nil, err
		}
		if employee.BusinessID != businessID {
			return nil, errs.NotFound("employee", *employeeID)
		}
		if !employee.IsActive {
			return nil, errs.Validation("employee %d is not accepting bookings", *employeeID)
		}
		resource = models.EmployeeRef(*employeeID)
	}

	loc := settings.Location()
	day, err := utils.ParseDate(date, loc)
	if err != nil {
		return nil, err
	}

	return &bookingContext{
		business: business,
		settings: settings,
		service:  service,
		resource: resource,
		loc:      loc,
		date:     day,
		dateStr:  date,
	}, nil
}

func (bc *bookingContext) defaults() availability.DayWindow {
	return availability.DayWindow{Start: bc.settings.DayStart, End: bc.settings.DayEnd}
}

func (bc *bookingContext) capacity(rule availability.DayRule) int {
	if rule.CapacityOverride != nil && *rule.CapacityOverride > 0 && bc.settings.CapacityMode == models.CapacityMulti {
		return *rule.CapacityOverride
	}
	return bc.settings.Capacity()
}

// ResolveAvailability returns the open intervals for (resource, date) as
// "HH:MM" pairs, net of breaks and special-date overrides.
func (s *Service) ResolveAvailability(ctx context.Context, businessID uint, employeeID *uint, date string) ([]availability.Slot, error) {
	business, err := s.dir.Business(ctx, businessID)
	if err != nil {
		return nil, err
	}
	settings := business.Settings

	resource := models.BusinessRef(businessID)
	if employeeID != nil && *employeeID != 0 {
		employee, err := s.dir.Employee(ctx, *employeeID)
		if err != nil {
			return nil, err
		}
		if employee.BusinessID != businessID {
			return nil, errs.NotFound("employee", *employeeID)
		}
		resource = models.EmployeeRef(*employeeID)
	}

	loc := settings.Location()
	day, err := utils.ParseDate(date, loc)
	if err != nil {
		return nil, err
	}

	intervals, err := s.resolver.Resolve(ctx, resource, date, models.DayOfWeek(day.Weekday()),
		availability.DayWindow{Start: settings.DayStart, End: settings.DayEnd})
	if err != nil {
		return nil, err
	}

	out := make([]availability.Slot, 0, len(intervals))
	for _, iv := range intervals {
		out = append(out, availability.Slot{
			Start: utils.FormatClock(iv.Start),
			End:   utils.FormatClock(iv.End),
		})
	}
	return out, nil
}

// GenerateSlots computes the bookable start times for a service on a date.
// Advisory only: time passes between display and commit, so Reserve
// re-validates against current state.
func (s *Service) GenerateSlots(ctx context.Context, businessID uint, employeeID *uint, serviceID uint, date string) ([]availability.Slot, error) {
	bc, err := s.resolveBookingContext(ctx, businessID, employeeID, serviceID, date)
	if err != nil {
		return nil, err
	}

	rule, err := s.resolver.ResolveDay(ctx, bc.resource, bc.dateStr, models.DayOfWeek(bc.date.Weekday()), bc.defaults())
	if err != nil {
		return nil, err
	}

	booked, err := s.bookedWindows(ctx, s.store, bc, 0)
	if err != nil {
		return nil, err
	}

	return availability.GenerateSlots(availability.SlotRequest{
		Date:           bc.date,
		Now:            s.clock().In(bc.loc),
		Open:           rule.Intervals,
		Booked:         booked,
		Capacity:       bc.capacity(rule),
		DurationMin:    bc.service.Duration,
		StepMin:        bc.service.Step(),
		BufferMin:      bc.settings.BufferTime,
		MinNoticeHours: bc.settings.MinBookingNotice,
		MaxAdvanceDays: bc.settings.MaxAdvanceBooking,
	})
}

// ReserveRequest is one booking attempt for a concrete slot.
type ReserveRequest struct {
	BusinessID  uint   `json:"business_id"`
	EmployeeID  *uint  `json:"employee_id"`
	ServiceID   uint   `json:"service_id"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	ClientPhone string `json:"client_phone"`
}

// Reserve is the conflict guard: the one place an appointment is created.
// It re-validates the slot against current committed state inside a
// transaction that holds the resource lock, so of N concurrent callers for
// the same slot exactly one wins and the rest get ConflictError. It never
// picks an alternate slot.
func (s *Service) Reserve(ctx context.Context, req ReserveRequest) (*models.Appointment, error) {
	bc, err := s.resolveBookingContext(ctx, req.BusinessID, req.EmployeeID, req.ServiceID, req.Date)
	if err != nil {
		return nil, err
	}

	startMin, err := utils.ParseClock(req.StartTime)
	if err != nil {
		return nil, err
	}
	endMin := startMin + bc.service.Duration

	now := s.clock().In(bc.loc)
	if err := availability.CheckBookingWindow(bc.date, now, bc.settings.MinBookingNotice, bc.settings.MaxAdvanceBooking); err != nil {
		return nil, err
	}
	if utils.At(bc.date, startMin).Before(now.Add(time.Duration(bc.settings.MinBookingNotice) * time.Hour)) {
		return nil, errs.PolicyRejected("start %s is inside the %dh booking notice window",
			req.StartTime, bc.settings.MinBookingNotice)
	}

	rule, err := s.resolver.ResolveDay(ctx, bc.resource, bc.dateStr, models.DayOfWeek(bc.date.Weekday()), bc.defaults())
	if err != nil {
		return nil, err
	}
	if !slotWithin(rule.Intervals, startMin, endMin) {
		return nil, errs.Conflict("requested time is outside bookable hours")
	}
	capacity := bc.capacity(rule)

	status := models.StatusPending
	var confirmedAt *time.Time
	if bc.settings.AutoConfirm && !bc.settings.RequireEmailConfirmation {
		status = models.StatusConfirmed
		t := s.clock()
		confirmedAt = &t
	}

	appt := &models.Appointment{
		BusinessID:  req.BusinessID,
		EmployeeID:  req.EmployeeID,
		ServiceID:   req.ServiceID,
		Date:        req.Date,
		StartTime:   utils.FormatClock(startMin),
		EndTime:     utils.FormatClock(endMin),
		Status:      status,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		ClientPhone: req.ClientPhone,
		ConfirmedAt: confirmedAt,
	}

	err = s.store.WithResourceLock(ctx, bc.resource, func(tx Store) error {
		booked, err := s.bookedWindows(ctx, tx, bc, 0)
		if err != nil {
			return err
		}
		if availability.MaxConcurrent(booked, startMin, endMin, bc.settings.BufferTime) >= capacity {
			return errs.Conflict("slot no longer available")
		}
		return tx.Create(ctx, appt)
	})
	if err != nil {
		var conflict *errs.ConflictError
		if errors.As(err, &conflict) {
			metrics.IncReserveConflict()
		}
		return nil, err
	}

	metrics.IncAppointmentCreated(string(appt.Status))
	s.invalidate(ctx, bc, req.Date)
	s.log.Info().
		Uint("appointment_id", appt.ID).
		Str("resource", bc.resource.String()).
		Str("date", req.Date).
		Str("start", appt.StartTime).
		Str("status", string(appt.Status)).
		Msg("appointment reserved")

	return appt, nil
}

// Confirm moves a pending appointment to confirmed.
func (s *Service) Confirm(ctx context.Context, id uint) (*TransitionResult, error) {
	return s.transition(ctx, id, models.StatusConfirmed, "manual", map[string]any{
		"confirmed_at": s.clock(),
	})
}

// Cancel moves a pending or confirmed appointment to cancelled and releases
// its slot.
func (s *Service) Cancel(ctx context.Context, id uint, reason string) (*TransitionResult, error) {
	return s.transition(ctx, id, models.StatusCancelled, "manual", map[string]any{
		"cancellation_reason": reason,
	})
}

// Complete closes out a confirmed appointment.
func (s *Service) Complete(ctx context.Context, id uint) (*TransitionResult, error) {
	return s.transition(ctx, id, models.StatusCompleted, "manual", nil)
}

// NoShow marks a confirmed appointment whose client never arrived.
func (s *Service) NoShow(ctx context.Context, id uint) (*TransitionResult, error) {
	return s.transition(ctx, id, models.StatusNoShow, "manual", nil)
}

func (s *Service) transition(ctx context.Context, id uint, to models.AppointmentStatus, trigger string, updates map[string]any) (*TransitionResult, error) {
	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := appt.Status
	if err := appt.CanTransition(to); err != nil {
		return nil, errs.InvalidTransition("%v", err)
	}

	ok, err := s.store.UpdateStatusIfCurrent(ctx, id, from, to, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent writer moved the appointment first.
		return nil, errs.Conflict("appointment state changed, reload and retry")
	}

	updated, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.IncTransition(string(to), trigger)
	if to == models.StatusCancelled {
		s.invalidateAppointment(ctx, updated)
	}
	s.log.Info().
		Uint("appointment_id", id).
		Str("from", string(from)).
		Str("to", string(to)).
		Str("trigger", trigger).
		Msg("appointment transition")

	return &TransitionResult{Appointment: updated, From: from, To: to}, nil
}

// Reschedule validates the new slot exactly as a fresh booking would, then
// replaces date/startTime/endTime atomically, leaving status unchanged. On
// any validation failure the original appointment is untouched.
func (s *Service) Reschedule(ctx context.Context, id uint, newDate, newStart string) (*models.Appointment, error) {
	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status.IsTerminal() {
		return nil, errs.InvalidTransition("cannot reschedule a %s appointment", appt.Status)
	}

	bc, err := s.resolveBookingContext(ctx, appt.BusinessID, appt.EmployeeID, appt.ServiceID, newDate)
	if err != nil {
		return nil, err
	}

	startMin, err := utils.ParseClock(newStart)
	if err != nil {
		return nil, err
	}
	endMin := startMin + bc.service.Duration

	now := s.clock().In(bc.loc)
	if err := availability.CheckBookingWindow(bc.date, now, bc.settings.MinBookingNotice, bc.settings.MaxAdvanceBooking); err != nil {
		return nil, err
	}

	rule, err := s.resolver.ResolveDay(ctx, bc.resource, bc.dateStr, models.DayOfWeek(bc.date.Weekday()), bc.defaults())
	if err != nil {
		return nil, err
	}
	if !slotWithin(rule.Intervals, startMin, endMin) {
		return nil, errs.Conflict("requested time is outside bookable hours")
	}
	capacity := bc.capacity(rule)

	oldDate := appt.Date
	err = s.store.WithResourceLock(ctx, bc.resource, func(tx Store) error {
		booked, err := s.bookedWindows(ctx, tx, bc, appt.ID)
		if err != nil {
			return err
		}
		if availability.MaxConcurrent(booked, startMin, endMin, bc.settings.BufferTime) >= capacity {
			return errs.Conflict("slot no longer available")
		}
		return tx.UpdateSchedule(ctx, appt.ID, newDate, utils.FormatClock(startMin), utils.FormatClock(endMin))
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, bc, oldDate)
	s.invalidate(ctx, bc, newDate)
	s.log.Info().
		Uint("appointment_id", appt.ID).
		Str("from", oldDate+" "+appt.StartTime).
		Str("to", newDate+" "+utils.FormatClock(startMin)).
		Msg("appointment rescheduled")

	return s.store.GetByID(ctx, appt.ID)
}

// Get fetches one appointment by id.
func (s *Service) Get(ctx context.Context, id uint) (*models.Appointment, error) {
	return s.store.GetByID(ctx, id)
}

// GetByReference fetches one appointment by its public booking reference.
func (s *Service) GetByReference(ctx context.Context, reference string) (*models.Appointment, error) {
	return s.store.GetByReference(ctx, reference)
}

// Upcoming lists pending/confirmed appointments for a resource from today.
func (s *Service) Upcoming(ctx context.Context, ref models.ResourceRef, limit int) ([]models.Appointment, error) {
	today := s.clock().Format(utils.DateLayout)
	return s.store.ListUpcoming(ctx, ref, today, limit)
}

// bookedWindows loads the committed windows for the day, excluding skipID
// (the appointment being rescheduled) and anything cancelled.
func (s *Service) bookedWindows(ctx context.Context, store Store, bc *bookingContext, skipID uint) ([]availability.Booked, error) {
	existing, err := store.ListActiveForDay(ctx, bc.resource, bc.dateStr)
	if err != nil {
		return nil, err
	}
	booked := make([]availability.Booked, 0, len(existing))
	for _, a := range existing {
		if a.ID == skipID {
			continue
		}
		start, err := utils.ParseClock(a.StartTime)
		if err != nil {
			return nil, errs.InvalidRule("appointment %d has bad start time %q", a.ID, a.StartTime)
		}
		end, err := utils.ParseClock(a.EndTime)
		if err != nil {
			return nil, errs.InvalidRule("appointment %d has bad end time %q", a.ID, a.EndTime)
		}
		booked = append(booked, availability.Booked{Start: start, End: end})
	}
	return booked, nil
}

func (s *Service) invalidate(ctx context.Context, bc *bookingContext, date string) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, bc.resource, date)
	if bc.resource.Kind == models.ResourceEmployee {
		s.cache.Invalidate(ctx, models.BusinessRef(bc.business.ID), date)
	}
}

func (s *Service) invalidateAppointment(ctx context.Context, appt *models.Appointment) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, appt.ResourceRef(), appt.Date)
	s.cache.Invalidate(ctx, models.BusinessRef(appt.BusinessID), appt.Date)
}

func slotWithin(open []availability.Interval, start, end int) bool {
	for _, iv := range open {
		if start >= iv.Start && end <= iv.End {
			return true
		}
	}
	return false
}
