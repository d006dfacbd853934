// Package booking holds the commit side of the engine: the conflict guard,
// the appointment lifecycle, and the sweep. All writes go through a
// storage-level transaction; there is no in-memory coordination, so multiple
// service instances stay correct.
package booking

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bookably/booking-app/errs"
	"github.com/bookably/booking-app/models"
)

// Store is the appointment persistence boundary. WithResourceLock must
// serialize concurrent callers for the same resource: the callback runs in a
// transaction holding an exclusive lock on the owning business or employee
// row, and sees a Store bound to that transaction.
type Store interface {
	GetByID(ctx context.Context, id uint) (*models.Appointment, error)
	GetByReference(ctx context.Context, reference string) (*models.Appointment, error)
	ListActiveForDay(ctx context.Context, ref models.ResourceRef, date string) ([]models.Appointment, error)
	ListUpcoming(ctx context.Context, ref models.ResourceRef, fromDate string, limit int) ([]models.Appointment, error)
	ListByStatuses(ctx context.Context, statuses []models.AppointmentStatus) ([]models.Appointment, error)
	Create(ctx context.Context, appt *models.Appointment) error
	// UpdateStatusIfCurrent performs the conditional write the sweep and the
	// manual transitions rely on: it succeeds only if the row still has the
	// expected status, so a concurrent transition wins cleanly.
	UpdateStatusIfCurrent(ctx context.Context, id uint, from, to models.AppointmentStatus, updates map[string]any) (bool, error)
	UpdateSchedule(ctx context.Context, id uint, date, startTime, endTime string) error
	WithResourceLock(ctx context.Context, ref models.ResourceRef, fn func(tx Store) error) error
}

// Directory is the read-only collaborator lookup: business settings,
// employees, services. The engine never writes through it.
type Directory interface {
	Business(ctx context.Context, id uint) (*models.Business, error)
	Employee(ctx context.Context, id uint) (*models.Employee, error)
	Service(ctx context.Context, id uint) (*models.Service, error)
}

// occupyingStatuses block a slot: everything except cancelled. A transition
// into cancelled releases the slot the moment the status is written.
var occupyingStatuses = []models.AppointmentStatus{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusCompleted,
	models.StatusNoShow,
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).Preload("Service").First(&appt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("appointment", id)
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (s *GormStore) GetByReference(ctx context.Context, reference string) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).Preload("Service").Where("reference = ?", reference).First(&appt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("appointment", reference)
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (s *GormStore) ListActiveForDay(ctx context.Context, ref models.ResourceRef, date string) ([]models.Appointment, error) {
	var appts []models.Appointment
	q := s.db.WithContext(ctx).Where("date = ? AND status IN ?", date, occupyingStatuses)
	q = scopeResource(q, ref)
	if err := q.Order("start_time asc").Find(&appts).Error; err != nil {
		return nil, err
	}
	return appts, nil
}

func (s *GormStore) ListUpcoming(ctx context.Context, ref models.ResourceRef, fromDate string, limit int) ([]models.Appointment, error) {
	var appts []models.Appointment
	q := s.db.WithContext(ctx).
		Preload("Service").
		Where("date >= ? AND status IN ?", fromDate, []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed})
	q = scopeResource(q, ref)
	q = q.Order("date asc, start_time asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&appts).Error; err != nil {
		return nil, err
	}
	return appts, nil
}

func (s *GormStore) ListByStatuses(ctx context.Context, statuses []models.AppointmentStatus) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := s.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("date asc, start_time asc").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (s *GormStore) Create(ctx context.Context, appt *models.Appointment) error {
	return s.db.WithContext(ctx).Create(appt).Error
}

func (s *GormStore) UpdateStatusIfCurrent(ctx context.Context, id uint, from, to models.AppointmentStatus, updates map[string]any) (bool, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to
	res := s.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) UpdateSchedule(ctx context.Context, id uint, date, startTime, endTime string) error {
	return s.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"date":       date,
			"start_time": startTime,
			"end_time":   endTime,
		}).Error
}

// WithResourceLock opens a transaction and takes a FOR UPDATE lock on the
// owning resource row before running fn. Locking the parent row, not the
// appointment rows, is what makes the guard safe on an empty day: a plain
// FOR UPDATE over appointments has nothing to lock when no rows exist yet,
// and two inserters would both pass the overlap check.
func (s *GormStore) WithResourceLock(ctx context.Context, ref models.ResourceRef, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table string
		switch ref.Kind {
		case models.ResourceBusiness:
			table = "businesses"
		case models.ResourceEmployee:
			table = "employees"
		default:
			return errs.Validation("unknown resource kind %q", ref.Kind)
		}

		var lockedID uint
		row := tx.Raw(fmt.Sprintf("SELECT id FROM %s WHERE id = ? FOR UPDATE", table), ref.ID).Scan(&lockedID)
		if row.Error != nil {
			return row.Error
		}
		if lockedID == 0 {
			return errs.NotFound(string(ref.Kind), ref.ID)
		}

		return fn(&GormStore{db: tx})
	})
}

func scopeResource(q *gorm.DB, ref models.ResourceRef) *gorm.DB {
	switch ref.Kind {
	case models.ResourceEmployee:
		return q.Where("employee_id = ?", ref.ID)
	default:
		// Business-level bookings only; employee appointments are tracked
		// against the employee resource.
		return q.Where("business_id = ? AND employee_id IS NULL", ref.ID)
	}
}

type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func (d *GormDirectory) Business(ctx context.Context, id uint) (*models.Business, error) {
	var business models.Business
	err := d.db.WithContext(ctx).Preload("Settings").First(&business, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("business", id)
	}
	if err != nil {
		return nil, err
	}
	return &business, nil
}

func (d *GormDirectory) Employee(ctx context.Context, id uint) (*models.Employee, error) {
	var employee models.Employee
	err := d.db.WithContext(ctx).First(&employee, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("employee", id)
	}
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (d *GormDirectory) Service(ctx context.Context, id uint) (*models.Service, error) {
	var service models.Service
	err := d.db.WithContext(ctx).First(&service, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("service", id)
	}
	if err != nil {
		return nil, err
	}
	return &service, nil
}
