package availability

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bookably/booking-app/models"
)

// GormRuleStore is the database-backed RuleStore.
type GormRuleStore struct {
	db *gorm.DB
}

func NewGormRuleStore(db *gorm.DB) *GormRuleStore {
	return &GormRuleStore{db: db}
}

func (s *GormRuleStore) SpecialDateFor(ctx context.Context, ref models.ResourceRef, date string) (*models.SpecialDate, error) {
	var special models.SpecialDate
	err := s.db.WithContext(ctx).
		Where("resource_kind = ? AND resource_id = ? AND date = ?", ref.Kind, ref.ID, date).
		Order("updated_at DESC").
		First(&special).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &special, nil
}

// WeeklyRuleFor returns the rule for (ref, day) with its breaks preloaded.
// The schema does not force one row per weekday; when several exist the most
// recently updated one wins.
func (s *GormRuleStore) WeeklyRuleFor(ctx context.Context, ref models.ResourceRef, day models.DayOfWeek) (*models.WeeklyRule, error) {
	var rule models.WeeklyRule
	err := s.db.WithContext(ctx).
		Preload("Breaks").
		Where("resource_kind = ? AND resource_id = ? AND day_of_week = ?", ref.Kind, ref.ID, day).
		Order("updated_at DESC").
		First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}
