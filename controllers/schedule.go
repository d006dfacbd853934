package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bookably/booking-app/db"
	"github.com/bookably/booking-app/errs"
	"github.com/bookably/booking-app/models"
	"github.com/bookably/booking-app/utils"
)

func validateWeeklyRule(rule *models.WeeklyRule) error {
	if !rule.Resource().Valid() {
		return errs.Validation("resource_kind and resource_id are required")
	}
	if rule.DayOfWeek < models.Sunday || rule.DayOfWeek > models.Saturday {
		return errs.Validation("day_of_week %d out of range [0,6]", rule.DayOfWeek)
	}
	start, err := utils.ParseClock(rule.StartTime)
	if err != nil {
		return err
	}
	end, err := utils.ParseClock(rule.EndTime)
	if err != nil {
		return err
	}
	if start >= end {
		return errs.Validation("start_time %s must be before end_time %s", rule.StartTime, rule.EndTime)
	}
	for _, b := range rule.Breaks {
		bs, err := utils.ParseClock(b.BreakStart)
		if err != nil {
			return err
		}
		be, err := utils.ParseClock(b.BreakEnd)
		if err != nil {
			return err
		}
		if bs >= be {
			return errs.Validation("break_start %s must be before break_end %s", b.BreakStart, b.BreakEnd)
		}
		if bs < start || be > end {
			return errs.Validation("break %s-%s must lie within rule hours %s-%s",
				b.BreakStart, b.BreakEnd, rule.StartTime, rule.EndTime)
		}
	}
	return nil
}

// GetWeeklyRules lists the weekly rules (with breaks) for a resource.
func GetWeeklyRules(c *fiber.Ctx) error {
	kind := models.ResourceKind(c.Query("resource_kind", string(models.ResourceBusiness)))
	resourceID := c.QueryInt("resource_id")
	if resourceID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{Message: "resource_id is required"})
	}

	var rules []models.WeeklyRule
	if err := db.DB.Preload("Breaks").
		Where("resource_kind = ? AND resource_id = ?", kind, resourceID).
		Order("day_of_week asc, updated_at desc").
		Find(&rules).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to get weekly rules",
			Error:   err.Error(),
		})
	}
	return c.JSON(rules)
}

// CreateWeeklyRule creates a weekly rule with its nested breaks.
func CreateWeeklyRule(c *fiber.Ctx) error {
	rule := new(models.WeeklyRule)
	if err := c.BodyParser(rule); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if err := validateWeeklyRule(rule); err != nil {
		return utils.FailWith(c, "Invalid weekly rule", err)
	}
	if err := db.DB.Create(rule).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to create weekly rule",
			Error:   err.Error(),
		})
	}
	invalidateRuleCache(c, rule.Resource())
	return c.Status(fiber.StatusCreated).JSON(rule)
}

// UpdateWeeklyRule replaces a rule's fields and break set.
func UpdateWeeklyRule(c *fiber.Ctx) error {
	id, _ := c.ParamsInt("id")
	var rule models.WeeklyRule
	if err := db.DB.Preload("Breaks").First(&rule, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{Message: "Weekly rule not found"})
	}

	incoming := new(models.WeeklyRule)
	if err := c.BodyParser(incoming); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	incoming.ID = rule.ID
	incoming.ResourceKind = rule.ResourceKind
	incoming.ResourceID = rule.ResourceID
	if err := validateWeeklyRule(incoming); err != nil {
		return utils.FailWith(c, "Invalid weekly rule", err)
	}

	// Replace the break set wholesale; breaks have no identity of their own.
	if err := db.DB.Where("weekly_rule_id = ?", rule.ID).Delete(&models.BreakWindow{}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to update weekly rule",
			Error:   err.Error(),
		})
	}
	if err := db.DB.Save(incoming).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to update weekly rule",
			Error:   err.Error(),
		})
	}
	invalidateRuleCache(c, incoming.Resource())
	return c.JSON(incoming)
}

// DeleteWeeklyRule removes a rule and cascades its break windows.
func DeleteWeeklyRule(c *fiber.Ctx) error {
	id, _ := c.ParamsInt("id")
	var rule models.WeeklyRule
	if err := db.DB.First(&rule, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{Message: "Weekly rule not found"})
	}
	if err := db.DB.Where("weekly_rule_id = ?", rule.ID).Delete(&models.BreakWindow{}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to delete weekly rule",
			Error:   err.Error(),
		})
	}
	if err := db.DB.Delete(&rule).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to delete weekly rule",
			Error:   err.Error(),
		})
	}
	invalidateRuleCache(c, rule.Resource())
	return c.SendStatus(fiber.StatusNoContent)
}

func validateSpecialDate(special *models.SpecialDate) error {
	if !special.Resource().Valid() {
		return errs.Validation("resource_kind and resource_id are required")
	}
	if _, err := utils.ParseDate(special.Date, time.UTC); err != nil {
		return err
	}
	if special.StartTime != nil || special.EndTime != nil {
		if special.StartTime == nil || special.EndTime == nil {
			return errs.Validation("start_time and end_time must be set together")
		}
		start, err := utils.ParseClock(*special.StartTime)
		if err != nil {
			return err
		}
		end, err := utils.ParseClock(*special.EndTime)
		if err != nil {
			return err
		}
		if start >= end {
			return errs.Validation("start_time %s must be before end_time %s", *special.StartTime, *special.EndTime)
		}
	}
	return nil
}

// GetSpecialDates lists the special dates for a resource.
func GetSpecialDates(c *fiber.Ctx) error {
	kind := models.ResourceKind(c.Query("resource_kind", string(models.ResourceBusiness)))
	resourceID := c.QueryInt("resource_id")
	if resourceID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{Message: "resource_id is required"})
	}

	var specials []models.SpecialDate
	if err := db.DB.
		Where("resource_kind = ? AND resource_id = ?", kind, resourceID).
		Order("date asc").
		Find(&specials).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to get special dates",
			Error:   err.Error(),
		})
	}
	return c.JSON(specials)
}

// CreateSpecialDate adds a date override. One authoritative row per
// (resource, date): an existing row for the date is replaced.
func CreateSpecialDate(c *fiber.Ctx) error {
	special := new(models.SpecialDate)
	if err := c.BodyParser(special); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if err := validateSpecialDate(special); err != nil {
		return utils.FailWith(c, "Invalid special date", err)
	}

	db.DB.Where("resource_kind = ? AND resource_id = ? AND date = ?",
		special.ResourceKind, special.ResourceID, special.Date).
		Delete(&models.SpecialDate{})

	if err := db.DB.Create(special).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to create special date",
			Error:   err.Error(),
		})
	}
	invalidateRuleCache(c, special.Resource())
	return c.Status(fiber.StatusCreated).JSON(special)
}

// DeleteSpecialDate removes a date override.
func DeleteSpecialDate(c *fiber.Ctx) error {
	id, _ := c.ParamsInt("id")
	var special models.SpecialDate
	if err := db.DB.First(&special, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{Message: "Special date not found"})
	}
	if err := db.DB.Delete(&special).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to delete special date",
			Error:   err.Error(),
		})
	}
	invalidateRuleCache(c, special.Resource())
	return c.SendStatus(fiber.StatusNoContent)
}

// Rule edits change what the generator would produce, so cached slot sets
// for the resource are stale. TTL covers the per-date keys; dropping the
// whole resource would need a SCAN, so rely on the short TTL here and only
// drop today's entry eagerly.
func invalidateRuleCache(c *fiber.Ctx, ref models.ResourceRef) {
	if Slots == nil {
		return
	}
	Slots.Invalidate(c.Context(), ref, time.Now().Format("2006-01-02"))
}
