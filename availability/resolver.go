// Package availability resolves layered time rules into open intervals and
// discretizes them into bookable slots. Everything here is computed in
// minutes since midnight, in the business time zone; "HH:MM" strings only
// appear at the edges.
package availability

import (
	"context"
	"sort"

	"github.com/bookably/booking-app/errs"
	"github.com/bookably/booking-app/models"
	"github.com/bookably/booking-app/utils"
)

// Interval is a half-open [Start, End) range in minutes since midnight.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (i Interval) Empty() bool {
	return i.End <= i.Start
}

// DayRuleKind tags which rule layer decided the day.
type DayRuleKind string

const (
	WeeklyOpen      DayRuleKind = "weekly_open"
	WeeklyClosed    DayRuleKind = "weekly_closed"
	SpecialOverride DayRuleKind = "special_override"
	SpecialClosed   DayRuleKind = "special_closed"
)

// DayRule is the resolved availability for one (resource, date): the winning
// layer, the open intervals net of breaks, and any capacity override the
// winning rule carried.
type DayRule struct {
	Kind             DayRuleKind
	Intervals        []Interval
	CapacityOverride *int
}

// Open reports whether the day has any bookable time at all.
func (d DayRule) Open() bool {
	return len(d.Intervals) > 0
}

// DayWindow is the business default window applied to open special dates
// that carry no explicit times.
type DayWindow struct {
	Start string
	End   string
}

// RuleStore is the persistence boundary of the resolver. Implementations
// return nil (not an error) when no rule exists.
type RuleStore interface {
	SpecialDateFor(ctx context.Context, ref models.ResourceRef, date string) (*models.SpecialDate, error)
	WeeklyRuleFor(ctx context.Context, ref models.ResourceRef, day models.DayOfWeek) (*models.WeeklyRule, error)
}

// Resolver merges the special-date and weekly layers for a date. A special
// date, when present, overrides the weekly rule entirely; it never merges
// with breaks.
type Resolver struct {
	rules RuleStore
}

func NewResolver(rules RuleStore) *Resolver {
	return &Resolver{rules: rules}
}

// ResolveDay evaluates the rule layers once for (ref, date) and returns the
// tagged result. date is "YYYY-MM-DD", day its weekday in the business zone.
func (r *Resolver) ResolveDay(ctx context.Context, ref models.ResourceRef, date string, day models.DayOfWeek, defaults DayWindow) (DayRule, error) {
	special, err := r.rules.SpecialDateFor(ctx, ref, date)
	if err != nil {
		return DayRule{}, err
	}
	if special != nil {
		return resolveSpecial(special, defaults)
	}

	rule, err := r.rules.WeeklyRuleFor(ctx, ref, day)
	if err != nil {
		return DayRule{}, err
	}
	if rule == nil || !rule.IsAvailable {
		return DayRule{Kind: WeeklyClosed}, nil
	}
	return resolveWeekly(rule)
}

// Resolve returns just the ordered open intervals for (ref, date).
func (r *Resolver) Resolve(ctx context.Context, ref models.ResourceRef, date string, day models.DayOfWeek, defaults DayWindow) ([]Interval, error) {
	dayRule, err := r.ResolveDay(ctx, ref, date, day, defaults)
	if err != nil {
		return nil, err
	}
	return dayRule.Intervals, nil
}

func resolveSpecial(s *models.SpecialDate, defaults DayWindow) (DayRule, error) {
	if !s.IsAvailable {
		return DayRule{Kind: SpecialClosed, CapacityOverride: s.CapacityOverride}, nil
	}

	startStr, endStr := defaults.Start, defaults.End
	if s.StartTime != nil && s.EndTime != nil {
		startStr, endStr = *s.StartTime, *s.EndTime
	}
	window, err := parseRuleWindow(startStr, endStr)
	if err != nil {
		return DayRule{}, err
	}
	return DayRule{
		Kind:             SpecialOverride,
		Intervals:        []Interval{window},
		CapacityOverride: s.CapacityOverride,
	}, nil
}

func resolveWeekly(rule *models.WeeklyRule) (DayRule, error) {
	window, err := parseRuleWindow(rule.StartTime, rule.EndTime)
	if err != nil {
		return DayRule{}, err
	}

	breaks := make([]Interval, 0, len(rule.Breaks))
	for _, b := range rule.Breaks {
		bw, err := parseRuleWindow(b.BreakStart, b.BreakEnd)
		if err != nil {
			return DayRule{}, err
		}
		if bw.Start < window.Start || bw.End > window.End {
			return DayRule{}, errs.InvalidRule("break %s-%s outside rule hours %s-%s",
				b.BreakStart, b.BreakEnd, rule.StartTime, rule.EndTime)
		}
		breaks = append(breaks, bw)
	}

	return DayRule{
		Kind:             WeeklyOpen,
		Intervals:        SubtractBreaks(window, breaks),
		CapacityOverride: rule.CapacityOverride,
	}, nil
}

func parseRuleWindow(startStr, endStr string) (Interval, error) {
	start, err := utils.ParseClock(startStr)
	if err != nil {
		return Interval{}, errs.InvalidRule("bad start time %q", startStr)
	}
	end, err := utils.ParseClock(endStr)
	if err != nil {
		return Interval{}, errs.InvalidRule("bad end time %q", endStr)
	}
	if start >= end {
		return Interval{}, errs.InvalidRule("start %s is not before end %s", startStr, endStr)
	}
	return Interval{Start: start, End: end}, nil
}

// SubtractBreaks removes each break window from the rule window, returning
// the remaining sub-intervals sorted ascending. Zero-length remnants are
// dropped.
func SubtractBreaks(window Interval, breaks []Interval) []Interval {
	open := []Interval{window}
	sorted := make([]Interval, len(breaks))
	copy(sorted, breaks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	for _, b := range sorted {
		var next []Interval
		for _, o := range open {
			if b.End <= o.Start || b.Start >= o.End {
				next = append(next, o)
				continue
			}
			left := Interval{Start: o.Start, End: b.Start}
			right := Interval{Start: b.End, End: o.End}
			if !left.Empty() {
				next = append(next, left)
			}
			if !right.Empty() {
				next = append(next, right)
			}
		}
		open = next
	}
	return open
}
