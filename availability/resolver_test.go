package availability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookably/booking-app/errs"
	"github.com/bookably/booking-app/models"
)

// fakeRuleStore serves canned rules keyed by date / weekday.
type fakeRuleStore struct {
	specials map[string]*models.SpecialDate
	weekly   map[models.DayOfWeek]*models.WeeklyRule
}

func (f *fakeRuleStore) SpecialDateFor(_ context.Context, _ models.ResourceRef, date string) (*models.SpecialDate, error) {
	return f.specials[date], nil
}

func (f *fakeRuleStore) WeeklyRuleFor(_ context.Context, _ models.ResourceRef, day models.DayOfWeek) (*models.WeeklyRule, error) {
	return f.weekly[day], nil
}

func strPtr(s string) *string { return &s }

var testRef = models.BusinessRef(1)

var defaultWindow = DayWindow{Start: "09:00", End: "17:00"}

func TestResolveDayWeekly(t *testing.T) {
	tests := []struct {
		name     string
		rule     *models.WeeklyRule
		wantKind DayRuleKind
		want     []Interval
		wantErr  bool
	}{
		{
			name:     "no rule means closed",
			rule:     nil,
			wantKind: WeeklyClosed,
		},
		{
			name:     "unavailable rule means closed",
			rule:     &models.WeeklyRule{StartTime: "09:00", EndTime: "17:00", IsAvailable: false},
			wantKind: WeeklyClosed,
		},
		{
			name:     "plain open day",
			rule:     &models.WeeklyRule{StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
			wantKind: WeeklyOpen,
			want:     []Interval{{Start: 540, End: 1020}},
		},
		{
			name: "lunch break splits the day",
			rule: &models.WeeklyRule{
				StartTime: "09:00", EndTime: "17:00", IsAvailable: true,
				Breaks: []models.BreakWindow{{BreakStart: "12:00", BreakEnd: "13:00"}},
			},
			wantKind: WeeklyOpen,
			want:     []Interval{{Start: 540, End: 720}, {Start: 780, End: 1020}},
		},
		{
			name: "break at the opening edge drops the zero-length remnant",
			rule: &models.WeeklyRule{
				StartTime: "09:00", EndTime: "17:00", IsAvailable: true,
				Breaks: []models.BreakWindow{{BreakStart: "09:00", BreakEnd: "10:00"}},
			},
			wantKind: WeeklyOpen,
			want:     []Interval{{Start: 600, End: 1020}},
		},
		{
			name: "two breaks sorted regardless of input order",
			rule: &models.WeeklyRule{
				StartTime: "08:00", EndTime: "18:00", IsAvailable: true,
				Breaks: []models.BreakWindow{
					{BreakStart: "15:00", BreakEnd: "15:30"},
					{BreakStart: "12:00", BreakEnd: "13:00"},
				},
			},
			wantKind: WeeklyOpen,
			want: []Interval{
				{Start: 480, End: 720},
				{Start: 780, End: 900},
				{Start: 930, End: 1080},
			},
		},
		{
			name:    "start after end is an invalid rule",
			rule:    &models.WeeklyRule{StartTime: "17:00", EndTime: "09:00", IsAvailable: true},
			wantErr: true,
		},
		{
			name: "break outside rule hours is an invalid rule",
			rule: &models.WeeklyRule{
				StartTime: "09:00", EndTime: "17:00", IsAvailable: true,
				Breaks: []models.BreakWindow{{BreakStart: "08:00", BreakEnd: "10:00"}},
			},
			wantErr: true,
		},
		{
			name:    "garbage time format is an invalid rule",
			rule:    &models.WeeklyRule{StartTime: "9am", EndTime: "17:00", IsAvailable: true},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeRuleStore{weekly: map[models.DayOfWeek]*models.WeeklyRule{}}
			if tt.rule != nil {
				store.weekly[models.Monday] = tt.rule
			}
			resolver := NewResolver(store)

			got, err := resolver.ResolveDay(context.Background(), testRef, "2025-12-15", models.Monday, defaultWindow)
			if tt.wantErr {
				var ruleErr *errs.InvalidRuleError
				require.ErrorAs(t, err, &ruleErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.want, got.Intervals)
		})
	}
}

func TestResolveDaySpecialOverride(t *testing.T) {
	weekly := map[models.DayOfWeek]*models.WeeklyRule{
		models.Monday: {
			StartTime: "09:00", EndTime: "17:00", IsAvailable: true,
			Breaks: []models.BreakWindow{{BreakStart: "12:00", BreakEnd: "13:00"}},
		},
	}

	t.Run("closed special date wins over any weekly rule", func(t *testing.T) {
		store := &fakeRuleStore{
			weekly: weekly,
			specials: map[string]*models.SpecialDate{
				"2025-12-15": {IsAvailable: false, Reason: "public holiday"},
			},
		}
		got, err := NewResolver(store).ResolveDay(context.Background(), testRef, "2025-12-15", models.Monday, defaultWindow)
		require.NoError(t, err)
		assert.Equal(t, SpecialClosed, got.Kind)
		assert.False(t, got.Open())
	})

	t.Run("open special date replaces weekly hours and ignores breaks", func(t *testing.T) {
		store := &fakeRuleStore{
			weekly: weekly,
			specials: map[string]*models.SpecialDate{
				"2025-12-15": {IsAvailable: true, StartTime: strPtr("10:00"), EndTime: strPtr("14:00")},
			},
		}
		got, err := NewResolver(store).ResolveDay(context.Background(), testRef, "2025-12-15", models.Monday, defaultWindow)
		require.NoError(t, err)
		assert.Equal(t, SpecialOverride, got.Kind)
		// 12:00-13:00 break from the weekly layer must not reappear.
		assert.Equal(t, []Interval{{Start: 600, End: 840}}, got.Intervals)
	})

	t.Run("open special date without times uses the default window", func(t *testing.T) {
		store := &fakeRuleStore{
			specials: map[string]*models.SpecialDate{
				"2025-12-15": {IsAvailable: true},
			},
		}
		got, err := NewResolver(store).ResolveDay(context.Background(), testRef, "2025-12-15", models.Monday, defaultWindow)
		require.NoError(t, err)
		assert.Equal(t, []Interval{{Start: 540, End: 1020}}, got.Intervals)
	})

	t.Run("special date on another day leaves the weekly layer alone", func(t *testing.T) {
		store := &fakeRuleStore{
			weekly: weekly,
			specials: map[string]*models.SpecialDate{
				"2025-12-16": {IsAvailable: false},
			},
		}
		got, err := NewResolver(store).ResolveDay(context.Background(), testRef, "2025-12-15", models.Monday, defaultWindow)
		require.NoError(t, err)
		assert.Equal(t, WeeklyOpen, got.Kind)
	})
}

func TestSubtractBreaks(t *testing.T) {
	window := Interval{Start: 540, End: 1020} // 09:00-17:00

	t.Run("overlapping breaks both removed", func(t *testing.T) {
		got := SubtractBreaks(window, []Interval{
			{Start: 700, End: 760},
			{Start: 740, End: 800},
		})
		assert.Equal(t, []Interval{{Start: 540, End: 700}, {Start: 800, End: 1020}}, got)
	})

	t.Run("break swallowing the whole window leaves nothing", func(t *testing.T) {
		got := SubtractBreaks(window, []Interval{{Start: 540, End: 1020}})
		assert.Empty(t, got)
	})

	t.Run("no breaks returns the window untouched", func(t *testing.T) {
		got := SubtractBreaks(window, nil)
		assert.Equal(t, []Interval{window}, got)
	})
}
