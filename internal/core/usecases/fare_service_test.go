package usecases_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/hailgo/hailgo/internal/core/domain"
	"github.com/hailgo/hailgo/internal/core/usecases"
)

func offPeak() time.Time {
	return time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
}

func peak() time.Time {
	return time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
}

func TestFareService_OffPeakQuote(t *testing.T) {
	svc := usecases.NewFareService(usecases.DefaultPricing())

	// 10 km economy off-peak: 2.50 + 10*1.20 = 14.50.
	q, err := svc.Quote(context.Background(), 10000, domain.TierEconomy, offPeak())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Amount != 14.50 {
		t.Errorf("expected 14.50, got %.2f", q.Amount)
	}
	if q.SurgeApplied {
		t.Error("expected no surge at 03:00")
	}
	if q.Currency != "USD" || q.Tier != domain.TierEconomy {
		t.Errorf("unexpected quote metadata: %+v", q)
	}
}

func TestFareService_PeakSurge(t *testing.T) {
	svc := usecases.NewFareService(usecases.DefaultPricing())

	// Same trip at 08:00: 14.50 * 1.2 = 17.40.
	q, err := svc.Quote(context.Background(), 10000, domain.TierEconomy, peak())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.SurgeApplied {
		t.Fatal("expected surge at 08:00")
	}
	if math.Abs(q.Amount-17.40) > 1e-9 {
		t.Errorf("expected 17.40, got %.2f", q.Amount)
	}
}

func TestFareService_PeakWindows(t *testing.T) {
	svc := usecases.NewFareService(usecases.DefaultPricing())

	cases := []struct {
		hour int
		want bool
	}{
		{6, false},
		{7, true},
		{9, true},
		{10, false},
		{16, false},
		{17, true},
		{19, true},
		{20, false},
	}
	for _, tc := range cases {
		at := time.Date(2026, 3, 10, tc.hour, 30, 0, 0, time.UTC)
		q, err := svc.Quote(context.Background(), 10000, domain.TierEconomy, at)
		if err != nil {
			t.Fatalf("unexpected error at hour %d: %v", tc.hour, err)
		}
		if q.SurgeApplied != tc.want {
			t.Errorf("hour %d: expected surge=%v, got %v", tc.hour, tc.want, q.SurgeApplied)
		}
	}
}

func TestFareService_MinimumFloor(t *testing.T) {
	svc := usecases.NewFareService(usecases.DefaultPricing())

	// A very short comfort trip floors at 7.50 rather than 4.00 + pennies.
	q, err := svc.Quote(context.Background(), 100, domain.TierComfort, offPeak())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Amount != 7.50 {
		t.Errorf("expected minimum fare 7.50, got %.2f", q.Amount)
	}
}

func TestFareService_SurgeBeforeFloor(t *testing.T) {
	svc := usecases.NewFareService(usecases.DefaultPricing())

	// Zero distance economy at peak: 2.50 * 1.2 = 3.00, still under the
	// 5.00 floor. Surge never lifts a floored fare above the floor alone.
	q, err := svc.Quote(context.Background(), 0, domain.TierEconomy, peak())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Amount != 5.00 {
		t.Errorf("expected floored 5.00, got %.2f", q.Amount)
	}
	if !q.SurgeApplied {
		t.Error("expected surge flag set even when floored")
	}
}

func TestFareService_Rounding(t *testing.T) {
	svc := usecases.NewFareService(usecases.DefaultPricing())

	// 10.3 km economy at peak: (2.50 + 12.36) * 1.2 = 17.832 -> 17.83.
	q, err := svc.Quote(context.Background(), 10300, domain.TierEconomy, peak())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(q.Amount-17.83) > 1e-9 {
		t.Errorf("expected 17.83, got %.4f", q.Amount)
	}
}

func TestFareService_TierOrdering(t *testing.T) {
	svc := usecases.NewFareService(usecases.DefaultPricing())
	ctx := context.Background()

	eco, _ := svc.Quote(ctx, 15000, domain.TierEconomy, offPeak())
	com, _ := svc.Quote(ctx, 15000, domain.TierComfort, offPeak())
	pre, _ := svc.Quote(ctx, 15000, domain.TierPremium, offPeak())

	if !(eco.Amount < com.Amount && com.Amount < pre.Amount) {
		t.Errorf("expected ascending tier pricing, got %.2f / %.2f / %.2f", eco.Amount, com.Amount, pre.Amount)
	}
}

func TestFareService_DistanceMonotonic(t *testing.T) {
	svc := usecases.NewFareService(usecases.DefaultPricing())
	ctx := context.Background()

	near, _ := svc.Quote(ctx, 8000, domain.TierPremium, offPeak())
	far, _ := svc.Quote(ctx, 9000, domain.TierPremium, offPeak())
	if far.Amount < near.Amount {
		t.Errorf("expected fare to grow with distance: %.2f then %.2f", near.Amount, far.Amount)
	}
}

func TestFareService_InvalidInputs(t *testing.T) {
	svc := usecases.NewFareService(usecases.DefaultPricing())
	ctx := context.Background()

	if _, err := svc.Quote(ctx, -1, domain.TierEconomy, offPeak()); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for negative distance, got %v", err)
	}
	if _, err := svc.Quote(ctx, 1000, domain.Tier("luxury"), offPeak()); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for unknown tier, got %v", err)
	}
}

func TestFareService_ZeroTimeMeansNow(t *testing.T) {
	svc := usecases.NewFareService(usecases.DefaultPricing())

	before := time.Now()
	q, err := svc.Quote(context.Background(), 1000, domain.TierEconomy, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.QuotedAt.Before(before) || q.QuotedAt.After(time.Now()) {
		t.Errorf("expected QuotedAt to default to now, got %v", q.QuotedAt)
	}
}

func TestNewFareService_BackfillsMissingTiers(t *testing.T) {
	svc := usecases.NewFareService(usecases.PricingConfig{
		Rates: map[domain.Tier]usecases.TierRate{
			domain.TierEconomy: {BaseFare: 1, PerKm: 1, MinimumFare: 1},
		},
	})

	// Premium was left out of the config but still quotes at stock rates.
	q, err := svc.Quote(context.Background(), 10000, domain.TierPremium, offPeak())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Amount != 34.00 {
		t.Errorf("expected stock premium 34.00, got %.2f", q.Amount)
	}
}
