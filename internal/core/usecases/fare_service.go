package usecases

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hailgo/hailgo/internal/core/domain"
)

// TierRate is the fixed rate card for one service tier.
type TierRate struct {
	BaseFare    float64
	PerKm       float64
	MinimumFare float64
}

// PricingConfig holds the rate table and surge settings.
type PricingConfig struct {
	Currency        string
	SurgeMultiplier float64
	Rates           map[domain.Tier]TierRate
}

// DefaultPricing returns the stock rate card: three tiers with ascending
// rates and floors, 1.2x surge during peak windows.
func DefaultPricing() PricingConfig {
	return PricingConfig{
		Currency:        "USD",
		SurgeMultiplier: 1.2,
		Rates: map[domain.Tier]TierRate{
			domain.TierEconomy: {BaseFare: 2.50, PerKm: 1.20, MinimumFare: 5.00},
			domain.TierComfort: {BaseFare: 4.00, PerKm: 1.80, MinimumFare: 7.50},
			domain.TierPremium: {BaseFare: 6.50, PerKm: 2.75, MinimumFare: 12.00},
		},
	}
}

// FareService converts a distance and trip context into a priced quote.
// Quote is a pure function of its inputs: same distance, tier, and time
// always produce the same amount.
type FareService struct {
	cfg PricingConfig
}

// NewFareService creates a FareService, falling back to the stock rate card
// for any tier the config leaves out.
func NewFareService(cfg PricingConfig) *FareService {
	def := DefaultPricing()
	if cfg.Currency == "" {
		cfg.Currency = def.Currency
	}
	if cfg.SurgeMultiplier <= 0 {
		cfg.SurgeMultiplier = def.SurgeMultiplier
	}
	if cfg.Rates == nil {
		cfg.Rates = map[domain.Tier]TierRate{}
	}
	for tier, rate := range def.Rates {
		if _, ok := cfg.Rates[tier]; !ok {
			cfg.Rates[tier] = rate
		}
	}
	return &FareService{cfg: cfg}
}

// Quote prices a trip of distanceMeters on the given tier at the given time.
// A zero `at` means now. Peak hours (7-9 and 17-19, inclusive, local to the
// quote time) apply the surge multiplier before the per-tier minimum floor
// and half-up rounding to 2 decimals.
func (s *FareService) Quote(ctx context.Context, distanceMeters float64, tier domain.Tier, at time.Time) (domain.FareQuote, error) {
	if distanceMeters < 0 {
		return domain.FareQuote{}, fmt.Errorf("negative distance %.1f: %w", distanceMeters, domain.ErrInvalidArgument)
	}
	if !tier.Valid() {
		return domain.FareQuote{}, fmt.Errorf("unknown tier %q: %w", tier, domain.ErrInvalidArgument)
	}
	if at.IsZero() {
		at = time.Now()
	}

	rate := s.cfg.Rates[tier]
	fare := rate.BaseFare + (distanceMeters/1000)*rate.PerKm

	surge := isPeakHour(at.Hour())
	if surge {
		fare *= s.cfg.SurgeMultiplier
	}

	if fare < rate.MinimumFare {
		fare = rate.MinimumFare
	}

	return domain.FareQuote{
		Amount:       roundHalfUp(fare),
		Currency:     s.cfg.Currency,
		Tier:         tier,
		SurgeApplied: surge,
		QuotedAt:     at,
	}, nil
}

func isPeakHour(hour int) bool {
	return (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19)
}

// roundHalfUp rounds to 2 decimal places, halves away from the floor.
func roundHalfUp(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
