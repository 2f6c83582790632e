package crop

import (
	"fmt"
	"math"
	"time"

	"github.com/osse101/HarvestRealm_Go/internal/domain"
)

// SeedSpec is the constant record attached to each seed type.
type SeedSpec struct {
	Type           domain.SeedType
	MinInvestment  float64
	GrowthDuration time.Duration
	XPReward       int64
	BaseRate       float64
}

// Table maps every seed type to its spec. Tables are values; Apply returns a copy.
type Table map[domain.SeedType]SeedSpec

// Seeds is the built-in seed table.
var Seeds = DefaultTable()

// DefaultTable returns a fresh copy of the built-in seed parameters.
func DefaultTable() Table {
	return Table{
		domain.SeedUSDCSprout: {
			Type:           domain.SeedUSDCSprout,
			MinInvestment:  USDCSproutMinInvestment,
			GrowthDuration: USDCSproutGrowth,
			XPReward:       USDCSproutXP,
			BaseRate:       USDCSproutRate,
		},
		domain.SeedETHBean: {
			Type:           domain.SeedETHBean,
			MinInvestment:  ETHBeanMinInvestment,
			GrowthDuration: ETHBeanGrowth,
			XPReward:       ETHBeanXP,
			BaseRate:       ETHBeanRate,
		},
		domain.SeedBTCTree: {
			Type:           domain.SeedBTCTree,
			MinInvestment:  BTCTreeMinInvestment,
			GrowthDuration: BTCTreeGrowth,
			XPReward:       BTCTreeXP,
			BaseRate:       BTCTreeRate,
		},
	}
}

// Lookup resolves a tag against the built-in table.
func Lookup(tag string) (SeedSpec, error) {
	return Seeds.Lookup(tag)
}

// Lookup resolves a client-supplied tag. Unknown tags fail with ErrInvalidSeedType.
func (t Table) Lookup(tag string) (SeedSpec, error) {
	st, err := domain.ParseSeedType(tag)
	if err != nil {
		return SeedSpec{}, err
	}
	spec, ok := t[st]
	if !ok {
		return SeedSpec{}, fmt.Errorf("%w: %q", domain.ErrInvalidSeedType, tag)
	}
	return spec, nil
}

// ValidatePlant checks the seed tag and the investment against the table.
func (t Table) ValidatePlant(tag string, investment float64) (SeedSpec, error) {
	spec, err := t.Lookup(tag)
	if err != nil {
		return SeedSpec{}, err
	}
	if math.IsNaN(investment) || math.IsInf(investment, 0) || investment > MaxInvestment {
		return SeedSpec{}, fmt.Errorf("%w: investment must be at most %.0f", domain.ErrValidation, float64(MaxInvestment))
	}
	if investment < spec.MinInvestment {
		return SeedSpec{}, &domain.InsufficientInvestmentError{
			SeedType: spec.Type,
			Minimum:  spec.MinInvestment,
			Got:      investment,
		}
	}
	return spec, nil
}

// Override adjusts the numeric parameters of one known seed type.
// Nil fields keep the default.
type Override struct {
	MinInvestment  *float64       `yaml:"min_investment"`
	GrowthDuration *time.Duration `yaml:"growth_duration"`
	XPReward       *int64         `yaml:"xp_reward"`
	BaseRate       *float64       `yaml:"base_rate"`
}

// Validate rejects overrides that would break the economy invariants.
func (o Override) Validate() error {
	if o.MinInvestment != nil && *o.MinInvestment < 0 {
		return fmt.Errorf("min_investment must be >= 0, got %g", *o.MinInvestment)
	}
	if o.GrowthDuration != nil && *o.GrowthDuration <= 0 {
		return fmt.Errorf("growth_duration must be positive, got %s", *o.GrowthDuration)
	}
	if o.XPReward != nil && *o.XPReward < 0 {
		return fmt.Errorf("xp_reward must be >= 0, got %d", *o.XPReward)
	}
	if o.BaseRate != nil && *o.BaseRate < 0 {
		return fmt.Errorf("base_rate must be >= 0, got %g", *o.BaseRate)
	}
	return nil
}

// Apply returns a copy of t with the overrides applied.
func (t Table) Apply(overrides map[domain.SeedType]Override) (Table, error) {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	for st, o := range overrides {
		spec, ok := out[st]
		if !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSeedType, st)
		}
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("seed %s: %w", st, err)
		}
		if o.MinInvestment != nil {
			spec.MinInvestment = *o.MinInvestment
		}
		if o.GrowthDuration != nil {
			spec.GrowthDuration = *o.GrowthDuration
		}
		if o.XPReward != nil {
			spec.XPReward = *o.XPReward
		}
		if o.BaseRate != nil {
			spec.BaseRate = *o.BaseRate
		}
		out[st] = spec
	}
	return out, nil
}
