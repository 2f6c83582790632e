package crop

import (
	"fmt"
	"math"
	"time"

	"github.com/osse101/HarvestRealm_Go/internal/domain"
)

// DeriveStage buckets elapsed/growth into a stage. It is pure: any caller with
// the same plantedAt, growth and now gets the same stage.
func DeriveStage(plantedAt time.Time, growth time.Duration, now time.Time) domain.Stage {
	elapsed := now.Sub(plantedAt)
	if elapsed < 0 {
		return domain.StageSeed
	}
	if growth <= 0 {
		return domain.StageReady
	}

	fraction := float64(elapsed) / float64(growth)
	switch {
	case fraction < SproutThreshold:
		return domain.StageSeed
	case fraction < GrowingThreshold:
		return domain.StageSprout
	case fraction < MatureThreshold:
		return domain.StageGrowing
	case fraction < ReadyThreshold:
		return domain.StageMature
	default:
		return domain.StageReady
	}
}

// DeriveStage looks up the seed's growth duration and derives the stage.
func (t Table) DeriveStage(plantedAt time.Time, seed domain.SeedType, now time.Time) (domain.Stage, error) {
	spec, err := t.Lookup(string(seed))
	if err != nil {
		return "", err
	}
	return DeriveStage(plantedAt, spec.GrowthDuration, now), nil
}

// Progress is elapsed/growth clamped to [0, 1], for display.
func Progress(plantedAt time.Time, growth time.Duration, now time.Time) float64 {
	if growth <= 0 {
		return 1
	}
	p := float64(now.Sub(plantedAt)) / float64(growth)
	return math.Max(0, math.Min(1, p))
}

// ComputeYield is simple, non-compounding interest on the investment for the
// elapsed time, rounded to two decimals.
func ComputeYield(investment float64, plantedAt time.Time, baseRate float64, now time.Time) float64 {
	elapsedMs := now.Sub(plantedAt).Milliseconds()
	if elapsedMs <= 0 {
		return 0
	}
	return round2(investment * baseRate * float64(elapsedMs) / MsPerYear)
}

// FiniteYield rejects a yield that cannot be stored or encoded.
func FiniteYield(cropID string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: yield for crop %s is out of range", domain.ErrValidation, cropID)
	}
	return nil
}

// CheckHarvest fails with a CropNotReadyError until the full growth time has elapsed.
func CheckHarvest(cropID string, plantedAt time.Time, growth time.Duration, now time.Time) error {
	remaining := growth - now.Sub(plantedAt)
	if remaining > 0 {
		return &domain.CropNotReadyError{CropID: cropID, Remaining: remaining}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
