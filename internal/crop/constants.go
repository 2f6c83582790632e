package crop

import "time"

// MsPerYear is the denominator for annualized yield.
const MsPerYear = 365 * 24 * 3600 * 1000

// MaxInvestment keeps investment*rate*elapsed well inside float64 range.
const MaxInvestment = 1e12

// Stage thresholds as fractions of total growth time
const (
	SproutThreshold  = 0.2
	GrowingThreshold = 0.5
	MatureThreshold  = 0.8
	ReadyThreshold   = 1.0
)

// Default seed parameters
const (
	USDCSproutMinInvestment = 10
	USDCSproutGrowth        = 24 * time.Hour
	USDCSproutXP            = 1
	USDCSproutRate          = 0.05

	ETHBeanMinInvestment = 50
	ETHBeanGrowth        = 48 * time.Hour
	ETHBeanXP            = 3
	ETHBeanRate          = 0.07

	BTCTreeMinInvestment = 100
	BTCTreeGrowth        = 7 * 24 * time.Hour
	BTCTreeXP            = 10
	BTCTreeRate          = 0.10
)
