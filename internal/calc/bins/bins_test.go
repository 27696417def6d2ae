package bins

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Pumpwise/internal/calc/compute"
	"Pumpwise/internal/calc/pumpdata"
)

func sample(label, flow, power float64) compute.Sample {
	return compute.Sample{
		FlowratePercent:        label,
		DischargeFlowrate:      flow,
		BaseMotorPower:         power,
		RequiredSpeedVariation: 0.9,
	}
}

func TestAggregateMeansAndShares(t *testing.T) {
	cfg := pumpdata.DefaultConfig()
	cfg.MinWorkingPercent = 0.15

	samples := []compute.Sample{
		sample(0.50, 48, 0.10),
		sample(0.50, 52, 0.12),
		sample(0.50, 50, 0.11),
		sample(0.50, 50, 0.11),
		sample(0.50, 50, 0.11),
		sample(0.50, 50, 0.11),
		sample(0.80, 78, 0.20),
		sample(0.80, 82, 0.22),
		sample(0.80, 80, 0.21),
		sample(1.00, 100, 0.30), // 10% of samples, below threshold
	}

	out := Aggregate(samples, cfg)
	require.Len(t, out, 2)

	assert.InDelta(t, 0.50, out[0].FlowratePercent, 1e-9)
	assert.InDelta(t, 50.0, out[0].DischargeFlowrate, 1e-9)
	assert.InDelta(t, 0.80, out[1].FlowratePercent, 1e-9)
	assert.InDelta(t, 80.0, out[1].DischargeFlowrate, 1e-9)
	assert.InDelta(t, 0.21, out[1].BaseMotorPower, 1e-9)

	// the zeroed 1.00 bin is redistributed 6:3
	assert.InDelta(t, 2.0/3.0, out[0].WorkingPercent, 1e-9)
	assert.InDelta(t, 1.0/3.0, out[1].WorkingPercent, 1e-9)
	assert.InDelta(t, HoursPerYear*2/3, out[0].WorkingHours, 1e-6)
}

func TestAggregateRenormalizationInvariant(t *testing.T) {
	cfg := pumpdata.DefaultConfig()

	var samples []compute.Sample
	for i := 0; i < 40; i++ {
		samples = append(samples, sample(0.60, 60, 0.1))
	}
	for i := 0; i < 9; i++ {
		samples = append(samples, sample(0.85, 85, 0.2))
	}
	samples = append(samples, sample(math.NaN(), 140, 0.4))

	out := Aggregate(samples, cfg)

	sumPercent, sumHours := 0.0, 0.0
	for _, b := range out {
		sumPercent += b.WorkingPercent
		sumHours += b.WorkingHours
	}
	assert.InDelta(t, 1.0, sumPercent, 1e-9)
	assert.InDelta(t, HoursPerYear, sumHours, 1e-6)
}

func TestAggregateKeepsOutOfRangeGroupLast(t *testing.T) {
	cfg := pumpdata.DefaultConfig()
	cfg.MinWorkingPercent = 0

	samples := []compute.Sample{
		sample(math.NaN(), 150, 0.4),
		sample(0.40, 40, 0.1),
		sample(0.90, 90, 0.2),
	}

	out := Aggregate(samples, cfg)
	require.Len(t, out, 3)
	assert.InDelta(t, 0.40, out[0].FlowratePercent, 1e-9)
	assert.InDelta(t, 0.90, out[1].FlowratePercent, 1e-9)
	assert.True(t, math.IsNaN(out[2].FlowratePercent))
	assert.InDelta(t, 1.0/3.0, out[2].WorkingPercent, 1e-9)
}

func TestAggregateAllBinsSuppressed(t *testing.T) {
	cfg := pumpdata.DefaultConfig()
	cfg.MinWorkingPercent = 0.9

	samples := []compute.Sample{
		sample(0.50, 50, 0.1),
		sample(0.80, 80, 0.2),
	}

	out := Aggregate(samples, cfg)
	assert.Empty(t, out)
}
