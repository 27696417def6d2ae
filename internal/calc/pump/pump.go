// Package pump wires the analysis stages into the single entry point
// the HTTP handlers and the batch runner call: clean, compute,
// aggregate, evaluate both retrofit strategies and price three quotes.
package pump

import (
	"fmt"

	"Pumpwise/internal/calc/bins"
	"Pumpwise/internal/calc/cleaner"
	"Pumpwise/internal/calc/compute"
	"Pumpwise/internal/calc/economics"
	"Pumpwise/internal/calc/energy"
	"Pumpwise/internal/calc/pumpdata"
)

// Input is everything one equipment tag needs for a full analysis run.
// All fields are treated as read-only snapshots.
type Input struct {
	Site            string
	Design          pumpdata.DesignData
	Operation       cleaner.RawTable
	Units           pumpdata.UnitMap
	Config          pumpdata.Config
	EmissionFactors map[string]float64
}

// Result is the complete outcome for one tag, including the
// intermediate tables the report writers need.
type Result struct {
	Site   string              `json:"site"`
	Tag    string              `json:"tag"`
	Design pumpdata.DesignData `json:"-"`

	Samples []compute.Sample `json:"samples"`
	Bins    []bins.FlowBin   `json:"flow_bins"`

	VSD      *energy.Scenario `json:"vsd"`
	Impeller *energy.Scenario `json:"impeller"`

	EconomicsVSD      economics.Result `json:"economics_vsd"`
	EconomicsVFD      economics.Result `json:"economics_vfd"`
	EconomicsImpeller economics.Result `json:"economics_impeller"`

	Diagnostics []pumpdata.Diagnostic `json:"diagnostics,omitempty"`
}

// StageError carries enough context to log a failed tag and move on.
type StageError struct {
	Site  string
	Tag   string
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("site %s, tag %s, stage %s: %v", e.Site, e.Tag, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Process runs the full pipeline for one tag. It is deterministic and
// side-effect free; a failure aborts only this tag.
func Process(in Input) (*Result, error) {
	fail := func(stage string, err error) (*Result, error) {
		return nil, &StageError{Site: in.Site, Tag: in.Design.Tag, Stage: stage, Err: err}
	}

	factor, ok := in.EmissionFactors[in.Site]
	if !ok {
		return fail("setup", fmt.Errorf("no emission factor for site %q", in.Site))
	}

	cleaned, err := cleaner.Clean(in.Operation, in.Design, in.Config, in.Units)
	if err != nil {
		return fail("clean", err)
	}

	computed, diags, err := compute.Compute(cleaned, in.Config)
	if err != nil {
		return fail("compute", err)
	}

	table := bins.Aggregate(computed.Samples, in.Config)

	vsd, err := energy.Evaluate(table, energy.VSD, factor)
	if err != nil {
		return fail("energy", err)
	}
	impeller, err := energy.Evaluate(table, energy.Impeller, factor)
	if err != nil {
		return fail("energy", err)
	}

	res := &Result{
		Site:        in.Site,
		Tag:         in.Design.Tag,
		Design:      computed.Design,
		Samples:     computed.Samples,
		Bins:        table,
		VSD:         vsd,
		Impeller:    impeller,
		Diagnostics: diags,
	}

	cfg := in.Config
	res.EconomicsVSD = quote(cfg.VSDCapex, cfg.VSDOpexRate, vsd.Summary, in.Design, cfg)
	res.EconomicsVFD = quote(cfg.VFDCapex, cfg.VFDOpexRate, vsd.Summary, in.Design, cfg)
	res.EconomicsImpeller = quote(cfg.ImpellerCapex, cfg.ImpellerOpexRate, impeller.Summary, in.Design, cfg)

	return res, nil
}

// quote prices one equipment option. Capex is shared across the spared
// installations of the tag; opex is a yearly fraction of the full list
// price, not of the share.
func quote(capex, opexRate float64, sum energy.Summary, design pumpdata.DesignData, cfg pumpdata.Config) economics.Result {
	sparing := design.SparingFactor
	if sparing <= 0 {
		sparing = 1
	}
	return economics.Evaluate(capex/sparing, opexRate*capex, sum.AnnualEnergySaving, sum.GHGReduction, cfg)
}
