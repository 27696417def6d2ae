// Package report renders a processed tag into the deliverables handed
// to the plant: a result workbook and a one-page summary PDF.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/xuri/excelize/v2"

	"Pumpwise/internal/calc/economics"
	"Pumpwise/internal/calc/energy"
	"Pumpwise/internal/calc/pump"
)

// Result workbook sheet names.
const (
	SheetSummary  = "Summary"
	SheetVSD      = "VSD"
	SheetImpeller = "Impeller"
)

// Workbook builds the result workbook for one processed tag. The caller
// owns the returned file and must Close it.
func Workbook(res *pump.Result) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	if err := writeSummary(f, res); err != nil {
		return nil, err
	}
	if err := writeScenario(f, SheetVSD, res.VSD); err != nil {
		return nil, err
	}
	if err := writeScenario(f, SheetImpeller, res.Impeller); err != nil {
		return nil, err
	}
	return f, nil
}

// WriteWorkbook renders the result workbook to w.
func WriteWorkbook(w io.Writer, res *pump.Result) error {
	f, err := Workbook(res)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func writeSummary(f *excelize.File, res *pump.Result) error {
	rows := [][]interface{}{
		{"Site", res.Site},
		{"Tag", res.Design.Tag},
		{"Rated Flowrate [m3/hr]", res.Design.RatedFlow},
		{},
		{"", "VSD", "Impeller"},
		{"Annual Energy Saving [MWh]",
			res.VSD.Summary.AnnualEnergySaving,
			res.Impeller.Summary.AnnualEnergySaving},
		{"GHG Reduction [tCO2]",
			res.VSD.Summary.GHGReduction,
			res.Impeller.Summary.GHGReduction},
		{"Speed Variation",
			res.VSD.Summary.SpeedVariationRange,
			res.Impeller.Summary.SpeedVariationRange},
		{},
		{"", "VSD", "VFD", "Impeller"},
		{"Capex",
			res.EconomicsVSD.Capex, res.EconomicsVFD.Capex, res.EconomicsImpeller.Capex},
		{"NPV",
			res.EconomicsVSD.NPV, res.EconomicsVFD.NPV, res.EconomicsImpeller.NPV},
		{"IRR",
			irrCell(res.EconomicsVSD), irrCell(res.EconomicsVFD), irrCell(res.EconomicsImpeller)},
		{"Payback [yr]",
			res.EconomicsVSD.Payback.String(),
			res.EconomicsVFD.Payback.String(),
			res.EconomicsImpeller.Payback.String()},
		{"GHG Reduction Cost [per tCO2]",
			res.EconomicsVSD.GHGReductionCost,
			res.EconomicsVFD.GHGReductionCost,
			res.EconomicsImpeller.GHGReductionCost},
	}
	for i := range rows {
		if err := f.SetSheetRow(SheetSummary, fmt.Sprintf("A%d", i+1), &rows[i]); err != nil {
			return err
		}
	}

	for i, d := range res.Diagnostics {
		row := []interface{}{"Warning", d.String()}
		if err := f.SetSheetRow(SheetSummary, fmt.Sprintf("A%d", len(rows)+2+i), &row); err != nil {
			return err
		}
	}
	return nil
}

func writeScenario(f *excelize.File, sheet string, sc *energy.Scenario) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{
		"Flowrate %", "Working Hours", "Working %", "Selected Speed",
		"New Pump Efficiency", "New Motor Efficiency",
		"Base Energy [MWh]", "Proposed Energy [MWh]", "Saving [MWh]",
		"Base Emission [tCO2]", "Proposed Emission [tCO2]", "GHG Reduction [tCO2]",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range sc.Rows {
		row := []interface{}{
			r.FlowratePercent, r.WorkingHours, r.WorkingPercent,
			r.SelectedSpeedVariation,
			r.NewPumpEfficiency, r.NewMotorEfficiency,
			r.BaseEnergy, r.ProposedEnergy, r.AnnualEnergySaving,
			r.BaseEmission, r.ProposedEmission, r.GHGReduction,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	total := []interface{}{
		"Total", "", "", "", "", "",
		sc.Summary.BaseEnergy, sc.Summary.ProposedEnergy, sc.Summary.AnnualEnergySaving,
		sc.Summary.BaseEmission, sc.Summary.ProposedEmission, sc.Summary.GHGReduction,
	}
	return f.SetSheetRow(sheet, fmt.Sprintf("A%d", len(sc.Rows)+3), &total)
}

func irrCell(r economics.Result) interface{} {
	if !r.IRRFound {
		return "n/a"
	}
	return r.IRR
}

// PDF renders the one-page summary of a processed tag to w.
func PDF(w io.Writer, res *pump.Result) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Pump Energy Study - %s", res.Design.Tag))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	line := func(format string, args ...interface{}) {
		pdf.Cell(0, 6, fmt.Sprintf(format, args...))
		pdf.Ln(6)
	}
	line("Site: %s", res.Site)
	line("Date: %s", time.Now().Format("2006-01-02"))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Energy")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	line("VSD saving: %.1f MWh/yr (%.1f tCO2/yr)",
		res.VSD.Summary.AnnualEnergySaving, res.VSD.Summary.GHGReduction)
	line("Impeller trim saving: %.1f MWh/yr (%.1f tCO2/yr)",
		res.Impeller.Summary.AnnualEnergySaving, res.Impeller.Summary.GHGReduction)
	line("Speed range (VSD): %s", res.VSD.Summary.SpeedVariationRange)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Economics")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	line("VSD: NPV %.0f, payback %s", res.EconomicsVSD.NPV, res.EconomicsVSD.Payback)
	line("VFD: NPV %.0f, payback %s", res.EconomicsVFD.NPV, res.EconomicsVFD.Payback)
	line("Impeller: NPV %.0f, payback %s", res.EconomicsImpeller.NPV, res.EconomicsImpeller.Payback)

	if len(res.Diagnostics) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Warnings")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		for _, d := range res.Diagnostics {
			pdf.MultiCell(0, 5, d.String(), "", "L", false)
		}
	}

	return pdf.Output(w)
}
