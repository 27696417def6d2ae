package importer

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"Pumpwise/internal/calc/pumpdata"
	"Pumpwise/internal/calc/valve"
)

func equipmentWorkbook(t *testing.T) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()

	require.NoError(t, f.SetSheetName("Sheet1", SheetDesign))
	design := [][]interface{}{
		{"Tag", "P-101"},
		{"Rated Flowrate", 100},
		{"Rated Head", 60},
		{"Density", 1000},
		{"Motor Efficiency", 0.95},
		{"BEP Flowrate", ""},
		{"BEP Efficiency", "see datasheet"},
		{"Valve Size", "6"},
		{"Valve Character", "Linear"},
		{"Calculation Method", "downstream_pressure"},
		{"Sparing Factor", 2},
		{"Header Row", 2},
	}
	for i, row := range design {
		cell := fmt.Sprintf("A%d", i+1)
		require.NoError(t, f.SetSheetRow(SheetDesign, cell, &row))
	}

	_, err := f.NewSheet(SheetOperation)
	require.NoError(t, err)
	operation := [][]interface{}{
		{"Pump P-101 historian export"},
		{"Suction Pressure", "Discharge Pressure", "Discharge Flowrate", "Downstream Pressure"},
		{"bar", "bar", "m3/hr", "bar"},
		{2, 12, 80, 10},
		{2.1, 12.2, 85, 10.5},
	}
	for i, row := range operation {
		cell := fmt.Sprintf("A%d", i+1)
		require.NoError(t, f.SetSheetRow(SheetOperation, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestLoadEquipment(t *testing.T) {
	eq, err := LoadEquipment(equipmentWorkbook(t))
	require.NoError(t, err)

	d := eq.Design
	assert.Equal(t, "P-101", d.Tag)
	assert.InDelta(t, 100, d.RatedFlow, 1e-9)
	assert.InDelta(t, 60, d.RatedHead, 1e-9)
	assert.InDelta(t, 1000, d.Density, 1e-9)
	assert.Equal(t, pumpdata.Number(0.95), d.MotorEfficiency)
	assert.False(t, d.BEPFlowrate.Set)
	assert.Equal(t, "see datasheet", d.BEPEfficiency.Raw)
	assert.Equal(t, "6", d.ValveSize)
	assert.Equal(t, valve.Linear, d.ValveCharacter)
	assert.Equal(t, pumpdata.DownstreamPressure, d.CalculationMethod)
	assert.InDelta(t, 2, d.SparingFactor, 1e-9)
	assert.Equal(t, 2, d.HeaderRow)

	assert.Equal(t, []string{
		"suction_pressure", "discharge_pressure", "discharge_flowrate", "downstream_pressure",
	}, eq.Operation.Columns)
	require.Len(t, eq.Operation.Rows, 2)
	assert.Equal(t, "80", eq.Operation.Rows[0][2])

	assert.Equal(t, "m3/hr", eq.Units.Flowrate())
	assert.Equal(t, "bar", eq.Units.Pressure())
}

func TestLoadEquipmentMissingMethod(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", SheetDesign))
	row := []interface{}{"Tag", "P-1"}
	require.NoError(t, f.SetSheetRow(SheetDesign, "A1", &row))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := LoadEquipment(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calculation method")
}

func TestLoadConfig(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", SheetConfig))
	config := [][]interface{}{
		{"Parameter", "Value"},
		{"Bin Percent", 0.1},
		{"Project Life", 15},
		{"Electricity Price", 0.12},
		{"Unknown Knob", 42},
	}
	for i, row := range config {
		cell := fmt.Sprintf("A%d", i+1)
		require.NoError(t, f.SetSheetRow(SheetConfig, cell, &row))
	}

	_, err := f.NewSheet(SheetEmission)
	require.NoError(t, err)
	emission := [][]interface{}{
		{"Site", "Emission Factor"},
		{"alpha", 0.43},
		{"beta", 0.51},
	}
	for i, row := range emission {
		cell := fmt.Sprintf("A%d", i+1)
		require.NoError(t, f.SetSheetRow(SheetEmission, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	cfg, factors, err := LoadConfig(&buf)
	require.NoError(t, err)

	assert.InDelta(t, 0.1, cfg.BinPercent, 1e-9)
	assert.Equal(t, 15, cfg.ProjectLife)
	assert.InDelta(t, 0.12, cfg.ElectricityPrice, 1e-9)
	// untouched keys keep their defaults
	assert.InDelta(t, pumpdata.DefaultConfig().DiscountRate, cfg.DiscountRate, 1e-9)

	assert.InDelta(t, 0.43, factors["alpha"], 1e-9)
	assert.InDelta(t, 0.51, factors["beta"], 1e-9)
}

func TestLoadTasks(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", SheetTasks))
	tasks := [][]interface{}{
		{"Site", "Tag"},
		{"alpha", "P-101"},
		{"alpha", "P-102"},
		{"", ""},
		{"beta", "P-201"},
	}
	for i, row := range tasks {
		cell := fmt.Sprintf("A%d", i+1)
		require.NoError(t, f.SetSheetRow(SheetTasks, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	out, err := LoadTasks(&buf)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "P-101", out[0].Tag)
	assert.Equal(t, "beta", out[2].Site)
}

func TestLoadTasksEmpty(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", SheetTasks))
	row := []interface{}{"Site", "Tag"}
	require.NoError(t, f.SetSheetRow(SheetTasks, "A1", &row))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := LoadTasks(&buf)
	require.Error(t, err)
}
