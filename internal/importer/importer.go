// Package importer reads the equipment, configuration and task-list
// workbooks into the plain structures the analysis pipeline consumes.
package importer

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"Pumpwise/internal/calc/batch"
	"Pumpwise/internal/calc/cleaner"
	"Pumpwise/internal/calc/pumpdata"
	"Pumpwise/internal/calc/valve"
)

// Sheet names of the source workbooks.
const (
	SheetDesign    = "Design Data"
	SheetOperation = "Operational Data"
	SheetConfig    = "PumpConfig"
	SheetEmission  = "Emission Factor"
	SheetTasks     = "Task List"
)

// Equipment is the parsed content of one pump workbook.
type Equipment struct {
	Design    pumpdata.DesignData
	Operation cleaner.RawTable
	Units     pumpdata.UnitMap
}

// LoadEquipment parses a pump workbook: a key/value "Design Data" sheet
// and an "Operational Data" sheet whose header row index comes from the
// design data, with the unit row directly beneath the headers.
func LoadEquipment(r io.Reader) (*Equipment, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	design, err := readDesign(f)
	if err != nil {
		return nil, err
	}

	operation, units, err := readOperation(f, design.HeaderRow)
	if err != nil {
		return nil, err
	}

	return &Equipment{Design: design, Operation: operation, Units: units}, nil
}

// LoadEquipmentFile is LoadEquipment over a file path.
func LoadEquipmentFile(path string) (*Equipment, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return LoadEquipment(fh)
}

func readDesign(f *excelize.File) (pumpdata.DesignData, error) {
	design := pumpdata.DesignData{HeaderRow: 1, SparingFactor: 1}

	rows, err := f.GetRows(SheetDesign)
	if err != nil {
		return design, fmt.Errorf("sheet %q: %w", SheetDesign, err)
	}

	kv := map[string]string{}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		kv[normalize(row[0])] = strings.TrimSpace(row[1])
	}

	design.Tag = kv["tag"]
	design.ValveSize = kv["valve_size"]

	var parseErr error
	number := func(key string) float64 {
		s, ok := kv[key]
		if !ok || s == "" {
			return 0
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("design data %s: %w", key, err)
		}
		return v
	}

	design.RatedFlow = number("rated_flowrate")
	design.RatedHead = number("rated_head")
	design.Density = number("density")
	if v := number("sparing_factor"); v > 0 {
		design.SparingFactor = v
	}
	if v := number("header_row"); v > 0 {
		design.HeaderRow = int(v)
	}
	if parseErr != nil {
		return design, parseErr
	}

	design.MotorEfficiency = pumpdata.ParseMaybe(kv["motor_efficiency"])
	design.BEPFlowrate = pumpdata.ParseMaybe(kv["bep_flowrate"])
	design.BEPEfficiency = pumpdata.ParseMaybe(kv["bep_efficiency"])

	if s := kv["valve_character"]; s != "" {
		ch, err := valve.ParseCharacter(s)
		if err != nil {
			return design, err
		}
		design.ValveCharacter = ch
	}

	method, err := pumpdata.ParseCalculationMethod(kv["calculation_method"])
	if err != nil {
		return design, err
	}
	design.CalculationMethod = method
	return design, nil
}

func readOperation(f *excelize.File, headerRow int) (cleaner.RawTable, pumpdata.UnitMap, error) {
	var table cleaner.RawTable

	rows, err := f.GetRows(SheetOperation)
	if err != nil {
		return table, nil, fmt.Errorf("sheet %q: %w", SheetOperation, err)
	}
	if len(rows) < headerRow+1 {
		return table, nil, fmt.Errorf("sheet %q has no data below header row %d", SheetOperation, headerRow)
	}

	for _, h := range rows[headerRow-1] {
		table.Columns = append(table.Columns, normalize(h))
	}

	// the unit row is keyed to the canonical parameter kinds the
	// cleaner scales by
	units := pumpdata.UnitMap{}
	for i, u := range rows[headerRow] {
		u = strings.TrimSpace(u)
		if i >= len(table.Columns) || u == "" {
			continue
		}
		switch col := table.Columns[i]; {
		case col == cleaner.ColDischargeFlowrate:
			units["flowrate"] = u
		case strings.HasSuffix(col, "_pressure"):
			if _, ok := units["pressure"]; !ok {
				units["pressure"] = u
			}
		}
	}

	for _, row := range rows[headerRow+1:] {
		cells := make([]string, len(table.Columns))
		copy(cells, row)
		table.Rows = append(table.Rows, cells)
	}
	return table, units, nil
}

// LoadConfig parses the analysis configuration workbook: a key/value
// "PumpConfig" sheet overriding the defaults and an "Emission Factor"
// sheet mapping sites to tonnes CO2 per MWh.
func LoadConfig(r io.Reader) (pumpdata.Config, map[string]float64, error) {
	cfg := pumpdata.DefaultConfig()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return cfg, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetConfig)
	if err != nil {
		return cfg, nil, fmt.Errorf("sheet %q: %w", SheetConfig, err)
	}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		key := normalize(row[0])
		value, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			continue // header and comment rows
		}
		applyConfig(&cfg, key, value)
	}

	factors, err := readEmissionFactors(f)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, factors, nil
}

// LoadConfigFile is LoadConfig over a file path.
func LoadConfigFile(path string) (pumpdata.Config, map[string]float64, error) {
	fh, err := os.Open(path)
	if err != nil {
		return pumpdata.DefaultConfig(), nil, err
	}
	defer fh.Close()
	return LoadConfig(fh)
}

func applyConfig(cfg *pumpdata.Config, key string, value float64) {
	switch key {
	case "bin_percent":
		cfg.BinPercent = value
	case "min_working_percent":
		cfg.MinWorkingPercent = value
	case "min_cv_opening":
		cfg.MinCvOpening = value
	case "pipe_loss":
		cfg.PipingLoss = value
	case "pump_efficiency":
		cfg.PumpEfficiency = value
	case "discount_rate":
		cfg.DiscountRate = value
	case "inflation_rate":
		cfg.InflationRate = value
	case "project_life":
		cfg.ProjectLife = int(value)
	case "electricity_price":
		cfg.ElectricityPrice = value
	case "vsd_capex":
		cfg.VSDCapex = value
	case "vsd_opex_rate":
		cfg.VSDOpexRate = value
	case "vfd_capex":
		cfg.VFDCapex = value
	case "vfd_opex_rate":
		cfg.VFDOpexRate = value
	case "impeller_capex":
		cfg.ImpellerCapex = value
	case "impeller_opex_rate":
		cfg.ImpellerOpexRate = value
	}
}

func readEmissionFactors(f *excelize.File) (map[string]float64, error) {
	rows, err := f.GetRows(SheetEmission)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", SheetEmission, err)
	}

	factors := map[string]float64{}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		site := strings.TrimSpace(row[0])
		factor, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil || site == "" {
			continue
		}
		factors[site] = factor
	}
	return factors, nil
}

// LoadTasks parses the batch task list: a "Task List" sheet with site
// and tag columns under a header row.
func LoadTasks(r io.Reader) ([]batch.Task, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetTasks)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", SheetTasks, err)
	}

	var tasks []batch.Task
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		site, tag := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if site == "" || tag == "" {
			continue
		}
		tasks = append(tasks, batch.Task{Site: site, Tag: tag})
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("sheet %q lists no tasks", SheetTasks)
	}
	return tasks, nil
}

// LoadTasksFile is LoadTasks over a file path.
func LoadTasksFile(path string) ([]batch.Task, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return LoadTasks(fh)
}

// normalize lowers a header cell and joins its words with underscores.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), "_")
}
