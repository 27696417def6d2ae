// rotabatch runs the pump analysis over a task list of equipment
// workbooks laid out as <input>/<site>/<tag>.xlsx and writes a result
// workbook and summary PDF per tag.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"Pumpwise/internal/calc/batch"
	"Pumpwise/internal/calc/pump"
	"Pumpwise/internal/importer"
	"Pumpwise/internal/report"
)

func main() {
	inputDir := flag.String("input", "input", "directory of equipment workbooks, one <site>/<tag>.xlsx per tag")
	outputDir := flag.String("output", "output", "directory the result files are written to")
	configPath := flag.String("config", "config.xlsx", "analysis configuration workbook")
	tasksPath := flag.String("tasks", "tasks.xlsx", "task list workbook")
	workers := flag.Int("workers", batch.DefaultWorkers, "number of tags processed in parallel")
	flag.Parse()

	cfg, factors, err := importer.LoadConfigFile(*configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	tasks, err := importer.LoadTasksFile(*tasksPath)
	if err != nil {
		log.Fatalf("Task list error: %v", err)
	}
	log.Printf("Processing %d tags from %s", len(tasks), *tasksPath)

	load := func(task batch.Task) (pump.Input, error) {
		eq, err := importer.LoadEquipmentFile(filepath.Join(*inputDir, task.Site, task.Tag+".xlsx"))
		if err != nil {
			return pump.Input{}, err
		}
		return pump.Input{
			Site:            task.Site,
			Design:          eq.Design,
			Operation:       eq.Operation,
			Units:           eq.Units,
			Config:          cfg,
			EmissionFactors: factors,
		}, nil
	}

	failed := 0
	for _, o := range batch.Run(tasks, load, *workers) {
		if o.Err != nil {
			log.Printf("FAILED %s/%s: %v", o.Task.Site, o.Task.Tag, o.Err)
			failed++
			continue
		}
		if err := writeResults(*outputDir, o); err != nil {
			log.Printf("FAILED %s/%s: %v", o.Task.Site, o.Task.Tag, err)
			failed++
			continue
		}
		log.Printf("OK %s/%s: VSD saving %.1f MWh/yr, impeller %.1f MWh/yr",
			o.Task.Site, o.Task.Tag,
			o.Result.VSD.Summary.AnnualEnergySaving,
			o.Result.Impeller.Summary.AnnualEnergySaving)
	}

	log.Printf("Done: %d ok, %d failed", len(tasks)-failed, failed)
	if failed == len(tasks) {
		os.Exit(1)
	}
}

func writeResults(outputDir string, o batch.Outcome) error {
	dir := filepath.Join(outputDir, o.Task.Site)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	xlsx, err := os.Create(filepath.Join(dir, o.Task.Tag+".xlsx"))
	if err != nil {
		return err
	}
	defer xlsx.Close()
	if err := report.WriteWorkbook(xlsx, o.Result); err != nil {
		return fmt.Errorf("workbook: %w", err)
	}

	pdf, err := os.Create(filepath.Join(dir, o.Task.Tag+".pdf"))
	if err != nil {
		return err
	}
	defer pdf.Close()
	if err := report.PDF(pdf, o.Result); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	return nil
}
