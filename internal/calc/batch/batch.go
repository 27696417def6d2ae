// Package batch runs the pump analysis over a task list of equipment
// tags. Tags are independent, so they are fanned out over a bounded
// worker pool; a failing tag is reported and never aborts the batch.
package batch

import (
	"sync"

	"Pumpwise/internal/calc/pump"
)

// DefaultWorkers bounds the pool when the caller does not.
const DefaultWorkers = 4

// Task identifies one equipment tag to analyze.
type Task struct {
	Site string `json:"site"`
	Tag  string `json:"tag"`
}

// Outcome pairs a task with its result or its failure.
type Outcome struct {
	Task   Task
	Result *pump.Result
	Err    error
}

// Loader resolves a task to a ready analysis input, typically by
// reading the tag's workbook.
type Loader func(Task) (pump.Input, error)

// Run processes every task and returns the outcomes in task order.
// Each worker holds its own inputs only; the loader must be safe for
// concurrent use.
func Run(tasks []Task, load Loader, workers int) []Outcome {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	out := make([]Outcome, len(tasks))
	idx := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				out[i] = runOne(tasks[i], load)
			}
		}()
	}

	for i := range tasks {
		idx <- i
	}
	close(idx)
	wg.Wait()
	return out
}

func runOne(task Task, load Loader) Outcome {
	o := Outcome{Task: task}
	in, err := load(task)
	if err != nil {
		o.Err = &pump.StageError{Site: task.Site, Tag: task.Tag, Stage: "load", Err: err}
		return o
	}
	o.Result, o.Err = pump.Process(in)
	return o
}
