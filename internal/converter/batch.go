package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// BatchItem is the outcome of one input of a batch.
type BatchItem struct {
	Input  string
	Result *Result
	Err    error
}

// BatchReport collects the outcome of every input in processing order.
type BatchReport struct {
	Items []BatchItem
}

// Failed returns the number of inputs that could not be converted.
func (r *BatchReport) Failed() int {
	n := 0
	for _, it := range r.Items {
		if it.Err != nil {
			n++
		}
	}
	return n
}

// Succeeded returns the number of converted inputs.
func (r *BatchReport) Succeeded() int {
	return len(r.Items) - r.Failed()
}

// FindEPUBs lists the .epub files directly inside dir, sorted by name.
func FindEPUBs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsEPUBName(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// RunBatch converts inputs one after another with the shared options.
// A failed input does not stop the batch; onDone, when non-nil, is called
// after each input.
func RunBatch(inputs []string, opts ConvertOptions, onDone func(BatchItem)) *BatchReport {
	report := &BatchReport{Items: make([]BatchItem, 0, len(inputs))}
	for _, input := range inputs {
		o := opts
		o.InputPath = input
		res, err := NewPipeline(o).Convert()
		item := BatchItem{Input: input, Result: res, Err: err}
		report.Items = append(report.Items, item)
		if onDone != nil {
			onDone(item)
		}
	}
	return report
}
