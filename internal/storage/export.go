package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/ctrlsys/internal/sim"
)

type ExportData struct {
	RunMetadata
	Times    []float64   `json:"times"`
	Targets  []float64   `json:"targets"`
	Measured []float64   `json:"measured"`
	Outputs  []float64   `json:"outputs"`
	Errors   []float64   `json:"errors"`
	States   [][]float64 `json:"states"`
}

func NewExportData(meta RunMetadata, result *sim.Result) ExportData {
	data := ExportData{
		RunMetadata: meta,
		Times:       result.Times,
		Targets:     result.Targets(),
		Measured:    result.Measured(),
		Outputs:     result.Outputs(),
		Errors:      result.Errors(),
		States:      make([][]float64, len(result.States)),
	}
	data.Steps = result.StepsTaken
	data.Failures = result.Failures
	data.Metrics = finiteMetrics(result.Metrics)

	for i, s := range result.States {
		data.States[i] = s
	}
	return data
}

// ExportJSON writes the run as one indented JSON document to w.
func ExportJSON(w io.Writer, meta RunMetadata, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, result))
}

func ExportJSONFile(path string, meta RunMetadata, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, meta, result)
}
