package braket

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Result is the parsed view of a completed gate-model task's result document.
type Result struct {
	// MeasurementCounts maps a measured bitstring (one bit per measured
	// qubit, in measuredQubits order) to the number of shots observing it.
	MeasurementCounts map[string]int
	MeasuredQubits    []int
	Shots             int64

	// CompiledProgram is the provider's compiled program text (native Quil
	// for Rigetti devices), showing the physical qubits actually used.
	CompiledProgram string
}

// resultDoc mirrors the parts of the GateModelTaskResult document we read.
type resultDoc struct {
	Measurements      [][]int        `json:"measurements"`
	MeasurementCounts map[string]int `json:"measurementCounts"`
	MeasuredQubits    []int          `json:"measuredQubits"`
	TaskMetadata      struct {
		Shots int64 `json:"shots"`
	} `json:"taskMetadata"`
	AdditionalMetadata struct {
		RigettiMetadata struct {
			CompiledProgram string `json:"compiledProgram"`
		} `json:"rigettiMetadata"`
	} `json:"additionalMetadata"`
}

// ParseResult parses a results.json document. When the document only carries
// the raw per-shot measurement matrix, counts are derived from it.
func ParseResult(raw []byte) (*Result, error) {
	var doc resultDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing result document: %w", err)
	}

	counts := doc.MeasurementCounts
	if counts == nil && len(doc.Measurements) > 0 {
		counts = countMeasurements(doc.Measurements)
	}
	if counts == nil {
		counts = map[string]int{}
	}

	return &Result{
		MeasurementCounts: counts,
		MeasuredQubits:    doc.MeasuredQubits,
		Shots:             doc.TaskMetadata.Shots,
		CompiledProgram:   doc.AdditionalMetadata.RigettiMetadata.CompiledProgram,
	}, nil
}

func countMeasurements(measurements [][]int) map[string]int {
	counts := make(map[string]int)
	var b strings.Builder
	for _, shot := range measurements {
		b.Reset()
		for _, bit := range shot {
			if bit == 0 {
				b.WriteByte('0')
			} else {
				b.WriteByte('1')
			}
		}
		counts[b.String()]++
	}
	return counts
}
