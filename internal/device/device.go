// Package device models the capabilities document a Braket device reports:
// qubit connectivity, native gates, and provider calibration data.
package device

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Snapshot is the parsed, read-only view of a device capabilities document.
type Snapshot struct {
	QubitCount     int
	NativeGates    []string
	FullyConnected bool
	Topology       Topology
	Calibration    Calibration
}

// Topology maps a physical qubit id (string-encoded integer, as the service
// reports it) to the ids of the qubits it is directly coupled to.
type Topology map[string][]string

// capabilitiesDoc mirrors the parts of the Rigetti device capabilities JSON
// this tool reads.
type capabilitiesDoc struct {
	Paradigm struct {
		QubitCount    int      `json:"qubitCount"`
		NativeGateSet []string `json:"nativeGateSet"`
		Connectivity  struct {
			FullyConnected    bool                `json:"fullyConnected"`
			ConnectivityGraph map[string][]string `json:"connectivityGraph"`
		} `json:"connectivity"`
	} `json:"paradigm"`
	Provider struct {
		Specs map[string]map[string]map[string]float64 `json:"specs"`
	} `json:"provider"`
}

// ParseCapabilities parses a device capabilities JSON document into a Snapshot.
func ParseCapabilities(raw []byte) (*Snapshot, error) {
	var doc capabilitiesDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing capabilities document: %w", err)
	}

	snap := &Snapshot{
		QubitCount:     doc.Paradigm.QubitCount,
		NativeGates:    doc.Paradigm.NativeGateSet,
		FullyConnected: doc.Paradigm.Connectivity.FullyConnected,
		Topology:       Topology(doc.Paradigm.Connectivity.ConnectivityGraph),
	}

	// Two-qubit calibration lives under provider specs key "2Q",
	// keyed by pair label ("21-36") with per-gate fidelity fields.
	if twoQ, ok := doc.Provider.Specs["2Q"]; ok {
		snap.Calibration = make(Calibration, len(twoQ))
		for label, fidelities := range twoQ {
			if _, err := ParsePair(label); err != nil {
				return nil, fmt.Errorf("calibration entry %q: %w", label, err)
			}
			snap.Calibration[label] = fidelities
		}
	}

	return snap, nil
}

// QubitIDs returns the qubit ids present in the topology, sorted numerically.
// Non-numeric ids sort after numeric ones, lexically.
func (t Topology) QubitIDs() []string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, aErr := strconv.Atoi(ids[i])
		b, bErr := strconv.Atoi(ids[j])
		if aErr == nil && bErr == nil {
			return a < b
		}
		if aErr == nil {
			return true
		}
		if bErr == nil {
			return false
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Neighbors returns the qubits directly coupled to the given qubit id.
func (t Topology) Neighbors(id string) []string {
	return t[id]
}

// Degree returns the number of couplings the given qubit has.
func (t Topology) Degree(id string) int {
	return len(t[id])
}

// HasEdge reports whether qubits a and b are directly coupled, in either
// direction (the service document lists each edge from one side only).
func (t Topology) HasEdge(a, b string) bool {
	for _, n := range t[a] {
		if n == b {
			return true
		}
	}
	for _, n := range t[b] {
		if n == a {
			return true
		}
	}
	return false
}
