package device

import (
	"errors"
	"reflect"
	"testing"
)

const sampleCapabilities = `{
	"paradigm": {
		"qubitCount": 4,
		"nativeGateSet": ["cz", "xy", "rx", "rz"],
		"connectivity": {
			"fullyConnected": false,
			"connectivityGraph": {
				"0": ["1", "3"],
				"1": ["2"],
				"10": ["0"]
			}
		}
	},
	"provider": {
		"specs": {
			"1Q": {
				"0": {"fActiveReset": 0.99}
			},
			"2Q": {
				"0-1": {"fCZ": 0.91, "fXY": 0.88},
				"1-2": {"fCZ": 0.87}
			}
		}
	}
}`

func TestParseCapabilities(t *testing.T) {
	snap, err := ParseCapabilities([]byte(sampleCapabilities))
	if err != nil {
		t.Fatalf("ParseCapabilities returned error: %v", err)
	}

	if snap.QubitCount != 4 {
		t.Errorf("QubitCount = %d, want 4", snap.QubitCount)
	}
	if snap.FullyConnected {
		t.Error("FullyConnected should be false")
	}
	if !reflect.DeepEqual(snap.NativeGates, []string{"cz", "xy", "rx", "rz"}) {
		t.Errorf("NativeGates = %v", snap.NativeGates)
	}

	if got := snap.Topology.Neighbors("0"); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Errorf("Neighbors(0) = %v, want [1 3]", got)
	}
	if got := len(snap.Calibration); got != 2 {
		t.Errorf("calibration entries = %d, want 2", got)
	}

	pair, fidelity, err := snap.Calibration.BestPair(GateCZ)
	if err != nil {
		t.Fatalf("BestPair returned error: %v", err)
	}
	if pair != (Pair{A: 0, B: 1}) || fidelity != 0.91 {
		t.Errorf("BestPair(CZ) = %v/%v, want {0 1}/0.91", pair, fidelity)
	}
}

func TestParseCapabilitiesBadJSON(t *testing.T) {
	if _, err := ParseCapabilities([]byte("{")); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestParseCapabilitiesBadPairLabel(t *testing.T) {
	doc := `{"provider": {"specs": {"2Q": {"not-a-pair-x": {"fCZ": 0.5}}}}}`
	if _, err := ParseCapabilities([]byte(doc)); err == nil {
		t.Error("expected error for malformed pair label")
	}
}

func TestTopologyQubitIDsNumericOrder(t *testing.T) {
	snap, err := ParseCapabilities([]byte(sampleCapabilities))
	if err != nil {
		t.Fatalf("ParseCapabilities returned error: %v", err)
	}
	if got := snap.Topology.QubitIDs(); !reflect.DeepEqual(got, []string{"0", "1", "10"}) {
		t.Errorf("QubitIDs = %v, want [0 1 10]", got)
	}
}

func TestTopologyHasEdgeEitherDirection(t *testing.T) {
	topo := Topology{
		"0": {"1"},
		"1": {},
	}
	if !topo.HasEdge("0", "1") {
		t.Error("HasEdge(0,1) should be true")
	}
	if !topo.HasEdge("1", "0") {
		t.Error("HasEdge(1,0) should be true")
	}
	if topo.HasEdge("0", "2") {
		t.Error("HasEdge(0,2) should be false")
	}
	if topo.Degree("0") != 1 {
		t.Errorf("Degree(0) = %d, want 1", topo.Degree("0"))
	}
}

func TestCalibrationErrorsSurviveWrapping(t *testing.T) {
	_, err := ParseGate("toffoli")
	if !errors.Is(err, ErrUnknownGate) {
		t.Errorf("wrapped error should match ErrUnknownGate, got %v", err)
	}
}
