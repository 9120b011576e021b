package device

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TwoQubitGate is a two-qubit gate kind with provider calibration data.
type TwoQubitGate string

const (
	GateCPhase TwoQubitGate = "CPHASE"
	GateCZ     TwoQubitGate = "CZ"
	GateXY     TwoQubitGate = "XY"
)

// ErrUnknownGate is returned for gate labels outside {CPHASE, CZ, XY}.
var ErrUnknownGate = errors.New("unknown two-qubit gate")

// ErrNoCalibration is returned when no qubit pair in the calibration table
// defines a fidelity for the requested gate.
var ErrNoCalibration = errors.New("no calibration data for gate")

// ParseGate converts a textual gate label to a TwoQubitGate. Matching is
// case-insensitive; unrecognized labels return ErrUnknownGate.
func ParseGate(s string) (TwoQubitGate, error) {
	switch TwoQubitGate(strings.ToUpper(strings.TrimSpace(s))) {
	case GateCPhase:
		return GateCPhase, nil
	case GateCZ:
		return GateCZ, nil
	case GateXY:
		return GateXY, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGate, s)
	}
}

// Valid reports whether the gate is a recognized calibrated gate kind.
func (g TwoQubitGate) Valid() bool {
	switch g {
	case GateCPhase, GateCZ, GateXY:
		return true
	}
	return false
}

// fidelityKey is the field name carrying this gate's fidelity in the
// provider's two-qubit specs ("fCZ", "fCPHASE", "fXY").
func (g TwoQubitGate) fidelityKey() string {
	return "f" + string(g)
}

// Pair is an ordered pair of physical qubit ids.
type Pair struct {
	A, B int
}

// ParsePair parses a hyphen-delimited qubit pair label such as "21-36".
func ParsePair(label string) (Pair, error) {
	first, second, ok := strings.Cut(label, "-")
	if !ok {
		return Pair{}, fmt.Errorf("malformed qubit pair label %q", label)
	}
	a, err := strconv.Atoi(first)
	if err != nil {
		return Pair{}, fmt.Errorf("malformed qubit pair label %q: %w", label, err)
	}
	b, err := strconv.Atoi(second)
	if err != nil {
		return Pair{}, fmt.Errorf("malformed qubit pair label %q: %w", label, err)
	}
	return Pair{A: a, B: b}, nil
}

// Label renders the pair back to its "21-36" form.
func (p Pair) Label() string {
	return fmt.Sprintf("%d-%d", p.A, p.B)
}

// Calibration maps a qubit pair label to that pair's per-gate fidelity
// fields, as reported under the provider's "2Q" specs.
type Calibration map[string]map[string]float64

// BestPair returns the qubit pair with the maximum fidelity for the given
// gate among pairs that define it, along with that fidelity. Pair labels are
// scanned in sorted order so ties resolve deterministically. Returns
// ErrUnknownGate for unrecognized gates and ErrNoCalibration when no pair
// defines the requested gate.
func (c Calibration) BestPair(gate TwoQubitGate) (Pair, float64, error) {
	if !gate.Valid() {
		return Pair{}, 0, fmt.Errorf("%w: %q", ErrUnknownGate, string(gate))
	}

	labels := make([]string, 0, len(c))
	for label := range c {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	key := gate.fidelityKey()
	var (
		best      Pair
		bestScore float64
		found     bool
	)
	for _, label := range labels {
		score, ok := c[label][key]
		if !ok {
			continue
		}
		if !found || score > bestScore {
			pair, err := ParsePair(label)
			if err != nil {
				return Pair{}, 0, err
			}
			best = pair
			bestScore = score
			found = true
		}
	}
	if !found {
		return Pair{}, 0, fmt.Errorf("%w: %s", ErrNoCalibration, gate)
	}
	return best, bestScore, nil
}
