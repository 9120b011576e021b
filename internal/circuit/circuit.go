// Package circuit builds small gate-model quantum circuits and renders them
// as OpenQASM 3 programs suitable for submission as a Braket task action.
package circuit

import (
	"fmt"
	"sort"
)

// Gate is a single operation in a circuit: a gate name, the qubit indices it
// acts on (control first for controlled gates), and optional angle parameters.
type Gate struct {
	Name   string
	Qubits []int
	Params []float64
}

// Circuit is an ordered sequence of gates built incrementally through the
// fluent methods below. Qubit indices may be physical device indices (e.g.
// 21, 36) when the circuit is meant for manual allocation.
type Circuit struct {
	gates  []Gate
	frozen bool
}

// New returns an empty circuit.
func New() *Circuit {
	return &Circuit{}
}

// Bell returns the two-qubit Bell-pair circuit on the given qubits.
func Bell(q0, q1 int) *Circuit {
	return New().H(q0).CNot(q0, q1)
}

func (c *Circuit) add(name string, params []float64, qubits ...int) *Circuit {
	if c.frozen {
		panic("circuit: cannot modify a frozen circuit")
	}
	for _, q := range qubits {
		if q < 0 {
			panic(fmt.Sprintf("circuit: negative qubit index %d", q))
		}
	}
	c.gates = append(c.gates, Gate{Name: name, Qubits: qubits, Params: params})
	return c
}

// --- single-qubit gates ---

func (c *Circuit) I(q int) *Circuit { return c.add("i", nil, q) }
func (c *Circuit) H(q int) *Circuit { return c.add("h", nil, q) }
func (c *Circuit) X(q int) *Circuit { return c.add("x", nil, q) }
func (c *Circuit) Y(q int) *Circuit { return c.add("y", nil, q) }
func (c *Circuit) Z(q int) *Circuit { return c.add("z", nil, q) }
func (c *Circuit) S(q int) *Circuit { return c.add("s", nil, q) }
func (c *Circuit) T(q int) *Circuit { return c.add("t", nil, q) }

func (c *Circuit) Rx(q int, theta float64) *Circuit { return c.add("rx", []float64{theta}, q) }
func (c *Circuit) Ry(q int, theta float64) *Circuit { return c.add("ry", []float64{theta}, q) }
func (c *Circuit) Rz(q int, theta float64) *Circuit { return c.add("rz", []float64{theta}, q) }

// --- two-qubit gates ---

func (c *Circuit) CNot(control, target int) *Circuit { return c.add("cnot", nil, control, target) }
func (c *Circuit) CZ(control, target int) *Circuit   { return c.add("cz", nil, control, target) }
func (c *Circuit) Swap(q0, q1 int) *Circuit          { return c.add("swap", nil, q0, q1) }

// CPhaseShift applies a controlled phase shift of angle theta.
func (c *Circuit) CPhaseShift(control, target int, theta float64) *Circuit {
	return c.add("cphaseshift", []float64{theta}, control, target)
}

// XY applies the parameterized XY interaction, native on Rigetti devices.
func (c *Circuit) XY(q0, q1 int, theta float64) *Circuit {
	return c.add("xy", []float64{theta}, q0, q1)
}

// Gates returns a copy of the gate sequence.
func (c *Circuit) Gates() []Gate {
	out := make([]Gate, len(c.gates))
	copy(out, c.gates)
	return out
}

// Depth returns the number of gates in the circuit.
func (c *Circuit) Depth() int {
	return len(c.gates)
}

// Qubits returns the distinct qubit indices the circuit touches, ascending.
func (c *Circuit) Qubits() []int {
	seen := make(map[int]bool)
	for _, g := range c.gates {
		for _, q := range g.Qubits {
			seen[q] = true
		}
	}
	qubits := make([]int, 0, len(seen))
	for q := range seen {
		qubits = append(qubits, q)
	}
	sort.Ints(qubits)
	return qubits
}

// QubitCount returns the number of distinct qubits the circuit touches.
func (c *Circuit) QubitCount() int {
	return len(c.Qubits())
}

// Freeze marks the circuit immutable. Submission freezes the circuit; any
// later builder call panics.
func (c *Circuit) Freeze() {
	c.frozen = true
}

// Frozen reports whether the circuit has been frozen.
func (c *Circuit) Frozen() bool {
	return c.frozen
}
