package circuit

import (
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestBuilderOrdersGates(t *testing.T) {
	c := New().H(0).CNot(0, 1).Rz(1, math.Pi)

	gates := c.Gates()
	if len(gates) != 3 {
		t.Fatalf("expected 3 gates, got %d", len(gates))
	}
	if gates[0].Name != "h" || gates[1].Name != "cnot" || gates[2].Name != "rz" {
		t.Errorf("unexpected gate order: %v", gates)
	}
	if !reflect.DeepEqual(gates[1].Qubits, []int{0, 1}) {
		t.Errorf("cnot qubits = %v, want [0 1]", gates[1].Qubits)
	}
}

func TestQubitsSortedDistinct(t *testing.T) {
	c := New().CZ(36, 21).H(21)

	if got := c.Qubits(); !reflect.DeepEqual(got, []int{21, 36}) {
		t.Errorf("Qubits() = %v, want [21 36]", got)
	}
	if got := c.QubitCount(); got != 2 {
		t.Errorf("QubitCount() = %d, want 2", got)
	}
}

func TestBellCircuit(t *testing.T) {
	c := Bell(0, 1)

	gates := c.Gates()
	if len(gates) != 2 {
		t.Fatalf("expected 2 gates, got %d", len(gates))
	}
	if gates[0].Name != "h" || gates[1].Name != "cnot" {
		t.Errorf("unexpected bell gates: %v", gates)
	}
}

func TestFreezePreventsModification(t *testing.T) {
	c := Bell(0, 1)
	c.Freeze()

	if !c.Frozen() {
		t.Fatal("circuit should report frozen")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic when modifying a frozen circuit")
		}
	}()
	c.X(0)
}

func TestOpenQASMBell(t *testing.T) {
	got := Bell(0, 1).OpenQASM()

	want := `OPENQASM 3.0;
bit[2] b;
qubit[2] q;
h q[0];
cnot q[0], q[1];
b[0] = measure q[0];
b[1] = measure q[1];
`
	if got != want {
		t.Errorf("OpenQASM mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestOpenQASMVerbatimPhysicalQubits(t *testing.T) {
	got := Bell(21, 36).OpenQASMVerbatim()

	for _, fragment := range []string{
		"#pragma braket verbatim",
		"box {",
		"h $21;",
		"cnot $21, $36;",
		"b[0] = measure $21;",
		"b[1] = measure $36;",
	} {
		if !strings.Contains(got, fragment) {
			t.Errorf("verbatim program missing %q:\n%s", fragment, got)
		}
	}
	if strings.Contains(got, "q[") {
		t.Errorf("verbatim program should not address virtual qubits:\n%s", got)
	}
}

func TestOpenQASMParameterizedGates(t *testing.T) {
	got := New().XY(0, 1, math.Pi/2).CPhaseShift(0, 1, 0.25).OpenQASM()

	if !strings.Contains(got, "xy(1.5707963267948966) q[0], q[1];") {
		t.Errorf("missing xy gate with full-precision angle:\n%s", got)
	}
	if !strings.Contains(got, "cphaseshift(0.25) q[0], q[1];") {
		t.Errorf("missing cphaseshift gate:\n%s", got)
	}
}

func TestOpenQASMEmptyCircuit(t *testing.T) {
	got := New().OpenQASM()

	want := "OPENQASM 3.0;\nbit[0] b;\n"
	if got != want {
		t.Errorf("empty circuit OpenQASM = %q, want %q", got, want)
	}
}
