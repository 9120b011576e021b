package circuit

import (
	"fmt"
	"strconv"
	"strings"
)

// OpenQASM renders the circuit as an OpenQASM 3 program. Qubits are addressed
// through a virtual register; the service compiler is free to remap them onto
// physical qubits (automatic allocation).
func (c *Circuit) OpenQASM() string {
	qubits := c.Qubits()
	regSize := 0
	if len(qubits) > 0 {
		regSize = qubits[len(qubits)-1] + 1
	}

	var b strings.Builder
	b.WriteString("OPENQASM 3.0;\n")
	fmt.Fprintf(&b, "bit[%d] b;\n", len(qubits))
	if regSize > 0 {
		fmt.Fprintf(&b, "qubit[%d] q;\n", regSize)
	}
	for _, g := range c.gates {
		b.WriteString(renderGate(g, func(q int) string { return fmt.Sprintf("q[%d]", q) }))
	}
	for i, q := range qubits {
		fmt.Fprintf(&b, "b[%d] = measure q[%d];\n", i, q)
	}
	return b.String()
}

// OpenQASMVerbatim renders the circuit inside a verbatim box addressing
// physical qubits directly. Combined with disabled qubit rewiring this pins
// the circuit to the exact device qubits it names.
func (c *Circuit) OpenQASMVerbatim() string {
	qubits := c.Qubits()

	var b strings.Builder
	b.WriteString("OPENQASM 3.0;\n")
	fmt.Fprintf(&b, "bit[%d] b;\n", len(qubits))
	b.WriteString("#pragma braket verbatim\n")
	b.WriteString("box {\n")
	for _, g := range c.gates {
		b.WriteString("    ")
		b.WriteString(renderGate(g, func(q int) string { return fmt.Sprintf("$%d", q) }))
	}
	b.WriteString("}\n")
	for i, q := range qubits {
		fmt.Fprintf(&b, "b[%d] = measure $%d;\n", i, q)
	}
	return b.String()
}

func renderGate(g Gate, addr func(int) string) string {
	var b strings.Builder
	b.WriteString(g.Name)
	if len(g.Params) > 0 {
		params := make([]string, len(g.Params))
		for i, p := range g.Params {
			params[i] = strconv.FormatFloat(p, 'g', -1, 64)
		}
		fmt.Fprintf(&b, "(%s)", strings.Join(params, ", "))
	}
	b.WriteString(" ")
	targets := make([]string, len(g.Qubits))
	for i, q := range g.Qubits {
		targets[i] = addr(q)
	}
	b.WriteString(strings.Join(targets, ", "))
	b.WriteString(";\n")
	return b.String()
}
