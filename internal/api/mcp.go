package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/waihoh/amazon-braket-examples/internal/braket"
	"github.com/waihoh/amazon-braket-examples/internal/device"
)

// DeviceService fetches device metadata for the MCP layer.
type DeviceService interface {
	GetDevice(ctx context.Context, arn string) (*braket.DeviceInfo, error)
	SearchDevices(ctx context.Context, qpuOnly bool) ([]braket.DeviceSummary, error)
}

// MCPDeps holds dependencies for the MCP tool surface.
type MCPDeps struct {
	Store     TaskStore
	Client    TaskService
	Devices   DeviceService
	DeviceARN string // default device for device-scoped tools
}

// NewMCPServer creates an MCP server exposing the braketctl operations to
// agent frontends.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"braketctl",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("braketctl: inspect Braket QPU devices, pick high-fidelity qubit pairs, and check quantum task status."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("search_devices",
			mcp.WithDescription("List available Braket devices with their provider, type, and status."),
			mcp.WithBoolean("qpu_only", mcp.Description("Only return QPU devices")),
		),
		mcpSearchDevices(deps),
	)

	s.AddTool(
		mcp.NewTool("get_device_topology",
			mcp.WithDescription("Return the qubit connectivity graph of a Braket device as JSON."),
			mcp.WithString("device_arn", mcp.Description("Device ARN; defaults to the configured device")),
		),
		mcpDeviceTopology(deps),
	)

	s.AddTool(
		mcp.NewTool("best_pair",
			mcp.WithDescription("Return the qubit pair with the highest calibrated fidelity for a two-qubit gate (CPHASE, CZ, or XY)."),
			mcp.WithString("gate", mcp.Description("Gate kind: CPHASE, CZ, or XY"), mcp.Required()),
			mcp.WithString("device_arn", mcp.Description("Device ARN; defaults to the configured device")),
		),
		mcpBestPair(deps),
	)

	s.AddTool(
		mcp.NewTool("get_task_status",
			mcp.WithDescription("Return the current status of a quantum task by ARN."),
			mcp.WithString("arn", mcp.Description("Quantum task ARN"), mcp.Required()),
		),
		mcpTaskStatus(deps),
	)

	s.AddTool(
		mcp.NewTool("list_tasks",
			mcp.WithDescription("List recently submitted quantum tasks from the local ledger."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of tasks to return (default 10)")),
		),
		mcpListTasks(deps),
	)

	return s
}

func (d MCPDeps) resolveDevice(ctx context.Context, req mcp.CallToolRequest) (*braket.DeviceInfo, error) {
	arn := req.GetString("device_arn", d.DeviceARN)
	if arn == "" {
		return nil, fmt.Errorf("no device ARN given and none configured")
	}
	return d.Devices.GetDevice(ctx, arn)
}

func mcpSearchDevices(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		qpuOnly := req.GetBool("qpu_only", false)

		devices, err := deps.Devices.SearchDevices(ctx, qpuOnly)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to search devices: %v", err)), nil
		}
		if len(devices) == 0 {
			return mcpText("No devices found."), nil
		}

		var b strings.Builder
		for _, d := range devices {
			fmt.Fprintf(&b, "%s  %s  %s  %s\n", d.Provider, d.Type, d.Status, d.ARN)
		}
		return mcpText(b.String()), nil
	}
}

func mcpDeviceTopology(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info, err := deps.resolveDevice(ctx, req)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to fetch device: %v", err)), nil
		}

		out, err := json.Marshal(info.Snapshot.Topology)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to encode topology: %v", err)), nil
		}
		return mcpText(string(out)), nil
	}
}

func mcpBestPair(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		gateLabel, err := req.RequireString("gate")
		if err != nil {
			return mcpError("gate is required"), nil
		}
		gate, err := device.ParseGate(gateLabel)
		if err != nil {
			return mcpError(fmt.Sprintf("unrecognized gate %q; expected CPHASE, CZ, or XY", gateLabel)), nil
		}

		info, err := deps.resolveDevice(ctx, req)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to fetch device: %v", err)), nil
		}

		pair, fidelity, err := info.Snapshot.Calibration.BestPair(gate)
		if err != nil {
			return mcpError(fmt.Sprintf("no usable pair: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Best %s pair on %s: qubits %d and %d (fidelity %.4f)",
			gate, info.Name, pair.A, pair.B, fidelity)), nil
	}
}

func mcpTaskStatus(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		arn, err := req.RequireString("arn")
		if err != nil {
			return mcpError("arn is required"), nil
		}

		info, err := deps.Client.GetTask(ctx, arn)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to fetch task: %v", err)), nil
		}

		msg := fmt.Sprintf("Task %s is %s", info.ARN, info.Status)
		if info.FailureReason != "" {
			msg += fmt.Sprintf(" (%s)", info.FailureReason)
		}
		return mcpText(msg), nil
	}
}

func mcpListTasks(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}

		tasks, err := deps.Store.ListTasks(limit)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list tasks: %v", err)), nil
		}
		if len(tasks) == 0 {
			return mcpText("No tasks in the local ledger."), nil
		}

		var b strings.Builder
		for _, t := range tasks {
			fmt.Fprintf(&b, "%s  %s  %s shots=%d %s\n",
				t.CreatedAt.UTC().Format("2006-01-02 15:04"), t.Status, t.RewiringMode, t.Shots, t.ARN)
		}
		return mcpText(b.String()), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
