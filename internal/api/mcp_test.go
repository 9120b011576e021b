package api

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/waihoh/amazon-braket-examples/internal/braket"
	"github.com/waihoh/amazon-braket-examples/internal/device"
)

type fakeDevices struct {
	snapshot  *device.Snapshot
	summaries []braket.DeviceSummary
	qpuOnly   bool
}

func (d *fakeDevices) GetDevice(ctx context.Context, arn string) (*braket.DeviceInfo, error) {
	return &braket.DeviceInfo{ARN: arn, Name: "Aspen-M-3", Snapshot: d.snapshot}, nil
}

func (d *fakeDevices) SearchDevices(ctx context.Context, qpuOnly bool) ([]braket.DeviceSummary, error) {
	d.qpuOnly = qpuOnly
	return d.summaries, nil
}

func newTestMCPDeps() (MCPDeps, *fakeDevices) {
	devices := &fakeDevices{
		snapshot: &device.Snapshot{
			QubitCount: 4,
			Topology:   device.Topology{"0": {"1", "2"}},
			Calibration: device.Calibration{
				"21-36": {"fCZ": 0.95},
				"0-1":   {"fCZ": 0.90},
			},
		},
		summaries: []braket.DeviceSummary{
			{ARN: "arn:device", Name: "Aspen-M-3", Provider: "Rigetti", Type: "QPU", Status: "ONLINE"},
		},
	}
	return MCPDeps{
		Store:     newFakeStore(testRecord("arn:task", "RUNNING")),
		Client:    &fakeClient{status: braket.StatusRunning},
		Devices:   devices,
		DeviceARN: "arn:device",
	}, devices
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestMCPTool_SearchDevices(t *testing.T) {
	deps, devices := newTestMCPDeps()
	handler := mcpSearchDevices(deps)

	req := makeCallToolRequest("search_devices", map[string]interface{}{
		"qpu_only": true,
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}
	if !devices.qpuOnly {
		t.Error("qpu_only argument should be passed through")
	}

	text := toolText(t, result)
	if !strings.Contains(text, "Rigetti") || !strings.Contains(text, "arn:device") {
		t.Errorf("device listing missing fields: %s", text)
	}
}

func TestMCPTool_SearchDevicesEmpty(t *testing.T) {
	deps, devices := newTestMCPDeps()
	devices.summaries = nil
	handler := mcpSearchDevices(deps)

	result, err := handler(context.Background(), makeCallToolRequest("search_devices", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text := toolText(t, result); !strings.Contains(text, "No devices") {
		t.Errorf("empty search rendering = %q", text)
	}
}

func TestMCPTool_DeviceTopology(t *testing.T) {
	deps, _ := newTestMCPDeps()
	handler := mcpDeviceTopology(deps)

	result, err := handler(context.Background(), makeCallToolRequest("get_device_topology", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	text := toolText(t, result)
	if !strings.Contains(text, `"0"`) || !strings.Contains(text, `"1"`) {
		t.Errorf("topology JSON missing edges: %s", text)
	}
}

func TestMCPTool_BestPair(t *testing.T) {
	deps, _ := newTestMCPDeps()
	handler := mcpBestPair(deps)

	req := makeCallToolRequest("best_pair", map[string]interface{}{
		"gate": "CZ",
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	text := toolText(t, result)
	if !strings.Contains(text, "21") || !strings.Contains(text, "36") {
		t.Errorf("expected best CZ pair 21/36 in response: %s", text)
	}
}

func TestMCPTool_BestPairUnknownGate(t *testing.T) {
	deps, _ := newTestMCPDeps()
	handler := mcpBestPair(deps)

	req := makeCallToolRequest("best_pair", map[string]interface{}{
		"gate": "CNOT",
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Errorf("expected tool error for unrecognized gate, got: %s", toolText(t, result))
	}
}

func TestMCPTool_TaskStatus(t *testing.T) {
	deps, _ := newTestMCPDeps()
	handler := mcpTaskStatus(deps)

	req := makeCallToolRequest("get_task_status", map[string]interface{}{
		"arn": "arn:task",
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}
	if text := toolText(t, result); !strings.Contains(text, "RUNNING") {
		t.Errorf("expected task status in response: %s", text)
	}
}

func TestMCPTool_ListTasks(t *testing.T) {
	deps, _ := newTestMCPDeps()
	handler := mcpListTasks(deps)

	result, err := handler(context.Background(), makeCallToolRequest("list_tasks", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text := toolText(t, result); !strings.Contains(text, "arn:task") {
		t.Errorf("expected ledger task in response: %s", text)
	}
}
