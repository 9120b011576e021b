package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/waihoh/amazon-braket-examples/internal/braket"
	"github.com/waihoh/amazon-braket-examples/internal/circuit"
	"github.com/waihoh/amazon-braket-examples/internal/config"
	"github.com/waihoh/amazon-braket-examples/internal/device"
	"github.com/waihoh/amazon-braket-examples/internal/storage"
	"github.com/waihoh/amazon-braket-examples/internal/task"
)

// --- device ---

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Inspect Braket devices",
}

var deviceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		qpuOnly, _ := cmd.Flags().GetBool("qpu")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		client, err := newClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		devices, err := client.SearchDevices(cmd.Context(), qpuOnly)
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("No devices found.")
			return nil
		}

		for _, d := range devices {
			fmt.Printf("%-12s %-10s %-10s %s\n", d.Provider, d.Type, statusColor(d.Status), d.ARN)
		}
		return nil
	},
}

var deviceShowCmd = &cobra.Command{
	Use:   "show [device-arn]",
	Short: "Show device details and capabilities",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		arn := cfg.Device.ARN
		if len(args) == 1 {
			arn = args[0]
		}

		client, err := newClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		info, err := client.GetDevice(cmd.Context(), arn)
		if err != nil {
			return err
		}

		printStatus("Name", "%s", info.Name)
		printStatus("Provider", "%s", info.Provider)
		printStatus("Type", "%s", info.Type)
		printStatus("Status", "%s", statusColor(info.Status))
		printStatus("Qubits", "%d", info.Snapshot.QubitCount)
		printStatus("Native gates", "%s", strings.Join(info.Snapshot.NativeGates, ", "))
		printStatus("Calibrated pairs", "%d", len(info.Snapshot.Calibration))
		return nil
	},
}

var deviceTopologyCmd = &cobra.Command{
	Use:   "topology [device-arn]",
	Short: "Print the device's qubit connectivity graph",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		arn := cfg.Device.ARN
		if len(args) == 1 {
			arn = args[0]
		}

		client, err := newClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		info, err := client.GetDevice(cmd.Context(), arn)
		if err != nil {
			return err
		}

		if info.Snapshot.FullyConnected {
			fmt.Println("Device is fully connected.")
			return nil
		}
		fmt.Print(renderTopology(info.Snapshot.Topology))
		return nil
	},
}

var deviceBestPairCmd = &cobra.Command{
	Use:   "best-pair",
	Short: "Find the qubit pair with the highest calibrated fidelity for a gate",
	Long: `Find the qubit pair with the highest calibrated fidelity for a gate.

The gate must be one of the two-qubit gates the provider calibrates:
CPHASE, CZ, or XY.

Example:
  braketctl device best-pair --gate CZ`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gateLabel, _ := cmd.Flags().GetString("gate")

		gate, err := device.ParseGate(gateLabel)
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		client, err := newClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		info, err := client.GetDevice(cmd.Context(), cfg.Device.ARN)
		if err != nil {
			return err
		}

		pair, fidelity, err := info.Snapshot.Calibration.BestPair(gate)
		if err != nil {
			return err
		}

		fmt.Printf("Best %s pair on %s: qubits %d and %d (fidelity %.4f)\n",
			gate, info.Name, pair.A, pair.B, fidelity)
		return nil
	},
}

func init() {
	deviceListCmd.Flags().Bool("qpu", false, "only list QPU devices")
	deviceBestPairCmd.Flags().String("gate", "CZ", "two-qubit gate kind (CPHASE, CZ, or XY)")
	deviceCmd.AddCommand(deviceListCmd)
	deviceCmd.AddCommand(deviceShowCmd)
	deviceCmd.AddCommand(deviceTopologyCmd)
	deviceCmd.AddCommand(deviceBestPairCmd)
}

// --- run ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Submit a Bell-pair circuit as a quantum task",
	Long: `Submit a Bell-pair circuit as a quantum task.

By default the service compiler picks the physical qubits (automatic
allocation). Pinning qubits switches to manual allocation: the circuit is
rendered verbatim on the named physical qubits and rewiring is disabled.

Examples:
  braketctl run --shots 1000
  braketctl run --qubits 21,36 --wait
  braketctl run --best-gate CZ --wait`,
	RunE: func(cmd *cobra.Command, args []string) error {
		shots, _ := cmd.Flags().GetInt64("shots")
		qubitsStr, _ := cmd.Flags().GetString("qubits")
		bestGate, _ := cmd.Flags().GetString("best-gate")
		wait, _ := cmd.Flags().GetBool("wait")
		label, _ := cmd.Flags().GetString("label")

		if qubitsStr != "" && bestGate != "" {
			return fmt.Errorf("--qubits and --best-gate are mutually exclusive")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.Output.S3Bucket == "" {
			return fmt.Errorf("no results bucket configured; set output.s3_bucket (or BRAKETCTL_OUTPUT_S3_BUCKET)")
		}
		if shots == 0 {
			shots = int64(cfg.Task.Shots)
		}

		client, err := newClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		// Decide qubit allocation.
		q0, q1 := 0, 1
		manual := false
		switch {
		case qubitsStr != "":
			q0, q1, err = parseQubitPair(qubitsStr)
			if err != nil {
				return err
			}
			manual = true
		case bestGate != "":
			gate, err := device.ParseGate(bestGate)
			if err != nil {
				return err
			}
			info, err := client.GetDevice(cmd.Context(), cfg.Device.ARN)
			if err != nil {
				return err
			}
			pair, fidelity, err := info.Snapshot.Calibration.BestPair(gate)
			if err != nil {
				return err
			}
			printStep("Selected qubits %d and %d (%s fidelity %.4f)", pair.A, pair.B, gate, fidelity)
			q0, q1 = pair.A, pair.B
			manual = true
		}

		bell := circuit.Bell(q0, q1)
		arn, err := client.Submit(cmd.Context(), braket.SubmitSpec{
			Circuit:         bell,
			DeviceARN:       cfg.Device.ARN,
			Bucket:          cfg.Output.S3Bucket,
			Prefix:          cfg.Output.S3Prefix,
			Shots:           shots,
			DisableRewiring: manual,
		})
		if err != nil {
			return err
		}

		mode := storage.RewiringAutomatic
		if manual {
			mode = storage.RewiringManual
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveTask(storage.TaskRecord{
			ARN:          arn,
			DeviceARN:    cfg.Device.ARN,
			Label:        label,
			Shots:        shots,
			RewiringMode: mode,
			Status:       string(braket.StatusCreated),
			OutputBucket: cfg.Output.S3Bucket,
		}); err != nil {
			return fmt.Errorf("recording task: %w", err)
		}

		printSuccess("Submitted task %s (%s allocation, %d shots)", arn, mode, shots)
		if !wait {
			return nil
		}

		return waitAndPrint(cmd, cfg, client, store, arn)
	},
}

func waitAndPrint(cmd *cobra.Command, cfg config.Config, client braketAPI, store *storage.Store, arn string) error {
	poller := task.NewPoller(client, cfg.PollInterval())
	info, err := poller.Wait(cmd.Context(), arn, func(i *braket.TaskInfo) {
		printStep("Task is %s", i.Status)
	})
	if err != nil {
		return err
	}
	if err := store.UpdateTaskStatus(arn, string(info.Status), info.FailureReason); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("updating task record: %w", err)
	}

	switch info.Status {
	case braket.StatusCompleted:
		result, err := client.FetchResult(cmd.Context(), info)
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	case braket.StatusFailed:
		return fmt.Errorf("task failed: %s", info.FailureReason)
	default:
		printWarning("Task ended as %s", info.Status)
		return nil
	}
}

func printResult(result *braket.Result) {
	fmt.Println()
	fmt.Println(colorize(colorBold, "Measurement counts"))
	fmt.Print(renderCounts(result.MeasurementCounts))
	if len(result.MeasuredQubits) > 0 {
		fmt.Printf("measured qubits: %v\n", result.MeasuredQubits)
	}
	if result.CompiledProgram != "" {
		fmt.Println()
		fmt.Println(colorize(colorBold, "Compiled program"))
		fmt.Println(result.CompiledProgram)
	}
}

func parseQubitPair(s string) (int, int, error) {
	first, second, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("expected two comma-separated qubit indices, got %q", s)
	}
	q0, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid qubit index %q: %w", first, err)
	}
	q1, err := strconv.Atoi(strings.TrimSpace(second))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid qubit index %q: %w", second, err)
	}
	if q0 < 0 || q1 < 0 {
		return 0, 0, fmt.Errorf("qubit indices must be non-negative, got %d and %d", q0, q1)
	}
	if q0 == q1 {
		return 0, 0, fmt.Errorf("qubit indices must differ, got %d twice", q0)
	}
	return q0, q1, nil
}

func init() {
	runCmd.Flags().Int64("shots", 0, "number of shots (default from config)")
	runCmd.Flags().String("qubits", "", "pin the circuit to two physical qubits, e.g. 21,36 (manual allocation)")
	runCmd.Flags().String("best-gate", "", "pick the highest-fidelity pair for this gate (CPHASE, CZ, or XY) and pin to it")
	runCmd.Flags().Bool("wait", false, "poll until the task finishes and print results")
	runCmd.Flags().String("label", "", "free-form label stored with the task")
}

// --- task ---

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Inspect submitted quantum tasks",
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <task-arn>",
	Short: "Show the current status of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arn := args[0]

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		client, err := newClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		info, err := client.GetTask(cmd.Context(), arn)
		if err != nil {
			return err
		}

		printStatus("Status", "%s", statusColor(string(info.Status)))
		printStatus("Shots", "%d", info.Shots)
		if info.FailureReason != "" {
			printStatus("Failure", "%s", info.FailureReason)
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.UpdateTaskStatus(arn, string(info.Status), info.FailureReason); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("updating task record: %w", err)
		}
		return nil
	},
}

var taskResultCmd = &cobra.Command{
	Use:   "result <task-arn>",
	Short: "Fetch and print the results of a task",
	Long: `Fetch and print the results of a task.

With --wait, polls until the task reaches a terminal state first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arn := args[0]
		wait, _ := cmd.Flags().GetBool("wait")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		client, err := newClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if wait {
			return waitAndPrint(cmd, cfg, client, store, arn)
		}

		info, err := client.GetTask(cmd.Context(), arn)
		if err != nil {
			return err
		}
		if err := store.UpdateTaskStatus(arn, string(info.Status), info.FailureReason); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("updating task record: %w", err)
		}
		result, err := client.FetchResult(cmd.Context(), info)
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

var taskCancelCmd = &cobra.Command{
	Use:   "cancel <task-arn>",
	Short: "Request cancellation of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arn := args[0]

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		client, err := newClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		status, err := client.Cancel(cmd.Context(), arn)
		if err != nil {
			return err
		}
		printSuccess("Cancellation requested, task is %s", status)
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recently submitted tasks from the local ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		tasks, err := store.ListTasks(limit)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			fmt.Println("No tasks found.")
			return nil
		}

		for _, t := range tasks {
			fmt.Println(renderTaskLine(
				t.CreatedAt.UTC().Format("2006-01-02 15:04"),
				t.Status, t.RewiringMode, t.Shots, t.ARN,
			))
		}
		return nil
	},
}

func init() {
	taskResultCmd.Flags().Bool("wait", false, "poll until the task finishes before fetching results")
	taskListCmd.Flags().Int("limit", 20, "maximum number of tasks to list")
	taskCmd.AddCommand(taskStatusCmd)
	taskCmd.AddCommand(taskResultCmd)
	taskCmd.AddCommand(taskCancelCmd)
	taskCmd.AddCommand(taskListCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
