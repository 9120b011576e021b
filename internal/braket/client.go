// Package braket wraps the Amazon Braket service SDK: device lookup, quantum
// task submission with automatic or manual qubit allocation, status polling,
// and result retrieval from the task's S3 output location.
package braket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/braket"
	"github.com/aws/aws-sdk-go-v2/service/braket/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/waihoh/amazon-braket-examples/internal/circuit"
	"github.com/waihoh/amazon-braket-examples/internal/device"
)

// serviceAPI is the subset of the Braket SDK client this package uses.
// Tests substitute a fake.
type serviceAPI interface {
	GetDevice(ctx context.Context, params *braket.GetDeviceInput, optFns ...func(*braket.Options)) (*braket.GetDeviceOutput, error)
	SearchDevices(ctx context.Context, params *braket.SearchDevicesInput, optFns ...func(*braket.Options)) (*braket.SearchDevicesOutput, error)
	CreateQuantumTask(ctx context.Context, params *braket.CreateQuantumTaskInput, optFns ...func(*braket.Options)) (*braket.CreateQuantumTaskOutput, error)
	GetQuantumTask(ctx context.Context, params *braket.GetQuantumTaskInput, optFns ...func(*braket.Options)) (*braket.GetQuantumTaskOutput, error)
	CancelQuantumTask(ctx context.Context, params *braket.CancelQuantumTaskInput, optFns ...func(*braket.Options)) (*braket.CancelQuantumTaskOutput, error)
}

// objectAPI is the subset of the S3 SDK client used to fetch result documents.
type objectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Client talks to the Braket service and the S3 bucket holding task results.
type Client struct {
	svc     serviceAPI
	objects objectAPI
	logger  *slog.Logger
}

// New creates a Client from an AWS SDK config.
func New(cfg aws.Config) *Client {
	return &Client{
		svc:     braket.NewFromConfig(cfg),
		objects: s3.NewFromConfig(cfg),
		logger:  slog.Default(),
	}
}

// newWithAPI wires explicit API implementations; used by tests.
func newWithAPI(svc serviceAPI, objects objectAPI) *Client {
	return &Client{svc: svc, objects: objects, logger: slog.Default()}
}

// DeviceInfo describes a device plus its parsed capabilities snapshot.
type DeviceInfo struct {
	ARN      string
	Name     string
	Provider string
	Type     string
	Status   string
	Snapshot *device.Snapshot
}

// DeviceSummary is one row of a device search.
type DeviceSummary struct {
	ARN      string
	Name     string
	Provider string
	Type     string
	Status   string
}

// GetDevice fetches a device by ARN and parses its capabilities document.
func (c *Client) GetDevice(ctx context.Context, arn string) (*DeviceInfo, error) {
	out, err := c.svc.GetDevice(ctx, &braket.GetDeviceInput{
		DeviceArn: aws.String(arn),
	})
	if err != nil {
		return nil, fmt.Errorf("getting device %s: %w", arn, err)
	}

	snap, err := device.ParseCapabilities([]byte(aws.ToString(out.DeviceCapabilities)))
	if err != nil {
		return nil, fmt.Errorf("device %s: %w", arn, err)
	}

	return &DeviceInfo{
		ARN:      aws.ToString(out.DeviceArn),
		Name:     aws.ToString(out.DeviceName),
		Provider: aws.ToString(out.ProviderName),
		Type:     string(out.DeviceType),
		Status:   string(out.DeviceStatus),
		Snapshot: snap,
	}, nil
}

// SearchDevices lists devices, optionally filtered to QPUs that are online.
func (c *Client) SearchDevices(ctx context.Context, qpuOnly bool) ([]DeviceSummary, error) {
	var filters []types.SearchDevicesFilter
	if qpuOnly {
		filters = append(filters, types.SearchDevicesFilter{
			Name:   aws.String("deviceType"),
			Values: []string{"QPU"},
		})
	}

	var devices []DeviceSummary
	var nextToken *string
	for {
		out, err := c.svc.SearchDevices(ctx, &braket.SearchDevicesInput{
			Filters:   filters,
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("searching devices: %w", err)
		}
		for _, d := range out.Devices {
			devices = append(devices, DeviceSummary{
				ARN:      aws.ToString(d.DeviceArn),
				Name:     aws.ToString(d.DeviceName),
				Provider: aws.ToString(d.ProviderName),
				Type:     string(d.DeviceType),
				Status:   string(d.DeviceStatus),
			})
		}
		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}
	return devices, nil
}

// SubmitSpec describes one quantum task submission.
type SubmitSpec struct {
	Circuit   *circuit.Circuit
	DeviceARN string
	Bucket    string
	Prefix    string
	Shots     int64

	// DisableRewiring renders the circuit verbatim on physical qubits and
	// tells the provider compiler not to remap them (manual allocation).
	DisableRewiring bool
}

// Submit creates a quantum task and returns its ARN. The circuit is frozen;
// it cannot be modified after submission.
func (c *Client) Submit(ctx context.Context, spec SubmitSpec) (string, error) {
	if spec.Circuit == nil || spec.Circuit.Depth() == 0 {
		return "", fmt.Errorf("submit: empty circuit")
	}
	if spec.Bucket == "" {
		return "", fmt.Errorf("submit: output S3 bucket is required")
	}
	if spec.Shots <= 0 {
		return "", fmt.Errorf("submit: shots must be positive, got %d", spec.Shots)
	}

	spec.Circuit.Freeze()

	var source string
	if spec.DisableRewiring {
		source = spec.Circuit.OpenQASMVerbatim()
	} else {
		source = spec.Circuit.OpenQASM()
	}

	action, err := encodeAction(source)
	if err != nil {
		return "", err
	}
	params, err := encodeDeviceParameters(spec.Circuit.QubitCount(), spec.DisableRewiring)
	if err != nil {
		return "", err
	}

	out, err := c.svc.CreateQuantumTask(ctx, &braket.CreateQuantumTaskInput{
		Action:            aws.String(action),
		ClientToken:       aws.String(uuid.NewString()),
		DeviceArn:         aws.String(spec.DeviceARN),
		DeviceParameters:  aws.String(params),
		OutputS3Bucket:    aws.String(spec.Bucket),
		OutputS3KeyPrefix: aws.String(spec.Prefix),
		Shots:             aws.Int64(spec.Shots),
	})
	if err != nil {
		return "", fmt.Errorf("creating quantum task: %w", err)
	}

	arn := aws.ToString(out.QuantumTaskArn)
	c.logger.Info("quantum task created",
		"arn", arn, "device", spec.DeviceARN,
		"shots", spec.Shots, "rewiring_disabled", spec.DisableRewiring)
	return arn, nil
}

// Status is a quantum task lifecycle state as reported by the service.
type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusQueued     Status = "QUEUED"
	StatusRunning    Status = "RUNNING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusCancelling Status = "CANCELLING"
	StatusCancelled  Status = "CANCELLED"
)

// Terminal reports whether the task has finished (successfully or not).
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// TaskInfo is the poll-able view of a submitted quantum task.
type TaskInfo struct {
	ARN             string
	Status          Status
	FailureReason   string
	Shots           int64
	OutputBucket    string
	OutputDirectory string
	CreatedAt       time.Time
	EndedAt         time.Time
}

// GetTask fetches the current state of a quantum task.
func (c *Client) GetTask(ctx context.Context, arn string) (*TaskInfo, error) {
	out, err := c.svc.GetQuantumTask(ctx, &braket.GetQuantumTaskInput{
		QuantumTaskArn: aws.String(arn),
	})
	if err != nil {
		return nil, fmt.Errorf("getting quantum task %s: %w", arn, err)
	}

	info := &TaskInfo{
		ARN:             aws.ToString(out.QuantumTaskArn),
		Status:          Status(out.Status),
		FailureReason:   aws.ToString(out.FailureReason),
		Shots:           aws.ToInt64(out.Shots),
		OutputBucket:    aws.ToString(out.OutputS3Bucket),
		OutputDirectory: aws.ToString(out.OutputS3Directory),
	}
	if out.CreatedAt != nil {
		info.CreatedAt = *out.CreatedAt
	}
	if out.EndedAt != nil {
		info.EndedAt = *out.EndedAt
	}
	return info, nil
}

// Cancel requests cancellation of a quantum task.
func (c *Client) Cancel(ctx context.Context, arn string) (string, error) {
	out, err := c.svc.CancelQuantumTask(ctx, &braket.CancelQuantumTaskInput{
		QuantumTaskArn: aws.String(arn),
		ClientToken:    aws.String(uuid.NewString()),
	})
	if err != nil {
		return "", fmt.Errorf("cancelling quantum task %s: %w", arn, err)
	}
	return string(out.CancellationStatus), nil
}

// FetchResult downloads and parses the results document of a completed task.
func (c *Client) FetchResult(ctx context.Context, info *TaskInfo) (*Result, error) {
	if info.Status != StatusCompleted {
		return nil, fmt.Errorf("task %s is %s, results are only available for %s",
			info.ARN, info.Status, StatusCompleted)
	}

	key := info.OutputDirectory + "/results.json"
	out, err := c.objects.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(info.OutputBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching s3://%s/%s: %w", info.OutputBucket, key, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading result document: %w", err)
	}
	return ParseResult(raw)
}

// actionDoc is the OpenQASM program action document submitted with a task.
type actionDoc struct {
	BraketSchemaHeader schemaHeader `json:"braketSchemaHeader"`
	Source             string       `json:"source"`
}

type schemaHeader struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func encodeAction(source string) (string, error) {
	doc := actionDoc{
		BraketSchemaHeader: schemaHeader{
			Name:    "braket.ir.openqasm.program",
			Version: "1",
		},
		Source: source,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding task action: %w", err)
	}
	return string(data), nil
}
