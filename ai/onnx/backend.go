package onnx

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/sentsim/ai"
	"github.com/poiesic/sentsim/core"
	ort "github.com/yalue/onnxruntime_go"
)

// Graph input names.
const (
	InputIDsName      = "input_ids"
	AttentionMaskName = "attention_mask"
	SegmentIDsName    = "token_type_ids"
)

// The onnxruntime environment is process-wide; backends share it by reference count.
var (
	envMu   sync.Mutex
	envRefs int
)

func acquireEnvironment(libraryPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if envRefs == 0 {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initializing onnxruntime: %w", err)
		}
	}
	envRefs++
	return nil
}

func releaseEnvironment() error {
	envMu.Lock()
	defer envMu.Unlock()

	if envRefs == 0 {
		return nil
	}
	envRefs--
	if envRefs == 0 {
		return ort.DestroyEnvironment()
	}
	return nil
}

// Backend implements ai.InferenceBackend with an ONNX Runtime session.
type Backend struct {
	session    *ort.DynamicAdvancedSession
	hidden     int
	outputName string
	logger     *slog.Logger

	mu     sync.RWMutex
	closed bool
}

var _ ai.InferenceBackend = (*Backend)(nil)

// NewBackend loads config.ModelPath into a new session.
// A nil logger selects slog.Default().
func NewBackend(config *ai.Config, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := acquireEnvironment(config.RuntimeLibraryPath); err != nil {
		return nil, err
	}

	session, err := ort.NewDynamicAdvancedSession(
		config.ModelPath,
		[]string{InputIDsName, AttentionMaskName, SegmentIDsName},
		[]string{config.OutputName},
		nil,
	)
	if err != nil {
		releaseEnvironment()
		return nil, fmt.Errorf("loading model %s: %w", config.ModelPath, err)
	}

	return &Backend{
		session:    session,
		hidden:     config.HiddenSize,
		outputName: config.OutputName,
		logger:     logger.With("component", "onnx-backend"),
	}, nil
}

// Infer runs the graph on one sequence.
func (b *Backend) Infer(ctx context.Context, input ai.ModelInput) (*ai.TokenEmbeddings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, fmt.Errorf("%w: backend is closed", core.ErrInferenceFailure)
	}

	n := input.Len()
	if n == 0 || len(input.AttentionMask) != n || len(input.SegmentIDs) != n {
		return nil, fmt.Errorf("%w: malformed input of %d tokens", core.ErrInferenceFailure, n)
	}

	inputShape := ort.NewShape(1, int64(n))
	ids, err := ort.NewTensor(inputShape, input.InputIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s tensor: %w", core.ErrInferenceFailure, InputIDsName, err)
	}
	defer ids.Destroy()

	mask, err := ort.NewTensor(inputShape, input.AttentionMask)
	if err != nil {
		return nil, fmt.Errorf("%w: %s tensor: %w", core.ErrInferenceFailure, AttentionMaskName, err)
	}
	defer mask.Destroy()

	segments, err := ort.NewTensor(inputShape, input.SegmentIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s tensor: %w", core.ErrInferenceFailure, SegmentIDsName, err)
	}
	defer segments.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(n), int64(b.hidden)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s tensor: %w", core.ErrInferenceFailure, b.outputName, err)
	}
	defer output.Destroy()

	if err := b.session.Run([]ort.Value{ids, mask, segments}, []ort.Value{output}); err != nil {
		b.logger.Error("session run failed", "tokens", n, "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrInferenceFailure, err)
	}

	data := output.GetData()
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", core.ErrInferenceFailure, b.outputName)
	}
	// The tensor memory is freed by Destroy, so the values are copied out.
	values := make([]float32, len(data))
	copy(values, data)

	return &ai.TokenEmbeddings{
		Tokens: n,
		Hidden: b.hidden,
		Values: values,
	}, nil
}

// Close destroys the session and releases the shared environment.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	err := b.session.Destroy()
	if envErr := releaseEnvironment(); err == nil {
		err = envErr
	}
	return err
}
