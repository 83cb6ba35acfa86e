// Package transform provides the script transform executor. User scripts
// run in an embedded expression sandbox, never in-process native code.
package transform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/hookflow/hookflow/pkg/models"
)

const defaultScriptTimeout = 5 * time.Second

// Helper functions available to every script.
var scriptFunctions = []expr.Option{
	// merge(a, b) returns a shallow copy of map a with map b's keys laid
	// over it, the usual way to extend the incoming data object.
	expr.Function("merge", func(params ...any) (any, error) {
		if len(params) != 2 {
			return nil, fmt.Errorf("merge expects 2 arguments, got %d", len(params))
		}

		base, ok := params[0].(map[string]any)
		if !ok {
			return nil, errors.New("merge expects map arguments")
		}

		overlay, ok := params[1].(map[string]any)
		if !ok {
			return nil, errors.New("merge expects map arguments")
		}

		merged := make(map[string]any, len(base)+len(overlay))
		for k, v := range base {
			merged[k] = v
		}

		for k, v := range overlay {
			merged[k] = v
		}

		return merged, nil
	}),
}

// TransformError wraps a script failure. It halts the run when returned.
type TransformError struct {
	Err error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform failed: %v", e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// TransformNode evaluates a user-supplied expression against the current
// data and makes its result the new current data. The script sees exactly
// one input, `data`, and must produce a JSON-serializable value.
type TransformNode struct {
	id      string
	script  string
	program *vm.Program
	timeout time.Duration
}

// NewTransformNode compiles the configured script. Compilation errors are
// surfaced at creation so invalid scripts fail the step before evaluation.
func NewTransformNode(id string, config map[string]any) (*TransformNode, error) {
	script, ok := config["script"].(string)
	if !ok || script == "" {
		return nil, errors.New("missing required field 'script'")
	}

	timeout := defaultScriptTimeout
	if seconds, ok := config["timeout"].(float64); ok && seconds > 0 {
		timeout = time.Duration(seconds * float64(time.Second))
	}

	opts := []expr.Option{
		expr.Env(map[string]any{}),
		expr.AllowUndefinedVariables(),
	}
	opts = append(opts, scriptFunctions...)

	program, err := expr.Compile(script, opts...)
	if err != nil {
		return nil, &TransformError{Err: fmt.Errorf("script compilation: %w", err)}
	}

	return &TransformNode{
		id:      id,
		script:  script,
		program: program,
		timeout: timeout,
	}, nil
}

func (n *TransformNode) ID() string {
	return n.id
}

func (n *TransformNode) Type() string {
	return "transform:script"
}

// Execute evaluates the script with a hard timeout. Arbitrary user scripts
// must not stall the run or crash the host.
func (n *TransformNode) Execute(ctx context.Context, execCtx *models.ExecutionContext) (any, error) {
	evalCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	type evalResult struct {
		value any
		err   error
	}

	resultCh := make(chan evalResult, 1)

	go func() {
		value, err := expr.Run(n.program, map[string]any{
			"data": execCtx.CurrentData,
		})
		resultCh <- evalResult{value: value, err: err}
	}()

	select {
	case <-evalCtx.Done():
		return nil, &TransformError{Err: fmt.Errorf("script timed out after %s", n.timeout)}
	case result := <-resultCh:
		if result.err != nil {
			return nil, &TransformError{Err: result.err}
		}

		if _, err := json.Marshal(result.value); err != nil {
			return nil, &TransformError{Err: fmt.Errorf("script returned non-serializable data: %w", err)}
		}

		return result.value, nil
	}
}
