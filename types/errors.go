package types

import "fmt"

// ConfigurationError reports an unsupported configuration (field rank/shape,
// form structure). Raised eagerly at construction, never at apply time.
type ConfigurationError struct {
	What string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.What)
}

func ConfigErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{What: fmt.Sprintf(format, args...)}
}

// TopologyError reports an ill-formed patch, e.g. a vertex with zero
// incident cells.
type TopologyError struct {
	Vertex int
	What   string
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("topology error at vertex %d: %s", e.Vertex, e.What)
}

// SingularPatchError reports a failed local factorization or solve for a
// non-degenerate patch, tagged with the patch id.
type SingularPatchError struct {
	Patch int
	What  string
}

func (e *SingularPatchError) Error() string {
	return fmt.Sprintf("singular patch operator for patch %d: %s", e.Patch, e.What)
}

// TransferConsistencyError reports a prolongation/restriction operator that
// fails an exactness check, e.g. constant-field reproduction.
type TransferConsistencyError struct {
	What string
}

func (e *TransferConsistencyError) Error() string {
	return fmt.Sprintf("transfer operator inconsistency: %s", e.What)
}

// SolverBackendFailure surfaces an opaque failure from a delegated linear
// solve as a diverged/failed status. It is always fatal to the apply call
// that triggered it; the outer solver decides whether to retry.
type SolverBackendFailure struct {
	Namespace string
	Status    string
}

func (e *SolverBackendFailure) Error() string {
	return fmt.Sprintf("linear solve backend %q failed: %s", e.Namespace, e.Status)
}
