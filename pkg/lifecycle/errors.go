package lifecycle

import (
	"errors"
	"fmt"

	"github.com/hookflow/hookflow/pkg/models"
)

// FlowInactiveError rejects intake for a flow that is paused or still a
// draft. The stored status travels with the error so the webhook caller
// sees it.
type FlowInactiveError struct {
	Status models.FlowStatus
}

func (e *FlowInactiveError) Error() string {
	return fmt.Sprintf("flow is not active (status %s)", e.Status)
}

// ValidationError rejects intake when the inbound payload does not match
// the source node's declared schema. No records exist for rejected
// payloads.
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AsFlowInactive extracts a FlowInactiveError from an error chain.
func AsFlowInactive(err error) (*FlowInactiveError, bool) {
	var inactive *FlowInactiveError
	if errors.As(err, &inactive) {
		return inactive, true
	}

	return nil, false
}

// AsValidation extracts a ValidationError from an error chain.
func AsValidation(err error) (*ValidationError, bool) {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation, true
	}

	return nil, false
}
