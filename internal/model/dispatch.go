// Package model defines shared types for the dispatch service.
package model

import (
	"fetchjson-go/internal/action"
)

// DispatchResult is the outcome of running one action through the pipeline.
type DispatchResult struct {
	// Action is the action that reached the end of the pipeline.
	Action *action.Action `json:"action"`
	// Rewritten reports that the pipeline forwarded a new action instead of
	// the one it was given.
	Rewritten bool `json:"rewritten"`
}
