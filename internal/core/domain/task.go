package domain

import (
	"encoding/json"
	"fmt"
)

// Task is a queued request to build a resource chain for a job.
type Task struct {
	// Job is the record updated as the task progresses.
	Job Job

	// Params describes the target resource.
	Params Params

	// Force rebuilds resources even when a result is cached.
	Force bool
}

type taskWire struct {
	Job    Job             `json:"job"`
	Kind   ResourceKind    `json:"kind"`
	Params json.RawMessage `json:"params"`
	Force  bool            `json:"force"`
}

// MarshalJSON tags the params with their kind so they decode to the right type.
func (t Task) MarshalJSON() ([]byte, error) {
	if t.Params == nil {
		return nil, fmt.Errorf("%w: task has no params", ErrInvalidInput)
	}
	params, err := json.Marshal(t.Params)
	if err != nil {
		return nil, err
	}
	return json.Marshal(taskWire{Job: t.Job, Kind: t.Params.Kind(), Params: params, Force: t.Force})
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var w taskWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p, err := DecodeParams(w.Kind, w.Params)
	if err != nil {
		return err
	}
	*t = Task{Job: w.Job, Params: p, Force: w.Force}
	return nil
}
