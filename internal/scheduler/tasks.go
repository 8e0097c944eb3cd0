// Package scheduler queues deferred call work on asynq. The API enqueues
// follow-up tasks when a call ends without an appointment; cmd/worker
// consumes them.
package scheduler

import (
	"encoding/json"

	"callintake_backend/internal/calls/transport"

	"github.com/hibiken/asynq"
)

const TaskCallFollowUp = "calls.follow_up"

// CallFollowUpPayload carries the finished call so the worker can act on it
// without a storage round trip.
type CallFollowUpPayload struct {
	CallID string               `json:"callId"`
	Record transport.CallRecord `json:"record"`
}

func NewCallFollowUpTask(payload CallFollowUpPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCallFollowUp, data), nil
}

func ParseCallFollowUpPayload(task *asynq.Task) (CallFollowUpPayload, error) {
	var payload CallFollowUpPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CallFollowUpPayload{}, err
	}
	return payload, nil
}
