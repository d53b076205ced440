// Package scheduler runs the background maintenance work over asynq: the
// dispatcher enqueues periodic tasks and the worker executes them.
package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskConversationAbandonSweep = "conversations.abandon_sweep"

type AbandonSweepPayload struct {
	MaxIdle time.Duration `json:"maxIdle"`
}

func NewAbandonSweepTask(payload AbandonSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskConversationAbandonSweep, data), nil
}

func ParseAbandonSweepPayload(task *asynq.Task) (AbandonSweepPayload, error) {
	var payload AbandonSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AbandonSweepPayload{}, err
	}
	return payload, nil
}
