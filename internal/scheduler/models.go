// internal/scheduler/models.go
package scheduler

import (
	"context"

	"ai-post-scheduler/internal/common/retry"
	"ai-post-scheduler/internal/models"
	publishpost "ai-post-scheduler/internal/workers/publishing/publish-post"
)

// State is the runner's position in its daily cycle.
type State string

const (
	StateIdle    State = "idle"
	StateWaiting State = "waiting"
	StateRunning State = "running"
	StateStopped State = "stopped"
)

var allStates = []State{StateIdle, StateWaiting, StateRunning, StateStopped}

// Pipeline stages, used as log and metric labels.
const (
	StageCompose  = "compose"
	StageGenerate = "generate"
	StagePublish  = "publish"

	opGenerate = "generate-image"
	opPublish  = "publish-post"
)

// Item outcomes
const (
	OutcomePublished = "published"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

// Triggers that are not schedule times.
const (
	TriggerManual    = "manual"
	TriggerSmokeTest = "smoke-test"
)

type Composer interface {
	Compose(kind models.ContentKind, count int) ([]models.ContentRequest, error)
}

type Generator interface {
	Generate(ctx context.Context, req models.ContentRequest) (*models.GeneratedAsset, error)
}

type Captioner interface {
	Compose(req models.ContentRequest) models.Caption
}

type Publisher interface {
	Publish(ctx context.Context, asset *models.GeneratedAsset, caption models.Caption, postType models.PostType) (*publishpost.Result, error)
}

// Alerter is told about exhausted retries and failed smoke tests.
type Alerter interface {
	NotifyExhausted(ctx context.Context, exhausted *retry.ExhaustedError, metadata map[string]interface{})
	NotifySmokeTestFailed(ctx context.Context, err error)
}

// KindReport summarizes one content kind within a slot.
type KindReport struct {
	Kind      models.ContentKind    `json:"kind"`
	Requested int                   `json:"requested"`
	Published int                   `json:"published"`
	Failed    int                   `json:"failed"`
	Skipped   int                   `json:"skipped"`
	CapHit    bool                  `json:"capHit"`
	Results   []*publishpost.Result `json:"results,omitempty"`
}

// SlotReport summarizes one slot run.
type SlotReport struct {
	RunID   string       `json:"runId"`
	Trigger string       `json:"trigger"`
	Kinds   []KindReport `json:"kinds"`
}

func (r *SlotReport) Published() int {
	n := 0
	for _, k := range r.Kinds {
		n += k.Published
	}
	return n
}

func (r *SlotReport) Failed() int {
	n := 0
	for _, k := range r.Kinds {
		n += k.Failed
	}
	return n
}
