package usecase

import (
	"context"
	"fmt"
	"time"

	drepo "MacroPulse/internal/domain/repository"
	"MacroPulse/pkg/logger"
	"MacroPulse/pkg/queue"
)

const (
	TypeIndicatorRun = "indicator_run"
	TypeSentimentRun = "sentiment_run"
)

// IndicatorRunPayload is the queue payload for one indicator run. From and To
// are RFC3339; empty values fall back to the configured range.
type IndicatorRunPayload struct {
	Indicator string `json:"indicator"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
}

// SentimentRunPayload is the queue payload for a sentiment run.
type SentimentRunPayload struct {
	Subjects []string `json:"subjects,omitempty"`
	From     string   `json:"from,omitempty"`
	To       string   `json:"to,omitempty"`
}

// RunDefaults carries the configured range and subjects applied when a
// payload leaves them empty.
type RunDefaults struct {
	From     time.Time
	To       time.Time
	Subjects []string
}

func (d RunDefaults) resolve(from, to string) (time.Time, time.Time, error) {
	f, t := d.From, d.To
	var err error
	if from != "" {
		if f, err = time.Parse(time.RFC3339, from); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse from: %w", err)
		}
	}
	if to != "" {
		if t, err = time.Parse(time.RFC3339, to); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse to: %w", err)
		}
	}
	if !t.After(f) {
		return time.Time{}, time.Time{}, fmt.Errorf("empty range: from=%s to=%s", f.Format(time.RFC3339), t.Format(time.RFC3339))
	}
	return f, t, nil
}

// IndicatorRunJob consumes indicator_run messages from the queue.
type IndicatorRunJob struct {
	pipeline *IndicatorPipeline
	defaults RunDefaults
	log      *logger.Logger
}

func NewIndicatorRunJob(pipeline *IndicatorPipeline, defaults RunDefaults, log *logger.Logger) *IndicatorRunJob {
	return &IndicatorRunJob{pipeline: pipeline, defaults: defaults, log: log}
}

func (j *IndicatorRunJob) Name() string { return "indicator-run" }
func (j *IndicatorRunJob) Type() string { return TypeIndicatorRun }

func (j *IndicatorRunJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[IndicatorRunPayload](payload)
	if err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}

	ind, ok := drepo.NormalizeIndicator(p.Indicator)
	if !ok {
		return fmt.Errorf("unknown indicator: %q", p.Indicator)
	}
	from, to, err := j.defaults.resolve(p.From, p.To)
	if err != nil {
		return err
	}

	res, err := j.pipeline.Run(ctx, ind, from, to)
	if err != nil {
		return err
	}
	j.log.Info("indicator job done",
		logger.String("indicator", res.Indicator),
		logger.Int("rows", res.Rows))
	return nil
}

// SentimentRunJob consumes sentiment_run messages from the queue.
type SentimentRunJob struct {
	pipeline *SentimentPipeline
	defaults RunDefaults
	log      *logger.Logger
}

func NewSentimentRunJob(pipeline *SentimentPipeline, defaults RunDefaults, log *logger.Logger) *SentimentRunJob {
	return &SentimentRunJob{pipeline: pipeline, defaults: defaults, log: log}
}

func (j *SentimentRunJob) Name() string { return "sentiment-run" }
func (j *SentimentRunJob) Type() string { return TypeSentimentRun }

func (j *SentimentRunJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[SentimentRunPayload](payload)
	if err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}

	subjects := p.Subjects
	if len(subjects) == 0 {
		subjects = j.defaults.Subjects
	}
	from, to, err := j.defaults.resolve(p.From, p.To)
	if err != nil {
		return err
	}

	res, err := j.pipeline.Run(ctx, subjects, from, to)
	if err != nil {
		return err
	}
	j.log.Info("sentiment job done",
		logger.Strings("subjects", res.Subjects),
		logger.Int("buckets", res.Buckets))
	return nil
}

// Runner enqueues pipeline work onto the queue.
type Runner struct {
	queue queue.QueueService
	log   *logger.Logger
}

func NewRunner(q queue.QueueService, log *logger.Logger) *Runner {
	return &Runner{queue: q, log: log}
}

// EnqueueIndicator schedules one indicator run.
func (r *Runner) EnqueueIndicator(ctx context.Context, ind drepo.Indicator, from, to string) error {
	return r.queue.PublishMessage(ctx, TypeIndicatorRun, IndicatorRunPayload{
		Indicator: string(ind),
		From:      from,
		To:        to,
	})
}

// EnqueueSentiment schedules a sentiment run.
func (r *Runner) EnqueueSentiment(ctx context.Context, subjects []string, from, to string) error {
	return r.queue.PublishMessage(ctx, TypeSentimentRun, SentimentRunPayload{
		Subjects: subjects,
		From:     from,
		To:       to,
	})
}

// EnqueueAll schedules every indicator plus a sentiment run.
func (r *Runner) EnqueueAll(ctx context.Context, from, to string) error {
	for _, ind := range drepo.AllIndicators() {
		if err := r.EnqueueIndicator(ctx, ind, from, to); err != nil {
			return fmt.Errorf("enqueue %s: %w", ind, err)
		}
	}
	if err := r.EnqueueSentiment(ctx, nil, from, to); err != nil {
		return fmt.Errorf("enqueue sentiment: %w", err)
	}
	r.log.Info("full run enqueued")
	return nil
}
