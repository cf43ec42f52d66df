package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
	"MacroPulse/internal/services/align"
	"MacroPulse/internal/services/transform"
	"MacroPulse/pkg/logger"
)

// columnSpec derives one output column from the raw series.
type columnSpec struct {
	Name      string
	Transform func([]models.Observation) []models.Observation
}

// seriesSpec wires one indicator: where the data comes from, how its release
// instants are derived, and which columns it produces.
type seriesSpec struct {
	SeriesID    string
	UseVintages bool
	Policy      func(loc *time.Location) align.ReleasePolicy
	Fill        align.FillPolicy
	Columns     []columnSpec
}

func identity(obs []models.Observation) []models.Observation { return obs }

var seriesSpecs = map[drepo.Indicator]seriesSpec{
	drepo.IndGDP: {
		SeriesID:    "A191RL1Q225SBEA",
		UseVintages: true,
		Policy:      align.NewFixedVintage,
		Fill:        align.FillBackfillFromFirst,
		Columns:     []columnSpec{{Name: "GDP_Growth_QoQ", Transform: identity}},
	},
	drepo.IndCPI: {
		SeriesID: "CPIAUCSL",
		Policy:   func(loc *time.Location) align.ReleasePolicy { return align.NewNextPeriodFixedDay(10, loc) },
		Fill:     align.FillForwardOnly,
		Columns: []columnSpec{
			{Name: "CPI_YoY", Transform: func(o []models.Observation) []models.Observation { return transform.PercentChange(o, 12) }},
			{Name: "CPI_MoM", Transform: func(o []models.Observation) []models.Observation { return transform.PercentChange(o, 1) }},
		},
	},
	drepo.IndPPI: {
		SeriesID: "PPIFIS",
		Policy:   func(loc *time.Location) align.ReleasePolicy { return align.NewNextPeriodFixedDay(14, loc) },
		Fill:     align.FillForwardOnly,
		Columns: []columnSpec{
			{Name: "PPI_YoY", Transform: func(o []models.Observation) []models.Observation { return transform.PercentChange(o, 12) }},
		},
	},
	drepo.IndNFP: {
		SeriesID: "PAYEMS",
		Policy: func(loc *time.Location) align.ReleasePolicy {
			return align.NewNextPeriodFirstWeekday(time.Friday, loc)
		},
		Fill: align.FillForwardOnly,
		Columns: []columnSpec{
			{Name: "NonFarm_Payrolls_Change", Transform: func(o []models.Observation) []models.Observation { return transform.Diff(o, 1) }},
		},
	},
	drepo.IndFedFunds: {
		SeriesID: "DFEDTARU",
		Policy:   align.NewSamePeriodOnChange,
		Fill:     align.FillBackfillFromFirst,
		Columns:  []columnSpec{{Name: "Fed_Funds_Rate", Transform: identity}},
	},
}

// RunResult summarizes one indicator run.
type RunResult struct {
	Indicator string   `json:"indicator"`
	Rows      int      `json:"rows"`
	Dropped   int      `json:"dropped_observations"`
	AllAbsent []string `json:"all_absent_columns,omitempty"`
}

// IndicatorPipeline runs fetch, release scheduling, and as-of alignment for
// one indicator and hands the rows to the configured backend.
type IndicatorPipeline struct {
	source    drepo.ObservationSource
	timeline  drepo.TimelineSource
	store     drepo.SeriesStore
	publisher drepo.SeriesPublisher
	metrics   drepo.Metrics
	log       *logger.Logger

	symbol   string
	location *time.Location
}

func NewIndicatorPipeline(
	source drepo.ObservationSource,
	timeline drepo.TimelineSource,
	store drepo.SeriesStore,
	publisher drepo.SeriesPublisher,
	metrics drepo.Metrics,
	log *logger.Logger,
	symbol string,
	location *time.Location,
) *IndicatorPipeline {
	return &IndicatorPipeline{
		source:    source,
		timeline:  timeline,
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		symbol:    symbol,
		location:  location,
	}
}

// Run aligns one indicator over [from, to] and stores or publishes the rows.
func (p *IndicatorPipeline) Run(ctx context.Context, ind drepo.Indicator, from, to time.Time) (*RunResult, error) {
	start := time.Now()
	defer func() {
		p.metrics.RecordLatency("indicator_run", time.Since(start).Seconds())
	}()

	spec, ok := seriesSpecs[ind]
	if !ok {
		p.metrics.RecordError("unknown_indicator")
		return nil, fmt.Errorf("unknown indicator: %s", ind)
	}

	observations, err := p.fetch(ctx, spec)
	if err != nil {
		p.metrics.RecordError("fetch")
		return nil, fmt.Errorf("fetch %s: %w", spec.SeriesID, err)
	}

	timeline, err := p.timeline.HourlyTimeline(ctx, p.symbol, from, to)
	if err != nil {
		p.metrics.RecordError("timeline")
		return nil, fmt.Errorf("timeline %s: %w", p.symbol, err)
	}
	if len(timeline) == 0 {
		p.log.Warn("empty trading timeline, nothing to align",
			logger.String("indicator", string(ind)),
			logger.String("symbol", p.symbol))
		return &RunResult{Indicator: string(ind)}, nil
	}

	policy := spec.Policy(p.location)
	result := &RunResult{Indicator: string(ind)}
	var rows []models.AlignedRow

	for _, col := range spec.Columns {
		derived := col.Transform(observations)

		events, stats, err := align.Schedule(derived, policy)
		if err != nil {
			p.metrics.RecordError("schedule")
			return nil, fmt.Errorf("schedule %s/%s: %w", ind, col.Name, err)
		}
		result.Dropped += stats.Dropped

		points, err := align.Align(events, timeline, spec.Fill)
		if err != nil {
			p.metrics.RecordError("align")
			return nil, fmt.Errorf("align %s/%s: %w", ind, col.Name, err)
		}

		if align.AllAbsent(points) {
			result.AllAbsent = append(result.AllAbsent, col.Name)
			p.log.Warn("column is absent at every timeline hour",
				logger.String("indicator", string(ind)),
				logger.String("column", col.Name),
				logger.Int("events", stats.Events))
		}

		rows = append(rows, toRows(string(ind), col.Name, points)...)
	}

	if err := p.deliver(ctx, rows); err != nil {
		p.metrics.RecordError("deliver")
		return nil, err
	}

	result.Rows = len(rows)
	p.metrics.RecordRowsAligned(string(ind), len(rows))
	p.metrics.RecordObservationsDropped(string(ind), result.Dropped)
	p.log.Info("indicator aligned",
		logger.String("indicator", string(ind)),
		logger.Int("rows", result.Rows),
		logger.Int("dropped", result.Dropped),
		logger.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (p *IndicatorPipeline) fetch(ctx context.Context, spec seriesSpec) ([]models.Observation, error) {
	if spec.UseVintages {
		obs, err := p.source.InitialReleases(ctx, spec.SeriesID)
		if err != nil {
			return nil, err
		}
		return align.SelectInitialReleases(obs), nil
	}
	return p.source.Observations(ctx, spec.SeriesID)
}

func (p *IndicatorPipeline) deliver(ctx context.Context, rows []models.AlignedRow) error {
	if p.publisher != nil {
		if err := p.publisher.PublishAligned(ctx, rows); err != nil {
			return fmt.Errorf("publish aligned: %w", err)
		}
		return nil
	}
	if err := p.store.StoreAligned(ctx, rows); err != nil {
		return fmt.Errorf("store aligned: %w", err)
	}
	return nil
}

func toRows(indicator, column string, points []models.AlignedPoint) []models.AlignedRow {
	rows := make([]models.AlignedRow, 0, len(points))
	for _, pt := range points {
		row := models.AlignedRow{Indicator: indicator, Column: column, At: pt.At}
		if pt.Valid && !math.IsNaN(pt.Value) {
			v := pt.Value
			row.Value = &v
		}
		rows = append(rows, row)
	}
	return rows
}
