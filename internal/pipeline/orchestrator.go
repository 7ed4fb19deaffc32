package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/tupyy/hwdetect-ng/internal/entity"
	"github.com/tupyy/hwdetect-ng/internal/inventory"
	"github.com/tupyy/hwdetect-ng/internal/probe"
	"github.com/tupyy/hwdetect-ng/internal/profile"
	"github.com/tupyy/hwdetect-ng/internal/synth"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one pipeline run: the best-effort config
// fragment plus the set of degraded buses for caller reporting.
type Result struct {
	Fragment  synth.Fragment
	Inventory entity.Inventory
	Degraded  map[entity.Bus]error
}

// DegradedBuses returns the degraded buses in the fixed bus order.
func (r Result) DegradedBuses() []entity.Bus {
	var out []entity.Bus
	for _, b := range entity.Buses {
		if _, ok := r.Degraded[b]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Warnings aggregates the degraded-probe reasons, nil when every probe
// succeeded.
func (r Result) Warnings() error {
	var errs *multierror.Error
	for _, b := range r.DegradedBuses() {
		errs = multierror.Append(errs, &DegradedProbeError{Bus: b, Reason: r.Degraded[b]})
	}
	return errs.ErrorOrNil()
}

// DegradedProbeError reports one bus whose probe was unavailable, timed
// out or yielded no usable records.
type DegradedProbeError struct {
	Bus    entity.Bus
	Reason error
}

func (e *DegradedProbeError) Error() string {
	return e.Bus.String() + ": " + e.Reason.Error()
}

func (e *DegradedProbeError) Unwrap() error {
	return e.Reason
}

// Orchestrator drives one probe → aggregate → match → synthesize pass.
type Orchestrator struct {
	adapters   []probe.Adapter
	aggregator *inventory.Aggregator
	matcher    *profile.Matcher
	timeout    time.Duration
	state      entity.PipelineState
}

func New(adapters []probe.Adapter, aggregator *inventory.Aggregator, matcher *profile.Matcher, timeout time.Duration) *Orchestrator {
	return &Orchestrator{
		adapters:   adapters,
		aggregator: aggregator,
		matcher:    matcher,
		timeout:    timeout,
		state:      entity.IdleState,
	}
}

func (o *Orchestrator) State() entity.PipelineState {
	return o.state
}

// Run executes one full pass. Probe failures degrade their bus and never
// abort the run; Run returns an error only on a static rule table
// contract violation, and a degraded bus never suppresses devices found
// by another probe.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	logger := zap.S().With("run_id", uuid.NewString())
	o.state = entity.IdleState

	reports, degraded := o.probe(ctx, logger)

	o.transition(entity.AggregatingState, logger)
	inv := o.aggregator.Aggregate(reports)
	for bus, reason := range degraded {
		inv.Degraded[bus] = reason.Error()
	}
	logger.Infow("inventory built", "devices", len(inv.Devices), "inconsistencies", len(inv.Inconsistencies))

	o.transition(entity.MatchingState, logger)
	matches := o.matcher.Match(inv)
	logger.Infow("profiles matched", "matches", len(matches))

	o.transition(entity.SynthesizingState, logger)
	fragment, err := synth.Synthesize(matches)
	if err != nil {
		return Result{}, err
	}

	o.transition(entity.DoneState, logger)
	return Result{Fragment: fragment, Inventory: inv, Degraded: degraded}, nil
}

// probe runs the adapters concurrently, each bounded by the per-probe
// timeout, and joins them before aggregation begins. Reports come back
// in fixed bus order regardless of completion order.
func (o *Orchestrator) probe(ctx context.Context, logger *zap.SugaredLogger) ([]probe.Report, map[entity.Bus]error) {
	o.transition(entity.ProbingState, logger)

	results := make([]entity.Result[probe.Report], len(o.adapters))
	g := new(errgroup.Group)
	for i, adapter := range o.adapters {
		i, adapter := i, adapter
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, o.timeout)
			defer cancel()
			report, err := adapter.Probe(pctx)
			results[i] = entity.Result[probe.Report]{Value: report, Error: err}
			return nil
		})
	}
	// the group error is always nil: probe failures are collected, not
	// propagated
	_ = g.Wait()

	reports := make([]probe.Report, 0, len(results))
	degraded := make(map[entity.Bus]error)
	for i, result := range results {
		bus := o.adapters[i].Bus()
		report := result.Value

		for _, malformed := range report.Malformed {
			logger.Warnw("malformed probe output line", "bus", bus, "line", malformed.Number, "raw", malformed.Raw)
		}

		switch {
		case result.Error != nil:
			// a failed probe is a self-transition: the pipeline stays in
			// probing and records the degraded bus
			degraded[bus] = result.Error
			logger.Warnw("probe degraded", "state", o.state, "bus", bus, "reason", result.Error)
		case len(report.Records) == 0:
			degraded[bus] = probe.ErrNoRecords
			logger.Warnw("probe degraded", "state", o.state, "bus", bus, "reason", probe.ErrNoRecords)
		default:
			logger.Infow("probe finished", "bus", bus, "records", len(report.Records), "malformed", len(report.Malformed))
		}
		// records parsed before a failure still count
		reports = append(reports, report)
	}
	return reports, degraded
}

func (o *Orchestrator) transition(next entity.PipelineState, logger *zap.SugaredLogger) {
	logger.Debugw("pipeline transition", "from", o.state, "to", next)
	o.state = next
}
