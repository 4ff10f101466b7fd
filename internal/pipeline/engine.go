package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"expansion-prep/internal/config"
	"expansion-prep/internal/dimension"
	"expansion-prep/internal/feasibility"
	"expansion-prep/internal/model"
	"expansion-prep/internal/params"
	"expansion-prep/internal/temporal"
	"expansion-prep/internal/warmstart"
)

// Stage names, used as the metric label and in Snapshot.Timings.
const (
	StageAggregate   = "aggregate"
	StageDimension   = "dimension"
	StageParameters  = "parameters"
	StageWarmStart   = "warmstart"
	StageFeasibility = "feasibility"
)

type Engine struct {
	logger *zap.Logger
	now    func() time.Time
}

func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, now: time.Now}
}

// Run prepares c for the optimizer: index sets, aggregated series, derived
// parameters, warm start and bounds, then the feasibility pre-check.
// c is read only.
func (e *Engine) Run(ctx context.Context, c *model.Case, checks config.Checks) (snap *Snapshot, err error) {
	defer func() { runsTotal.WithLabelValues(outcome(err)).Inc() }()

	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid case")
	}
	log := e.logger.With(zap.String("case", c.Name))
	snap = &Snapshot{
		RunID:     uuid.New(),
		Case:      c.Name,
		CreatedAt: e.now().UTC(),
		Options:   c.Options,
		Timings:   map[string]float64{},
	}

	var agg *temporal.Result
	err = e.stage(ctx, log, snap, StageAggregate, func() error {
		agg = temporal.Aggregate(c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = e.stage(ctx, log, snap, StageDimension, func() error {
		sets, warnings, err := dimension.Build(c, agg.Durations)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			log.Warn("topology warning", zap.String("kind", string(w.Kind)), zap.String("entity", w.Entity), zap.String("detail", w.Detail))
			snap.Warnings = append(snap.Warnings, w.String())
		}
		if checks.StrictTopology && len(warnings) > 0 {
			return &dimension.StrictError{Warnings: warnings}
		}
		snap.Sets = sets
		log.Info("index sets built",
			zap.Int("periods", len(sets.Periods)),
			zap.Int("scenarios", len(sets.PeriodScenarios)),
			zap.Int("load_levels", len(sets.LoadLevels)),
			zap.Int("units", sets.Generators.Len()),
			zap.Int("lines", sets.RealLines.Len()),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = e.stage(ctx, log, snap, StageParameters, func() error {
		p, err := params.Derive(c, snap.Sets, agg)
		if err != nil {
			return err
		}
		if checks.EnforceScenarioProbability {
			if err := feasibility.CheckProbabilities(snap.Sets, p, checks.ProbabilityTolerance); err != nil {
				return err
			}
		}
		snap.Params = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	var ws *warmstart.Result
	err = e.stage(ctx, log, snap, StageWarmStart, func() error {
		var err error
		ws, err = warmstart.Run(snap.Sets, snap.Params, c.Options)
		if err != nil {
			return err
		}
		snap.Initial = ws.Initial
		snap.Bounds = ws.Bounds
		snap.IniInventory = ws.IniInventory
		snap.EnergyInflows = ws.EnergyInflows
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = e.stage(ctx, log, snap, StageFeasibility, func() error {
		err := feasibility.Check(feasibility.Input{
			Sets:          snap.Sets,
			Params:        snap.Params,
			IniInventory:  ws.IniInventory,
			EnergyInflows: ws.EnergyInflows,
		})
		var inf *feasibility.InfeasibilityError
		if errors.As(err, &inf) {
			for _, v := range inf.Violations {
				log.Error("infeasible input", zap.String("kind", v.Kind), zap.String("unit", v.Unit),
					zap.Int("period", v.Period), zap.String("scenario", v.Scenario), zap.String("load_level", v.LoadLevel),
					zap.Float64("value", v.Value), zap.Float64("limit", v.Limit))
			}
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info("case prepared", zap.String("run_id", snap.RunID.String()), zap.Int("fixed", snap.FixedCount()))
	return snap, nil
}

func (e *Engine) stage(ctx context.Context, log *zap.Logger, snap *Snapshot, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := e.now()
	err := fn()
	elapsed := e.now().Sub(start)
	stageSeconds.WithLabelValues(name).Observe(elapsed.Seconds())
	snap.Timings[name] = elapsed.Seconds()
	if err != nil {
		return errors.Wrap(err, name)
	}
	log.Info("stage done", zap.String("stage", name), zap.Duration("elapsed", elapsed))
	return nil
}

func outcome(err error) string {
	var inf *feasibility.InfeasibilityError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &inf):
		return "infeasible"
	default:
		return "error"
	}
}
