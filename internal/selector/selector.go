// Package selector ranks every robot in the registry against a task's
// requirements and picks the best-scoring feasible candidate.
package selector

import (
	"errors"
	"math"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"robofleet/internal/registry"
	"robofleet/internal/scoring"
	"robofleet/internal/taskreq"
)

// ErrNoFeasibleRobot is returned when the registry is empty or every
// candidate scored zero. It reflects a genuine absence of a capable
// robot and is never retried internally.
var ErrNoFeasibleRobot = errors.New("no feasible robot for requirements")

// Weights are the per-criterion weights of the weighted-sum score.
type Weights struct {
	Payload float64
	Reach   float64
	DoF     float64
}

// DefaultWeights biases selection toward payload fit.
func DefaultWeights() Weights {
	return Weights{Payload: 0.6, Reach: 0.2, DoF: 0.2}
}

// LightObjectThresholdKg triggers the light-object weight override:
// below it, selection is biased hard toward avoiding over-provisioned
// robots, regardless of caller-supplied weights.
const LightObjectThresholdKg = 1.0

// LightObjectWeights replace the caller's weights for light objects.
var LightObjectWeights = Weights{Payload: 0.9, Reach: 0.05, DoF: 0.05}

func (w Weights) sum() float64 { return w.Payload + w.Reach + w.DoF }

// normalized rescales the weights to sum to 1. Non-positive sums fall
// back to the defaults.
func (w Weights) normalized() Weights {
	s := w.sum()
	if s <= 0 {
		return DefaultWeights()
	}
	if math.Abs(s-1.0) < 1e-9 {
		return w
	}
	return Weights{Payload: w.Payload / s, Reach: w.Reach / s, DoF: w.DoF / s}
}

// Selection is the outcome of one selection request: the winner plus
// the complete ranked table for reporting.
type Selection struct {
	RequestID    string
	RobotID      string
	Score        float64
	Requirements taskreq.Requirements
	Weights      Weights
	// WeightsOverridden is set when the light-object heuristic replaced
	// the caller's weights.
	WeightsOverridden bool
	// Table holds every registry entry's breakdown, sorted by total
	// score descending (ties broken by id for determinism). It includes
	// zero-score candidates; only the winner pool excludes them.
	Table []scoring.Breakdown
}

// Selector scores registry entries against requirements.
type Selector struct {
	reg    *registry.Registry
	logger *zap.Logger
}

// New returns a selector over reg, logging through logger (nil for none).
func New(reg *registry.Registry, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{reg: reg, logger: logger}
}

// Select ranks all robots against req and returns the best feasible
// candidate. weights may be nil for the defaults; they are renormalized
// to sum to 1. When the required payload is below
// LightObjectThresholdKg the weights are forcibly replaced by
// LightObjectWeights.
//
// Insufficient payload zeroes the payload score rather than filtering
// the candidate, so its exclusion is only as strong as the payload
// weight: a caller weighting payload at zero opts out of it.
func (s *Selector) Select(req taskreq.Requirements, weights *Weights) (*Selection, error) {
	w := DefaultWeights()
	if weights != nil {
		w = weights.normalized()
	}

	overridden := false
	if req.PayloadKg < LightObjectThresholdKg {
		w = LightObjectWeights
		overridden = true
		s.logger.Info("light object detected, overriding selection weights",
			zap.Float64("required_payload_kg", req.PayloadKg),
			zap.Float64("payload_weight", w.Payload))
	}

	table := make([]scoring.Breakdown, 0, s.reg.Len())
	for _, spec := range s.reg.All() {
		b := scoring.Score(spec, req)
		b.Total = w.Payload*b.PayloadScore + w.Reach*b.ReachScore + w.DoF*b.DoFScore
		table = append(table, b)

		s.logger.Debug("scored candidate",
			zap.String("robot", spec.ID),
			zap.Float64("total", b.Total),
			zap.Float64("payload_score", b.PayloadScore),
			zap.Float64("reach_score", b.ReachScore),
			zap.Float64("dof_score", b.DoFScore),
			zap.String("payload_regime", b.PayloadRegime.String()))
	}

	sort.SliceStable(table, func(i, j int) bool {
		if table[i].Total != table[j].Total {
			return table[i].Total > table[j].Total
		}
		return table[i].Spec.ID < table[j].Spec.ID
	})

	if len(table) == 0 || table[0].Total <= 0 {
		s.logger.Warn("no feasible robot",
			zap.Int("candidates", len(table)),
			zap.Float64("required_payload_kg", req.PayloadKg))
		return nil, ErrNoFeasibleRobot
	}

	sel := &Selection{
		RequestID:         uuid.NewString(),
		RobotID:           table[0].Spec.ID,
		Score:             table[0].Total,
		Requirements:      req,
		Weights:           w,
		WeightsOverridden: overridden,
		Table:             table,
	}
	s.logger.Info("robot selected",
		zap.String("request_id", sel.RequestID),
		zap.String("robot", sel.RobotID),
		zap.Float64("score", sel.Score),
		zap.Bool("weights_overridden", overridden))
	return sel, nil
}
