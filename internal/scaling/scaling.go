// Package scaling converts an abstract acceleration intent (a
// percentage of the robot's acceleration limit) into a robot-specific,
// physically safe acceleration profile.
//
// The correction is a single-shot linear scale by the reciprocal of the
// worst per-joint overload. That factor is exact for the inertial
// torque term only: gravity and damping do not scale with acceleration,
// so for poses with significant gravity load the scaled result can
// remain marginally infeasible. This is a documented approximation, not
// an iterative re-solve.
package scaling

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"robofleet/internal/dynamics"
	"robofleet/internal/feasibility"
	"robofleet/internal/registry"
)

// DefaultIntentPercent is the acceleration intent assumed when a task
// does not state one.
const DefaultIntentPercent = 50.0

// State is the robot state the torque estimate is evaluated at. A nil
// State means rest: all joints at zero position and velocity.
type State struct {
	Q  []float64
	Qd []float64
}

// ScaledParameters is the final safe parameter set returned to the
// caller and consumed downstream by the execution layer.
type ScaledParameters struct {
	RequestID     string
	RobotID       string
	IntentPercent float64
	// DesiredAccel is the acceleration vector the intent asked for.
	DesiredAccel []float64
	// ActualAccel is the vector after scaling; equal to DesiredAccel
	// when no scaling was necessary.
	ActualAccel    []float64
	RequiredTorque []float64
	// TorqueSource tags the dynamics model path; SourceApproximate
	// results are not fit for production torque certification.
	TorqueSource dynamics.Source
	ScaleFactor  float64
	WasScaled    bool
	Report       feasibility.Report
}

// Scaler validates and attenuates acceleration intents for one robot.
type Scaler struct {
	spec      *registry.RobotSpec
	estimator *dynamics.Estimator
	checker   *feasibility.Checker
	logger    *zap.Logger
}

// NewScaler builds a scaler for spec with the given safety margin (zero
// for the default) and logger (nil for none).
func NewScaler(spec *registry.RobotSpec, margin float64, logger *zap.Logger) (*Scaler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	checker, err := feasibility.NewChecker(spec, margin)
	if err != nil {
		return nil, err
	}
	return &Scaler{
		spec:      spec,
		estimator: dynamics.NewEstimator(spec, logger),
		checker:   checker,
		logger:    logger,
	}, nil
}

// Scale converts intentPercent (0-100) of the robot's acceleration
// limit into a feasible acceleration vector. state may be nil for rest.
// Robots without acceleration limits in the registry cannot express a
// percentage intent and are rejected.
func (s *Scaler) Scale(intentPercent float64, state *State) (*ScaledParameters, error) {
	if intentPercent < 0 || intentPercent > 100 {
		return nil, fmt.Errorf("acceleration intent must be in [0, 100], got %g", intentPercent)
	}
	if s.spec.AccelLimits == nil {
		return nil, fmt.Errorf("robot %s has no acceleration limits, cannot interpret percentage intent", s.spec.ID)
	}

	q, qd, err := s.resolveState(state)
	if err != nil {
		return nil, err
	}

	desired := make([]float64, s.spec.DoF)
	for i, limit := range s.spec.AccelLimits {
		desired[i] = intentPercent / 100 * limit
	}

	est, err := s.estimator.RequiredTorque(dynamics.JointState{Q: q, Qd: qd, Qdd: desired})
	if err != nil {
		return nil, err
	}

	report, err := s.checker.Check(est.Tau, qd, desired)
	if err != nil {
		return nil, err
	}

	params := &ScaledParameters{
		RequestID:      uuid.NewString(),
		RobotID:        s.spec.ID,
		IntentPercent:  intentPercent,
		DesiredAccel:   desired,
		RequiredTorque: est.Tau,
		TorqueSource:   est.Source,
		Report:         report,
	}
	params.ScaleFactor, params.WasScaled = scaleFactor(report)
	params.ActualAccel = scaled(desired, params.ScaleFactor)

	s.logger.Info("acceleration intent validated",
		zap.String("request_id", params.RequestID),
		zap.String("robot", s.spec.ID),
		zap.Float64("intent_percent", intentPercent),
		zap.Float64("scale_factor", params.ScaleFactor),
		zap.Bool("was_scaled", params.WasScaled),
		zap.String("torque_source", est.Source.String()))
	return params, nil
}

// ScaleTrajectory validates a whole trajectory and, when infeasible,
// scales its acceleration profile by a single factor. The torque
// trajectory is reduced to a per-joint maximum before checking.
func (s *Scaler) ScaleTrajectory(ctx context.Context, states []dynamics.JointState) (*ScaledParameters, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("empty trajectory")
	}
	estimates, err := s.estimator.TorqueTrajectory(ctx, states)
	if err != nil {
		return nil, err
	}
	maxTau := dynamics.MaxAbsTorque(estimates)

	maxQd := make([]float64, s.spec.DoF)
	maxQdd := make([]float64, s.spec.DoF)
	for _, st := range states {
		for j := 0; j < s.spec.DoF; j++ {
			if a := abs(st.Qd[j]); a > maxQd[j] {
				maxQd[j] = a
			}
			if a := abs(st.Qdd[j]); a > maxQdd[j] {
				maxQdd[j] = a
			}
		}
	}

	report, err := s.checker.Check(maxTau, maxQd, maxQdd)
	if err != nil {
		return nil, err
	}

	params := &ScaledParameters{
		RequestID:      uuid.NewString(),
		RobotID:        s.spec.ID,
		DesiredAccel:   maxQdd,
		RequiredTorque: maxTau,
		TorqueSource:   dynamics.TrajectorySource(estimates),
		Report:         report,
	}
	params.ScaleFactor, params.WasScaled = scaleFactor(report)
	params.ActualAccel = scaled(maxQdd, params.ScaleFactor)
	return params, nil
}

func (s *Scaler) resolveState(state *State) (q, qd []float64, err error) {
	if state == nil {
		return make([]float64, s.spec.DoF), make([]float64, s.spec.DoF), nil
	}
	if err := s.spec.CheckVector("q", state.Q); err != nil {
		return nil, nil, err
	}
	if err := s.spec.CheckVector("qd", state.Qd); err != nil {
		return nil, nil, err
	}
	return state.Q, state.Qd, nil
}

// scaleFactor derives the uniform correction from a feasibility report:
// 1.0 when feasible, otherwise the reciprocal of the worst per-joint
// overload across the applicable quantities.
func scaleFactor(report feasibility.Report) (factor float64, wasScaled bool) {
	if report.Feasible {
		return 1.0, false
	}
	worst := 0.0
	for _, res := range []feasibility.Result{report.Torque, report.Velocity, report.Acceleration} {
		if res.Applicable && res.MaxRatio > worst {
			worst = res.MaxRatio
		}
	}
	if worst <= 1 {
		return 1.0, false
	}
	return 1.0 / worst, true
}

func scaled(v []float64, factor float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * factor
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
