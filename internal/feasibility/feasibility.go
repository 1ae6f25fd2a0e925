// Package feasibility compares required torque, velocity and
// acceleration against a robot's physical limits scaled by a safety
// margin, and reports per-joint exceedance.
package feasibility

import (
	"fmt"
	"math"

	"robofleet/internal/registry"
)

// DefaultSafetyMargin is the fraction of each physical limit treated as
// the usable ceiling, leaving headroom against model error.
const DefaultSafetyMargin = 0.9

// ratioTolerance absorbs round-off introduced when a rescaled
// trajectory is re-checked against the same limits.
const ratioTolerance = 1e-9

// Quantity names the physical quantity a Result refers to.
type Quantity string

const (
	QuantityTorque       Quantity = "torque"
	QuantityVelocity     Quantity = "velocity"
	QuantityAcceleration Quantity = "acceleration"
)

// Result is the feasibility verdict for one quantity. When the registry
// carries no limits for the quantity, Applicable is false and the
// result counts as feasible.
type Result struct {
	Quantity        Quantity
	Applicable      bool
	Feasible        bool
	Ratios          []float64
	MaxRatio        float64
	ExceededJoints  []int
	Required        []float64
	EffectiveLimits []float64
}

// Report aggregates the per-quantity results. Feasible is the logical
// AND across all applicable quantities.
type Report struct {
	Feasible     bool
	Torque       Result
	Velocity     Result
	Acceleration Result
}

// Checker validates required quantities against one robot's envelope.
type Checker struct {
	spec   *registry.RobotSpec
	margin float64
}

// NewChecker builds a checker with the given safety margin; zero means
// DefaultSafetyMargin. Margins outside (0, 1] are rejected.
func NewChecker(spec *registry.RobotSpec, margin float64) (*Checker, error) {
	if margin == 0 {
		margin = DefaultSafetyMargin
	}
	if margin <= 0 || margin > 1 {
		return nil, fmt.Errorf("safety margin must be in (0, 1], got %g", margin)
	}
	return &Checker{spec: spec, margin: margin}, nil
}

// Margin returns the effective safety margin.
func (c *Checker) Margin() float64 { return c.margin }

// CheckTorque checks a per-joint required torque vector (already
// reduced to max-|tau| for trajectories) against the torque limits.
func (c *Checker) CheckTorque(required []float64) (Result, error) {
	return c.check(QuantityTorque, required, c.spec.TorqueLimits)
}

// CheckVelocity checks joint velocities against the velocity limits,
// when the registry carries them.
func (c *Checker) CheckVelocity(qd []float64) (Result, error) {
	return c.check(QuantityVelocity, qd, c.spec.VelocityLimits)
}

// CheckAcceleration checks joint accelerations against the
// acceleration limits, when the registry carries them.
func (c *Checker) CheckAcceleration(qdd []float64) (Result, error) {
	return c.check(QuantityAcceleration, qdd, c.spec.AccelLimits)
}

// Check runs the full validation. qd and qdd may be nil to skip those
// quantities; a nil slice is reported as not applicable, not a failure.
func (c *Checker) Check(required, qd, qdd []float64) (Report, error) {
	torque, err := c.CheckTorque(required)
	if err != nil {
		return Report{}, err
	}
	velocity := notApplicable(QuantityVelocity)
	if qd != nil {
		if velocity, err = c.CheckVelocity(qd); err != nil {
			return Report{}, err
		}
	}
	accel := notApplicable(QuantityAcceleration)
	if qdd != nil {
		if accel, err = c.CheckAcceleration(qdd); err != nil {
			return Report{}, err
		}
	}
	return Report{
		Feasible:     torque.Feasible && velocity.Feasible && accel.Feasible,
		Torque:       torque,
		Velocity:     velocity,
		Acceleration: accel,
	}, nil
}

func notApplicable(q Quantity) Result {
	return Result{Quantity: q, Applicable: false, Feasible: true}
}

func (c *Checker) check(quantity Quantity, required, limits []float64) (Result, error) {
	if limits == nil {
		return notApplicable(quantity), nil
	}
	if err := c.spec.CheckVector(string(quantity), required); err != nil {
		return Result{}, err
	}

	effective := make([]float64, len(limits))
	ratios := make([]float64, len(limits))
	var exceeded []int
	maxRatio := 0.0
	for i, limit := range limits {
		effective[i] = limit * c.margin
		ratios[i] = math.Abs(required[i]) / effective[i]
		if ratios[i] > maxRatio {
			maxRatio = ratios[i]
		}
		if ratios[i] > 1+ratioTolerance {
			exceeded = append(exceeded, i)
		}
	}
	return Result{
		Quantity:        quantity,
		Applicable:      true,
		Feasible:        len(exceeded) == 0,
		Ratios:          ratios,
		MaxRatio:        maxRatio,
		ExceededJoints:  exceeded,
		Required:        required,
		EffectiveLimits: effective,
	}, nil
}
