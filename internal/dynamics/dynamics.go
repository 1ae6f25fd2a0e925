// Package dynamics estimates the joint torques a trajectory demands:
// tau = M(q)*qdd + C(q, qd)*qd + G(q).
//
// When the robot spec carries a per-link dynamic model the estimate
// comes from a full recursive Newton-Euler pass. Without one, a
// degraded analytic fallback is used; its result is tagged
// SourceApproximate and is NOT fit for production torque certification.
// Callers must check Estimate.Source before trusting safety-critical
// feasibility derived from it.
package dynamics

import (
	"context"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"robofleet/internal/registry"
)

// Gravity is the gravitational acceleration used by both model paths.
const Gravity = 9.81

// Fallback model constants: a nominal link length and a linear viscous
// damping coefficient, per joint.
const (
	fallbackLinkLength = 0.4 // m
	fallbackDamping    = 0.5 // N*m*s/rad
)

// Source tags which model path produced a torque estimate.
type Source int

const (
	// SourceLinkModel marks the full recursive Newton-Euler path.
	SourceLinkModel Source = iota
	// SourceApproximate marks the bootstrapping fallback model.
	SourceApproximate
)

func (s Source) String() string {
	if s == SourceLinkModel {
		return "link_model"
	}
	return "approximate"
}

// JointState is one trajectory sample: position, velocity and
// acceleration per joint, in rad, rad/s and rad/s^2.
type JointState struct {
	Q   []float64
	Qd  []float64
	Qdd []float64
}

// Estimate is a required-torque vector tagged with the model path that
// produced it.
type Estimate struct {
	Tau    []float64
	Source Source
}

// Estimator computes required torques for one robot.
type Estimator struct {
	spec   *registry.RobotSpec
	logger *zap.Logger
}

// NewEstimator returns an estimator for spec, logging through logger
// (nil for none).
func NewEstimator(spec *registry.RobotSpec, logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{spec: spec, logger: logger}
}

// RequiredTorque computes the torque vector for a single joint state.
// Vector lengths must equal the robot's DoF; mismatches are fatal for
// the call, never truncated or padded.
func (e *Estimator) RequiredTorque(state JointState) (Estimate, error) {
	if err := e.checkState(state); err != nil {
		return Estimate{}, err
	}
	if e.spec.HasDynamicModel() {
		return Estimate{Tau: e.rnea(state), Source: SourceLinkModel}, nil
	}
	e.logger.Debug("no dynamic model, using approximate torque estimate",
		zap.String("robot", e.spec.ID))
	return Estimate{Tau: e.fallback(state), Source: SourceApproximate}, nil
}

// TorqueTrajectory evaluates every sample of a trajectory. Samples are
// independent (no inter-timestep state), so they are evaluated
// concurrently over the immutable spec.
func (e *Estimator) TorqueTrajectory(ctx context.Context, states []JointState) ([]Estimate, error) {
	out := make([]Estimate, len(states))
	g, _ := errgroup.WithContext(ctx)
	for i, st := range states {
		i, st := i, st
		g.Go(func() error {
			est, err := e.RequiredTorque(st)
			if err != nil {
				return err
			}
			out[i] = est
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// MaxAbsTorque reduces a torque trajectory to the per-joint maximum
// absolute value.
func MaxAbsTorque(estimates []Estimate) []float64 {
	if len(estimates) == 0 {
		return nil
	}
	max := make([]float64, len(estimates[0].Tau))
	for _, est := range estimates {
		for j, tau := range est.Tau {
			if a := math.Abs(tau); a > max[j] {
				max[j] = a
			}
		}
	}
	return max
}

// TrajectorySource is the weakest source across a trajectory: one
// approximate sample degrades the whole estimate.
func TrajectorySource(estimates []Estimate) Source {
	for _, est := range estimates {
		if est.Source == SourceApproximate {
			return SourceApproximate
		}
	}
	return SourceLinkModel
}

func (e *Estimator) checkState(state JointState) error {
	if err := e.spec.CheckVector("q", state.Q); err != nil {
		return err
	}
	if err := e.spec.CheckVector("qd", state.Qd); err != nil {
		return err
	}
	return e.spec.CheckVector("qdd", state.Qdd)
}

// rnea runs the recursive Newton-Euler pass over the per-link model.
// Gravity enters through the base-acceleration trick: the base frame is
// given an upward acceleration of g, which propagates outward as the
// gravity term of every link.
func (e *Estimator) rnea(state JointState) []float64 {
	n := e.spec.DoF
	links := e.spec.Links

	rot := make([]mat3, n)    // rotation of frame i in frame i-1
	origin := make([]vec3, n) // origin of frame i in frame i-1
	for i, l := range links {
		rot[i] = linkRotation(l.Alpha, l.Theta+state.Q[i])
		origin[i] = linkOrigin(l.A, l.Alpha, l.D)
	}

	zAxis := vec3{0, 0, 1}

	// Outward pass: angular velocity/acceleration and linear
	// acceleration per link, then the net force/moment at each COM.
	w := make([]vec3, n)
	wd := make([]vec3, n)
	vd := make([]vec3, n)
	force := make([]vec3, n)
	moment := make([]vec3, n)

	prevW, prevWd := vec3{}, vec3{}
	prevVd := vec3{0, 0, Gravity}
	for i := 0; i < n; i++ {
		wPrev := rot[i].mulT(prevW)
		wdPrev := rot[i].mulT(prevWd)

		w[i] = wPrev.add(zAxis.scale(state.Qd[i]))
		wd[i] = wdPrev.add(wPrev.cross(zAxis.scale(state.Qd[i]))).add(zAxis.scale(state.Qdd[i]))

		vd[i] = rot[i].mulT(
			prevWd.cross(origin[i]).
				add(prevW.cross(prevW.cross(origin[i]))).
				add(prevVd))

		com := vec3(links[i].COM)
		vdCOM := wd[i].cross(com).
			add(w[i].cross(w[i].cross(com))).
			add(vd[i])

		force[i] = vdCOM.scale(links[i].MassKg)
		inertial := vec3{
			links[i].Inertia[0] * wd[i][0],
			links[i].Inertia[1] * wd[i][1],
			links[i].Inertia[2] * wd[i][2],
		}
		momentOfInertia := vec3{
			links[i].Inertia[0] * w[i][0],
			links[i].Inertia[1] * w[i][1],
			links[i].Inertia[2] * w[i][2],
		}
		moment[i] = inertial.add(w[i].cross(momentOfInertia))

		prevW, prevWd, prevVd = w[i], wd[i], vd[i]
	}

	// Inward pass: propagate forces and moments back to the base and
	// project each joint's moment onto its axis.
	tau := make([]float64, n)
	f := vec3{}
	nMoment := vec3{}
	for i := n - 1; i >= 0; i-- {
		com := vec3(links[i].COM)
		var fNext, nNext vec3
		if i < n-1 {
			fNext = rot[i+1].mul(f)
			nNext = rot[i+1].mul(nMoment).add(origin[i+1].cross(fNext))
		}
		f = fNext.add(force[i])
		nMoment = moment[i].add(nNext).add(com.cross(force[i]))
		tau[i] = nMoment[2]
	}
	return tau
}

// fallback approximates each joint's torque from the robot's total
// mass: equal per-link mass, a nominal link length, linear viscous
// damping and a sin(q) gravity term. Bootstrapping only; see the
// package comment.
func (e *Estimator) fallback(state JointState) []float64 {
	n := e.spec.DoF
	linkMass := e.spec.MassTotalKg / float64(n)
	inertia := linkMass * fallbackLinkLength * fallbackLinkLength

	tau := make([]float64, n)
	for i := 0; i < n; i++ {
		tau[i] = inertia*state.Qdd[i] +
			fallbackDamping*state.Qd[i] +
			linkMass*Gravity*fallbackLinkLength*math.Sin(state.Q[i])
	}
	return tau
}
