package dynamics

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"robofleet/internal/registry"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fallbackSpec() *registry.RobotSpec {
	return &registry.RobotSpec{
		ID: "approx", Manufacturer: "Acme", DoF: 2,
		PayloadKg: 5, ReachM: 0.8,
		TorqueLimits: []float64{100, 100},
		MassTotalKg:  20,
	}
}

// pendulumSpec is a single horizontal-axis link: alpha = pi/2 tilts the
// joint axis perpendicular to gravity, so the static torque has the
// closed form m*g*lc*cos(q).
func pendulumSpec(mass, lc, izz float64) *registry.RobotSpec {
	return &registry.RobotSpec{
		ID: "pendulum", Manufacturer: "Acme", DoF: 1,
		PayloadKg: 1, ReachM: 0.5,
		TorqueLimits: []float64{100},
		MassTotalKg:  mass,
		Links: []registry.Link{
			{MassKg: mass, COM: [3]float64{lc, 0, 0}, Inertia: [3]float64{0, 0, izz}, Alpha: math.Pi / 2},
		},
	}
}

func TestRequiredTorque_FallbackFormula(t *testing.T) {
	e := NewEstimator(fallbackSpec(), nil)

	est, err := e.RequiredTorque(JointState{
		Q:   []float64{0, math.Pi / 2},
		Qd:  []float64{1, 0},
		Qdd: []float64{2, 0},
	})
	require.NoError(t, err)
	assert.Equal(t, SourceApproximate, est.Source)

	// link mass 10 kg, inertia 10*0.4^2 = 1.6
	// joint 0: 1.6*2 + 0.5*1 + sin(0) = 3.7
	assert.InDelta(t, 3.7, est.Tau[0], 1e-12)
	// joint 1: gravity only: 10*9.81*0.4*sin(pi/2) = 39.24
	assert.InDelta(t, 39.24, est.Tau[1], 1e-9)
}

func TestRequiredTorque_DimensionMismatch(t *testing.T) {
	e := NewEstimator(fallbackSpec(), nil)

	_, err := e.RequiredTorque(JointState{
		Q:   []float64{0},
		Qd:  []float64{0, 0},
		Qdd: []float64{0, 0},
	})
	require.Error(t, err)
	var dim *registry.DimensionError
	require.True(t, errors.As(err, &dim))
	assert.Equal(t, 2, dim.Want)
	assert.Equal(t, 1, dim.Got)
}

func TestRequiredTorque_LinkModelGravity(t *testing.T) {
	const mass, lc = 2.0, 0.3
	e := NewEstimator(pendulumSpec(mass, lc, 0), nil)

	for _, tc := range []struct {
		q    float64
		want float64
	}{
		{0, mass * Gravity * lc},          // horizontal link, full gravity moment
		{math.Pi / 2, 0},                  // vertical link, no moment arm
		{math.Pi / 3, mass * Gravity * lc * 0.5},
	} {
		est, err := e.RequiredTorque(JointState{
			Q: []float64{tc.q}, Qd: []float64{0}, Qdd: []float64{0},
		})
		require.NoError(t, err)
		assert.Equal(t, SourceLinkModel, est.Source)
		assert.InDelta(t, tc.want, est.Tau[0], 1e-9, "q=%g", tc.q)
	}
}

func TestRequiredTorque_LinkModelInertial(t *testing.T) {
	const mass, lc, izz = 2.0, 0.3, 0.05
	e := NewEstimator(pendulumSpec(mass, lc, izz), nil)

	// tau = (Izz + m*lc^2)*qdd + m*g*lc*cos(q)
	est, err := e.RequiredTorque(JointState{
		Q: []float64{0}, Qd: []float64{0}, Qdd: []float64{1.5},
	})
	require.NoError(t, err)
	want := (izz+mass*lc*lc)*1.5 + mass*Gravity*lc
	assert.InDelta(t, want, est.Tau[0], 1e-9)
}

func TestTorqueTrajectory(t *testing.T) {
	e := NewEstimator(fallbackSpec(), nil)

	states := []JointState{
		{Q: []float64{0, 0}, Qd: []float64{0, 0}, Qdd: []float64{1, -4}},
		{Q: []float64{0, 0}, Qd: []float64{0, 0}, Qdd: []float64{-3, 2}},
		{Q: []float64{0, 0}, Qd: []float64{0, 0}, Qdd: []float64{2, 1}},
	}
	ests, err := e.TorqueTrajectory(context.Background(), states)
	require.NoError(t, err)
	require.Len(t, ests, 3)

	// Batch evaluation matches independent per-sample evaluation.
	for i, st := range states {
		single, err := e.RequiredTorque(st)
		require.NoError(t, err)
		assert.Equal(t, single.Tau, ests[i].Tau, "sample %d", i)
	}

	// Per-joint max of |tau|: inertia 1.6 => |tau| rows are
	// (1.6, 6.4), (4.8, 3.2), (3.2, 1.6).
	maxTau := MaxAbsTorque(ests)
	assert.InDelta(t, 4.8, maxTau[0], 1e-12)
	assert.InDelta(t, 6.4, maxTau[1], 1e-12)

	assert.Equal(t, SourceApproximate, TrajectorySource(ests))
}

func TestTorqueTrajectory_PropagatesDimensionError(t *testing.T) {
	e := NewEstimator(fallbackSpec(), nil)

	_, err := e.TorqueTrajectory(context.Background(), []JointState{
		{Q: []float64{0, 0}, Qd: []float64{0, 0}, Qdd: []float64{1, 1}},
		{Q: []float64{0}, Qd: []float64{0}, Qdd: []float64{1}},
	})
	var dim *registry.DimensionError
	assert.True(t, errors.As(err, &dim))
}
