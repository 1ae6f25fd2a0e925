package scaling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robofleet/internal/dynamics"
	"robofleet/internal/registry"
)

// testSpec is a 1-DoF robot with a fallback dynamic model: link mass
// 10 kg, effective inertia 10*0.4^2 = 1.6. At rest the required torque
// is purely inertial, tau = 1.6*qdd.
func testSpec(torqueLimit float64) *registry.RobotSpec {
	return &registry.RobotSpec{
		ID: "one", Manufacturer: "Acme", DoF: 1,
		PayloadKg: 1, ReachM: 0.5,
		TorqueLimits: []float64{torqueLimit},
		AccelLimits:  []float64{10},
		MassTotalKg:  10,
	}
}

func TestScale_FeasibleIntent(t *testing.T) {
	s, err := NewScaler(testSpec(50), 0.9, nil)
	require.NoError(t, err)

	params, err := s.Scale(30, nil)
	require.NoError(t, err)

	assert.False(t, params.WasScaled)
	assert.Equal(t, 1.0, params.ScaleFactor)
	assert.Equal(t, params.DesiredAccel, params.ActualAccel)
	assert.InDelta(t, 3.0, params.ActualAccel[0], 1e-12)
	assert.InDelta(t, 4.8, params.RequiredTorque[0], 1e-9)
	assert.True(t, params.Report.Feasible)
	assert.Equal(t, dynamics.SourceApproximate, params.TorqueSource)
	assert.NotEmpty(t, params.RequestID)
}

func TestScale_InfeasibleIntentScaledByWorstOverload(t *testing.T) {
	// Engineer the torque limit so a 95% intent overloads the worst
	// joint by exactly 1.35: tau = 1.6*9.5 = 15.2, effective limit
	// 15.2/1.35.
	tauMax := 15.2 / (0.9 * 1.35)
	s, err := NewScaler(testSpec(tauMax), 0.9, nil)
	require.NoError(t, err)

	params, err := s.Scale(95, nil)
	require.NoError(t, err)

	assert.True(t, params.WasScaled)
	assert.InDelta(t, 1.0/1.35, params.ScaleFactor, 1e-9)
	assert.InDelta(t, 1.35, params.Report.Torque.MaxRatio, 1e-9)
	assert.InDelta(t, 9.5/1.35, params.ActualAccel[0], 1e-9)
	assert.False(t, params.Report.Feasible)
}

func TestScale_Idempotence(t *testing.T) {
	// Re-validating the scaler's own output at rest must not scale
	// again: at rest the torque is purely inertial, so the single-shot
	// factor is exact.
	tauMax := 15.2 / (0.9 * 1.35)
	s, err := NewScaler(testSpec(tauMax), 0.9, nil)
	require.NoError(t, err)

	first, err := s.Scale(95, nil)
	require.NoError(t, err)
	require.True(t, first.WasScaled)

	second, err := s.ScaleTrajectory(context.Background(), []dynamics.JointState{{
		Q:   []float64{0},
		Qd:  []float64{0},
		Qdd: first.ActualAccel,
	}})
	require.NoError(t, err)

	assert.Equal(t, 1.0, second.ScaleFactor)
	assert.False(t, second.WasScaled)
	assert.True(t, second.Report.Feasible)
}

func TestScale_InvalidIntent(t *testing.T) {
	s, err := NewScaler(testSpec(50), 0.9, nil)
	require.NoError(t, err)

	_, err = s.Scale(-5, nil)
	assert.Error(t, err)
	_, err = s.Scale(150, nil)
	assert.Error(t, err)
}

func TestScale_RequiresAccelLimits(t *testing.T) {
	spec := testSpec(50)
	spec.AccelLimits = nil
	s, err := NewScaler(spec, 0.9, nil)
	require.NoError(t, err)

	_, err = s.Scale(50, nil)
	assert.Error(t, err)
}

func TestScale_StateDimensionChecked(t *testing.T) {
	s, err := NewScaler(testSpec(50), 0.9, nil)
	require.NoError(t, err)

	_, err = s.Scale(50, &State{Q: []float64{0, 0}, Qd: []float64{0, 0}})
	assert.Error(t, err)
}

func TestScale_GravityLoadedPose(t *testing.T) {
	// With a non-zero pose the gravity term does not scale with the
	// factor; the result may stay marginally infeasible by design.
	// Here we only assert the factor still comes from the worst ratio.
	s, err := NewScaler(testSpec(20), 0.9, nil)
	require.NoError(t, err)

	params, err := s.Scale(95, &State{Q: []float64{1.0}, Qd: []float64{0}})
	require.NoError(t, err)

	// tau = 1.6*9.5 + 10*9.81*0.4*sin(1) = 15.2 + 33.02 = 48.22 > 18
	require.True(t, params.WasScaled)
	assert.InDelta(t, 18.0/48.216, params.ScaleFactor, 1e-3)
}

func TestScaleTrajectory_EmptyRejected(t *testing.T) {
	s, err := NewScaler(testSpec(50), 0.9, nil)
	require.NoError(t, err)

	_, err = s.ScaleTrajectory(context.Background(), nil)
	assert.Error(t, err)
}
