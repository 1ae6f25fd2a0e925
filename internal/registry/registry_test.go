package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSpec() *RobotSpec {
	return &RobotSpec{
		ID:           "test",
		Manufacturer: "Acme",
		DoF:          3,
		PayloadKg:    5,
		ReachM:       0.9,
		TorqueLimits: []float64{100, 100, 50},
		MassTotalKg:  22,
	}
}

func TestFromSpecs_Validation(t *testing.T) {
	t.Run("valid spec accepted", func(t *testing.T) {
		r, err := FromSpecs(validSpec())
		require.NoError(t, err)
		assert.Equal(t, 1, r.Len())
	})

	t.Run("torque limit length must match dof", func(t *testing.T) {
		s := validSpec()
		s.TorqueLimits = []float64{100, 100}
		_, err := FromSpecs(s)
		require.Error(t, err)
		var dim *DimensionError
		assert.True(t, errors.As(err, &dim))
		assert.Equal(t, 3, dim.Want)
		assert.Equal(t, 2, dim.Got)
	})

	t.Run("limits must be strictly positive", func(t *testing.T) {
		s := validSpec()
		s.TorqueLimits[1] = 0
		_, err := FromSpecs(s)
		assert.Error(t, err)
	})

	t.Run("optional velocity limits checked when present", func(t *testing.T) {
		s := validSpec()
		s.VelocityLimits = []float64{1, 2}
		_, err := FromSpecs(s)
		assert.Error(t, err)
	})

	t.Run("link count must match dof when model present", func(t *testing.T) {
		s := validSpec()
		s.Links = []Link{{MassKg: 1}}
		_, err := FromSpecs(s)
		assert.Error(t, err)
	})

	t.Run("duplicate ids rejected", func(t *testing.T) {
		_, err := FromSpecs(validSpec(), validSpec())
		assert.Error(t, err)
	})
}

func TestRegistry_Get(t *testing.T) {
	r, err := FromSpecs(validSpec())
	require.NoError(t, err)

	spec, err := r.Get("test")
	require.NoError(t, err)
	assert.Equal(t, "Acme", spec.Manufacturer)

	_, err = r.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownRobot)
}

func TestRegistry_AllStableOrder(t *testing.T) {
	b := validSpec()
	b.ID = "bravo"
	a := validSpec()
	a.ID = "alpha"
	r, err := FromSpecs(b, a)
	require.NoError(t, err)

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].ID)
	assert.Equal(t, "bravo", all[1].ID)
}

func TestLoad_YAML(t *testing.T) {
	doc := `
ur5e:
  manufacturer: Universal Robots
  dof: 2
  payload_kg: 5.0
  reach_m: 0.85
  torque_limits: [150, 150]
  velocity_limits: [3.14, 3.14]
  mass_total_kg: 20.6
  sim:
    urdf: ur5e.urdf
    base_position: [0, 0, 0]
`
	path := filepath.Join(t.TempDir(), "fleet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	r, err := Load(path, nil)
	require.NoError(t, err)

	spec, err := r.Get("ur5e")
	require.NoError(t, err)
	assert.Equal(t, 2, spec.DoF)
	assert.Equal(t, []float64{150, 150}, spec.TorqueLimits)
	assert.Nil(t, spec.AccelLimits)
	// The sim sub-record is stored but never interpreted.
	assert.Equal(t, "ur5e.urdf", spec.Sim["urdf"])
	assert.False(t, spec.HasDynamicModel())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestBuiltinFleet(t *testing.T) {
	r := BuiltinFleet()
	assert.Equal(t, 3, r.Len())

	panda, err := r.Get("Panda")
	require.NoError(t, err)
	assert.Equal(t, 7, panda.DoF)
	assert.Len(t, panda.TorqueLimits, 7)
	assert.Len(t, panda.VelocityLimits, 7)
	assert.Len(t, panda.AccelLimits, 7)
	// deg->rad conversion: 150 deg/s ~ 2.618 rad/s
	assert.InDelta(t, 2.618, panda.VelocityLimits[0], 1e-3)
}
