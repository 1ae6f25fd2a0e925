// Package registry holds the immutable per-robot specification records:
// payload, reach, degrees of freedom, per-joint limits and, optionally,
// the per-link dynamic model used by the inverse dynamics estimator.
//
// A Registry is loaded once at startup and never mutated afterwards, so
// concurrent selection and validation requests can share it without
// locking.
package registry

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrUnknownRobot is returned when a requested robot id is not present.
var ErrUnknownRobot = errors.New("unknown robot")

// DimensionError reports a vector whose length does not match a robot's
// degree-of-freedom count. Vectors are never truncated or padded.
type DimensionError struct {
	Field string
	Want  int
	Got   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: %s has length %d, want %d", e.Field, e.Got, e.Want)
}

// Link describes one link of a robot's dynamic model in modified-DH
// convention. Alpha and A refer to the transform from the preceding
// link frame; COM and Inertia (diagonal, about the COM) are expressed
// in the link's own frame.
type Link struct {
	MassKg  float64    `yaml:"mass_kg"`
	COM     [3]float64 `yaml:"com"`
	Inertia [3]float64 `yaml:"inertia"`
	A       float64    `yaml:"a"`
	Alpha   float64    `yaml:"alpha"`
	D       float64    `yaml:"d"`
	Theta   float64    `yaml:"theta"`
}

// RobotSpec is the immutable physical description of one robot.
// All limit vectors have length DoF and strictly positive entries.
type RobotSpec struct {
	ID           string    `yaml:"-"`
	Manufacturer string    `yaml:"manufacturer"`
	DoF          int       `yaml:"dof"`
	PayloadKg    float64   `yaml:"payload_kg"`
	ReachM       float64   `yaml:"reach_m"`
	TorqueLimits []float64 `yaml:"torque_limits"`
	// VelocityLimits and AccelLimits may be absent; feasibility checks
	// then report the quantity as not applicable.
	VelocityLimits []float64 `yaml:"velocity_limits,omitempty"`
	AccelLimits    []float64 `yaml:"accel_limits,omitempty"`
	MassTotalKg    float64   `yaml:"mass_total_kg"`

	// Links is the optional per-link dynamic model. When present the
	// inverse dynamics estimator uses the full recursive Newton-Euler
	// path; when absent it falls back to an analytic approximation.
	Links []Link `yaml:"links,omitempty"`

	// Sim carries simulator instantiation hints for the downstream
	// simulation layer. Opaque to this core.
	Sim map[string]interface{} `yaml:"sim,omitempty"`
}

// HasDynamicModel reports whether a full per-link model is available.
func (s *RobotSpec) HasDynamicModel() bool {
	return len(s.Links) == s.DoF && s.DoF > 0
}

// CheckVector validates that v has one entry per joint.
func (s *RobotSpec) CheckVector(field string, v []float64) error {
	if len(v) != s.DoF {
		return &DimensionError{Field: field, Want: s.DoF, Got: len(v)}
	}
	return nil
}

func (s *RobotSpec) validate() error {
	if s.ID == "" {
		return fmt.Errorf("robot spec missing id")
	}
	if s.DoF < 1 {
		return fmt.Errorf("robot %s: dof must be >= 1, got %d", s.ID, s.DoF)
	}
	if s.PayloadKg <= 0 {
		return fmt.Errorf("robot %s: payload must be positive, got %g", s.ID, s.PayloadKg)
	}
	if s.ReachM <= 0 {
		return fmt.Errorf("robot %s: reach must be positive, got %g", s.ID, s.ReachM)
	}
	if s.MassTotalKg <= 0 {
		return fmt.Errorf("robot %s: total mass must be positive, got %g", s.ID, s.MassTotalKg)
	}
	if err := s.CheckVector("torque_limits", s.TorqueLimits); err != nil {
		return fmt.Errorf("robot %s: %w", s.ID, err)
	}
	for name, limits := range map[string][]float64{
		"velocity_limits": s.VelocityLimits,
		"accel_limits":    s.AccelLimits,
	} {
		if limits == nil {
			continue
		}
		if len(limits) != s.DoF {
			return fmt.Errorf("robot %s: %w", s.ID, &DimensionError{Field: name, Want: s.DoF, Got: len(limits)})
		}
	}
	for _, vec := range [][]float64{s.TorqueLimits, s.VelocityLimits, s.AccelLimits} {
		for i, v := range vec {
			if v <= 0 {
				return fmt.Errorf("robot %s: limit[%d] must be strictly positive, got %g", s.ID, i, v)
			}
		}
	}
	if len(s.Links) > 0 && len(s.Links) != s.DoF {
		return fmt.Errorf("robot %s: %w", s.ID, &DimensionError{Field: "links", Want: s.DoF, Got: len(s.Links)})
	}
	return nil
}

// Registry is the read-only set of robot specifications.
type Registry struct {
	robots map[string]*RobotSpec
	order  []string
}

// FromSpecs builds a registry from already-constructed specs.
func FromSpecs(specs ...*RobotSpec) (*Registry, error) {
	r := &Registry{robots: make(map[string]*RobotSpec, len(specs))}
	for _, s := range specs {
		if err := s.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.robots[s.ID]; dup {
			return nil, fmt.Errorf("duplicate robot id %q", s.ID)
		}
		r.robots[s.ID] = s
		r.order = append(r.order, s.ID)
	}
	sort.Strings(r.order)
	return r, nil
}

// Load reads a registry file: a YAML map of robot id to spec.
func Load(path string, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	var entries map[string]*RobotSpec
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	specs := make([]*RobotSpec, 0, len(entries))
	for id, spec := range entries {
		spec.ID = id
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })
	r, err := FromSpecs(specs...)
	if err != nil {
		return nil, err
	}
	logger.Info("registry loaded",
		zap.String("path", path),
		zap.Int("robots", r.Len()))
	return r, nil
}

// Get returns the spec for id, or ErrUnknownRobot.
func (r *Registry) Get(id string) (*RobotSpec, error) {
	spec, ok := r.robots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRobot, id)
	}
	return spec, nil
}

// All returns every spec in stable (id-sorted) order.
func (r *Registry) All() []*RobotSpec {
	out := make([]*RobotSpec, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.robots[id])
	}
	return out
}

// Len returns the number of registered robots.
func (r *Registry) Len() int { return len(r.robots) }
