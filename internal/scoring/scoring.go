// Package scoring computes the normalized [0,1] suitability scores used
// by the robot selector: one score per criterion (payload, reach, DoF)
// for a (robot, requirement) pair. All functions are pure.
package scoring

import (
	"math"

	"robofleet/internal/registry"
	"robofleet/internal/taskreq"
)

// Payload score tuning. The score peaks at a capacity ratio of
// PayloadAlpha (a 20% safety margin over the required payload) and
// switches from a Gaussian to a logarithmic-decay regime above
// OverSpecThreshold: a pure Gaussian would assign near-zero,
// indistinguishable scores to every grossly over-provisioned robot,
// while the log tail keeps them ranked.
const (
	PayloadAlpha      = 1.2  // optimal capacity ratio
	PayloadSigma      = 0.20 // relative tolerance around the optimum
	OverSpecThreshold = 3.0  // ratio above which the log-decay regime applies
	LogDecayBeta      = 0.8  // log-decay penalty coefficient
	MinOverSpecScore  = 0.01 // floor so over-provisioned robots stay ranked
)

// ReachGrowthRate controls how fast excess reach approaches the
// asymptotic score of 1.
const ReachGrowthRate = 1.5

// DoFSurplusScore is the mild penalty for robots with more joints than
// the task needs: extra joints add control complexity without benefit.
const DoFSurplusScore = 0.8

// PayloadRegime tags which branch of the payload score produced a value.
type PayloadRegime int

const (
	RegimeInsufficient PayloadRegime = iota
	RegimeGaussian
	RegimeLogDecay
)

func (r PayloadRegime) String() string {
	switch r {
	case RegimeInsufficient:
		return "insufficient"
	case RegimeGaussian:
		return "gaussian"
	case RegimeLogDecay:
		return "log_decay"
	default:
		return "unknown"
	}
}

// PayloadScore scores a robot's payload capacity against the required
// payload. A robot that cannot lift the load scores 0; a capacity ratio
// in [1, OverSpecThreshold] follows the Gaussian regime; anything above
// falls into the log-decay regime with a MinOverSpecScore floor.
// The returned ratio is robotPayload/requiredPayload (+Inf when the
// required payload is zero).
func PayloadScore(robotPayload, requiredPayload float64) (score float64, regime PayloadRegime, ratio float64) {
	if robotPayload < requiredPayload {
		return 0, RegimeInsufficient, robotPayload / requiredPayload
	}
	ratio = robotPayload / requiredPayload
	if ratio <= OverSpecThreshold {
		deviation := ratio - PayloadAlpha
		return math.Exp(-(deviation * deviation) / (2 * PayloadSigma * PayloadSigma)), RegimeGaussian, ratio
	}
	penalty := LogDecayBeta * math.Log(ratio/PayloadAlpha)
	return math.Max(math.Exp(-penalty), MinOverSpecScore), RegimeLogDecay, ratio
}

// ReachScore scores excess reach: 0 below the requirement, then
// 1 - exp(-ReachGrowthRate * excess), approaching 1 asymptotically so
// margin is rewarded without unbounded reward.
func ReachScore(robotReach, requiredReach float64) float64 {
	if robotReach < requiredReach {
		return 0
	}
	return 1 - math.Exp(-ReachGrowthRate*(robotReach-requiredReach))
}

// DoFScore scores the joint count: 1.0 on an exact match, 0 when the
// robot has too few joints to perform the motion, DoFSurplusScore when
// it has more than needed.
func DoFScore(robotDoF, requiredDoF int) float64 {
	switch {
	case robotDoF < requiredDoF:
		return 0
	case robotDoF == requiredDoF:
		return 1.0
	default:
		return DoFSurplusScore
	}
}

// Breakdown holds one robot's total and component scores plus the raw
// spec, for the selector's ranked table. Ephemeral; recomputed per
// selection request.
type Breakdown struct {
	Spec          *registry.RobotSpec
	Total         float64
	PayloadScore  float64
	ReachScore    float64
	DoFScore      float64
	PayloadRegime PayloadRegime
	PayloadRatio  float64
}

// Score computes the three component scores for one robot against the
// requirements. The total is filled in by the selector once weights are
// known.
func Score(spec *registry.RobotSpec, req taskreq.Requirements) Breakdown {
	p, regime, ratio := PayloadScore(spec.PayloadKg, req.PayloadKg)
	return Breakdown{
		Spec:          spec,
		PayloadScore:  p,
		ReachScore:    ReachScore(spec.ReachM, req.ReachM),
		DoFScore:      DoFScore(spec.DoF, req.DoF),
		PayloadRegime: regime,
		PayloadRatio:  ratio,
	}
}
