// Package taskreq extracts physical task requirements from free-form
// task text. The text may carry explicit KEY: value annotations,
// weight-setting commands and positional literals; anything missing or
// malformed is replaced by a documented default, never an error.
package taskreq

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Defaults applied when the task text does not state a requirement.
// They are deliberately permissive so an absent annotation never
// disqualifies a robot outright.
const (
	DefaultPayloadKg = 1.0
	DefaultReachM    = 0.8
	DefaultDoF       = 6
)

// reachEstimateMargin inflates the planar-distance reach estimate by 10%.
const reachEstimateMargin = 1.1

// Requirements is the extracted requirement record. Derived once per
// task and immutable thereafter.
type Requirements struct {
	PayloadKg float64
	ReachM    float64
	DoF       int
}

var (
	annotationRe = regexp.MustCompile(`:\s*(-?[\d.]+)`)
	weightRe     = regexp.MustCompile(`SetWorkpieceWeight\s*\(\s*([\d.]+)`)
	posRe        = regexp.MustCompile(`PosX\s*\(\s*(-?[\d.]+)\s*,\s*(-?[\d.]+)`)
)

// Extractor scans task text for requirements.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor returns an extractor logging through logger (nil for none).
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract is a convenience wrapper around a silent Extractor.
func Extract(text string) Requirements {
	return NewExtractor(nil).Extract(text)
}

// Extract scans the task text line by line and returns a complete
// Requirements record.
//
// Precedence, per field:
//   - payload: an explicit PAYLOAD_KG annotation always wins over a
//     SetWorkpieceWeight(...) command, regardless of order; with
//     neither present the default applies.
//   - reach: an explicit REQUIRED_REACH_M (or REACH_M) annotation
//     always wins; otherwise the reach is estimated from the largest
//     planar distance of embedded PosX(x, y, ...) literals (mm -> m,
//     inflated by 10%), never below the default.
//   - dof: REQUIRED_DOF annotation or the default.
//
// Malformed numeric literals are skipped with the default retained.
func (e *Extractor) Extract(text string) Requirements {
	req := Requirements{
		PayloadKg: DefaultPayloadKg,
		ReachM:    DefaultReachM,
		DoF:       DefaultDoF,
	}

	payloadExplicit := false
	reachExplicit := false
	payloadSource := "default"

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if strings.Contains(line, "PAYLOAD_KG") {
			if v, ok := annotationValue(line); ok && v >= 0 {
				req.PayloadKg = v
				payloadExplicit = true
				payloadSource = "annotation"
				e.logger.Debug("explicit payload annotation", zap.Float64("payload_kg", v))
			} else {
				e.logger.Warn("malformed PAYLOAD_KG line skipped", zap.String("line", line))
			}
		}

		if !payloadExplicit && strings.Contains(line, "SetWorkpieceWeight") {
			if m := weightRe.FindStringSubmatch(line); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					req.PayloadKg = v
					payloadSource = "workpiece_weight"
					e.logger.Debug("payload from workpiece weight", zap.Float64("payload_kg", v))
				}
			}
		}

		if strings.Contains(line, "REACH_M") {
			if v, ok := annotationValue(line); ok && v >= 0 {
				req.ReachM = v
				reachExplicit = true
			} else {
				e.logger.Warn("malformed reach annotation skipped", zap.String("line", line))
			}
		}

		if !reachExplicit && strings.Contains(line, "PosX") {
			if m := posRe.FindStringSubmatch(line); m != nil {
				x, errX := strconv.ParseFloat(m[1], 64)
				y, errY := strconv.ParseFloat(m[2], 64)
				if errX == nil && errY == nil {
					est := math.Hypot(x, y) / 1000.0 * reachEstimateMargin
					if est > req.ReachM {
						req.ReachM = est
					}
				}
			}
		}

		if strings.Contains(line, "REQUIRED_DOF") {
			if v, ok := annotationValue(line); ok && v >= 1 {
				req.DoF = int(v)
			} else {
				e.logger.Warn("malformed REQUIRED_DOF line skipped", zap.String("line", line))
			}
		}
	}

	e.logger.Info("task requirements extracted",
		zap.Float64("payload_kg", req.PayloadKg),
		zap.Float64("reach_m", req.ReachM),
		zap.Int("dof", req.DoF),
		zap.String("payload_source", payloadSource))
	return req
}

// annotationValue parses the numeric value of a "KEY: value" line.
func annotationValue(line string) (float64, bool) {
	m := annotationRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
