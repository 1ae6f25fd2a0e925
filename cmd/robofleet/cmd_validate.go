package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"robofleet/internal/scaling"
)

var (
	validateRobot  string
	validateIntent float64
	validateMargin float64
)

// validateCmd checks an acceleration intent against a robot's limits.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate and scale an acceleration intent for a robot",
	Long: `Converts an abstract acceleration intent (a percentage of the robot's
acceleration limit) into a concrete, physically safe acceleration
vector: required torque is estimated via inverse dynamics, checked
against the robot's limits under the safety margin, and the intent is
scaled down by the worst per-joint overload when infeasible.

Example:
  robofleet validate --robot Panda --accel 95`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateRobot, "robot", "r", "", "robot id to validate against (required)")
	validateCmd.Flags().Float64VarP(&validateIntent, "accel", "a", scaling.DefaultIntentPercent, "acceleration intent as % of the robot's limit")
	validateCmd.Flags().Float64VarP(&validateMargin, "margin", "m", 0, "safety margin override in (0, 1]")
	_ = validateCmd.MarkFlagRequired("robot")
}

func runValidate(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	spec, err := reg.Get(validateRobot)
	if err != nil {
		return err
	}

	margin := cfg.SafetyMargin
	if validateMargin != 0 {
		margin = validateMargin
	}

	scaler, err := scaling.NewScaler(spec, margin, logger)
	if err != nil {
		return err
	}
	params, err := scaler.Scale(validateIntent, nil)
	if err != nil {
		return err
	}

	fmt.Println(renderScalingReport(spec, params))
	return nil
}
