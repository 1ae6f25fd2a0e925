package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"robofleet/internal/selector"
	"robofleet/internal/taskreq"
)

var selectTaskFile string

// selectCmd ranks the fleet against a task's requirements.
var selectCmd = &cobra.Command{
	Use:   "select [task text]",
	Short: "Select the best-matched robot for a task",
	Long: `Extracts payload, reach and DoF requirements from the task text and
ranks every robot in the registry against them.

The task text may carry explicit annotations:

  PAYLOAD_KG: 15.0
  REQUIRED_REACH_M: 1.1
  REQUIRED_DOF: 6

or embedded SetWorkpieceWeight(...) / PosX(...) literals, from which
requirements are inferred. Missing fields fall back to defaults.

Example:
  robofleet select --file welding_task.txt
  robofleet select "PAYLOAD_KG: 0.12"`,
	RunE: runSelect,
}

func init() {
	selectCmd.Flags().StringVarP(&selectTaskFile, "file", "f", "", "read task text from file")
}

func runSelect(cmd *cobra.Command, args []string) error {
	text, err := taskText(args)
	if err != nil {
		return err
	}

	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	req := taskreq.NewExtractor(logger).Extract(text)
	weights := cfg.Weights()
	sel, err := selector.New(reg, logger).Select(req, &weights)
	if err != nil {
		return err
	}

	fmt.Println(renderSelectionReport(sel))
	return nil
}

func taskText(args []string) (string, error) {
	if selectTaskFile != "" {
		data, err := os.ReadFile(selectTaskFile)
		if err != nil {
			return "", fmt.Errorf("failed to read task file: %w", err)
		}
		return string(data), nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("provide task text as an argument or via --file")
	}
	return strings.Join(args, "\n"), nil
}
