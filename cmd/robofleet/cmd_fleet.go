package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// fleetCmd groups registry inspection commands.
var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Inspect the robot registry",
}

var fleetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered robots",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		fmt.Println(renderFleetList(reg))
		return nil
	},
}

var fleetShowCmd = &cobra.Command{
	Use:   "show [robot id]",
	Short: "Show one robot's full specification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		spec, err := reg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(renderRobotDetail(spec))
		return nil
	},
}

func init() {
	fleetCmd.AddCommand(fleetListCmd)
	fleetCmd.AddCommand(fleetShowCmd)
}
