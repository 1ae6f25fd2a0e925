package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"robofleet/internal/dynamics"
	"robofleet/internal/registry"
	"robofleet/internal/scaling"
	"robofleet/internal/selector"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle   = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	warnStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

// renderSelectionReport renders the ranked table plus a detail block
// for the winner. Informational only, not a binding contract.
func renderSelectionReport(sel *selector.Selection) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ROBOT SELECTION REPORT"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"requirements: payload %.2f kg, reach %.2f m, dof %d  |  weights: P %.2f / R %.2f / D %.2f%s",
		sel.Requirements.PayloadKg, sel.Requirements.ReachM, sel.Requirements.DoF,
		sel.Weights.Payload, sel.Weights.Reach, sel.Weights.DoF,
		overrideNote(sel))))
	b.WriteString("\n\n")

	t := table.New().
		Headers("RANK", "ROBOT", "TOTAL", "PAYLOAD", "REACH", "DOF", "REGIME").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})
	for rank, row := range sel.Table {
		marker := ""
		if row.Spec.ID == sel.RobotID {
			marker = " " + selectedStyle.Render("[SELECTED]")
		}
		t.Row(
			fmt.Sprintf("%d", rank+1),
			row.Spec.ID+marker,
			fmt.Sprintf("%.4f", row.Total),
			fmt.Sprintf("%.3f", row.PayloadScore),
			fmt.Sprintf("%.3f", row.ReachScore),
			fmt.Sprintf("%.1f", row.DoFScore),
			fmt.Sprintf("%s (%.1fx)", row.PayloadRegime, row.PayloadRatio),
		)
	}
	b.WriteString(t.Render())
	b.WriteString("\n\n")

	winner := sel.Table[0].Spec
	b.WriteString(renderRobotDetail(winner))
	return b.String()
}

func overrideNote(sel *selector.Selection) string {
	if !sel.WeightsOverridden {
		return ""
	}
	return "  (light object: weights overridden)"
}

// renderScalingReport renders the per-joint torque utilization table
// and the applied scale factor.
func renderScalingReport(spec *registry.RobotSpec, p *scaling.ScaledParameters) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("DYNAMICS VALIDATION REPORT"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"robot %s  |  intent %.0f%% of acceleration limit  |  safety margin %.2f",
		p.RobotID, p.IntentPercent, p.Report.Torque.EffectiveLimits[0]/spec.TorqueLimits[0])))
	b.WriteString("\n\n")

	t := table.New().
		Headers("JOINT", "TORQUE (N·m)", "CEILING (N·m)", "RATIO", "").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})
	for i, tau := range p.RequiredTorque {
		ratio := p.Report.Torque.Ratios[i]
		status := "ok"
		if ratio > 1 {
			status = warnStyle.Render("exceeded")
		}
		t.Row(
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%.2f", tau),
			fmt.Sprintf("%.2f", p.Report.Torque.EffectiveLimits[i]),
			fmt.Sprintf("%.2fx", ratio),
			status,
		)
	}
	b.WriteString(t.Render())
	b.WriteString("\n\n")

	if p.WasScaled {
		b.WriteString(warnStyle.Render(fmt.Sprintf(
			"intent exceeds limits: acceleration scaled by %.3f", p.ScaleFactor)))
	} else {
		b.WriteString(selectedStyle.Render("intent feasible: no scaling applied"))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("actual acceleration (rad/s²): %s\n", formatVector(p.ActualAccel)))
	if p.TorqueSource == dynamics.SourceApproximate {
		b.WriteString(dimStyle.Render(
			"note: torque from approximate model (no link model in registry); not fit for certification"))
		b.WriteString("\n")
	}
	return b.String()
}

// renderFleetList renders one row per registered robot.
func renderFleetList(reg *registry.Registry) string {
	t := table.New().
		Headers("ROBOT", "MANUFACTURER", "DOF", "PAYLOAD (kg)", "REACH (m)", "MASS (kg)", "MODEL").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})
	for _, spec := range reg.All() {
		model := "approximate"
		if spec.HasDynamicModel() {
			model = "link model"
		}
		t.Row(
			spec.ID,
			spec.Manufacturer,
			fmt.Sprintf("%d", spec.DoF),
			fmt.Sprintf("%.1f", spec.PayloadKg),
			fmt.Sprintf("%.2f", spec.ReachM),
			fmt.Sprintf("%.1f", spec.MassTotalKg),
			model,
		)
	}
	return t.Render()
}

// renderRobotDetail renders one robot's full specification.
func renderRobotDetail(spec *registry.RobotSpec) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%s)", spec.ID, spec.Manufacturer)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  dof:            %d\n", spec.DoF))
	b.WriteString(fmt.Sprintf("  payload:        %.2f kg\n", spec.PayloadKg))
	b.WriteString(fmt.Sprintf("  reach:          %.3f m\n", spec.ReachM))
	b.WriteString(fmt.Sprintf("  total mass:     %.1f kg\n", spec.MassTotalKg))
	b.WriteString(fmt.Sprintf("  torque limits:  %s N·m\n", formatVector(spec.TorqueLimits)))
	if spec.VelocityLimits != nil {
		b.WriteString(fmt.Sprintf("  vel limits:     %s rad/s\n", formatVector(spec.VelocityLimits)))
	}
	if spec.AccelLimits != nil {
		b.WriteString(fmt.Sprintf("  accel limits:   %s rad/s²\n", formatVector(spec.AccelLimits)))
	}
	return b.String()
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.2f", x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
