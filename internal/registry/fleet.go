package registry

import "math"

func degToRad(deg ...float64) []float64 {
	out := make([]float64, len(deg))
	for i, d := range deg {
		out[i] = d * math.Pi / 180
	}
	return out
}

// BuiltinFleet returns the predefined fleet used when no registry file
// is supplied: a UR5e, a Franka Emika Panda and an ABB IRB 140.
// Velocity and acceleration limits are datasheet values converted from
// deg/s and deg/s^2 to radians.
func BuiltinFleet() *Registry {
	specs := []*RobotSpec{
		{
			ID:             "UR5e",
			Manufacturer:   "Universal Robots",
			DoF:            6,
			PayloadKg:      5.0,
			ReachM:         0.85,
			TorqueLimits:   []float64{150, 150, 150, 28, 28, 28},
			VelocityLimits: degToRad(180, 180, 180, 360, 360, 360),
			AccelLimits:    degToRad(300, 300, 300, 600, 600, 600),
			MassTotalKg:    20.6,
		},
		{
			ID:             "Panda",
			Manufacturer:   "Franka Emika",
			DoF:            7,
			PayloadKg:      3.0,
			ReachM:         0.855,
			TorqueLimits:   []float64{87, 87, 87, 87, 12, 12, 12},
			VelocityLimits: degToRad(150, 150, 150, 150, 180, 180, 180),
			AccelLimits:    degToRad(500, 500, 500, 500, 600, 600, 600),
			MassTotalKg:    18.0, // with gripper
		},
		{
			ID:             "ABB_IRB140",
			Manufacturer:   "ABB",
			DoF:            6,
			PayloadKg:      6.0,
			ReachM:         0.81,
			TorqueLimits:   []float64{200, 200, 100, 50, 50, 30},
			VelocityLimits: degToRad(180, 180, 260, 320, 320, 420),
			AccelLimits:    degToRad(400, 400, 500, 700, 700, 900),
			MassTotalKg:    98.0,
		},
	}
	r, err := FromSpecs(specs...)
	if err != nil {
		// The builtin fleet is constant; a validation failure here is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return r
}
