package config

var Presets = map[string]map[string]*Config{
	"car": {
		"cruise": {
			Model: "car", Dt: 0.05, Steps: 100, Batch: 1,
			Control: ControlConfig{V: 0.5, W: 0.0},
			Goal:    GoalConfig{X: 5.0, Y: 0.0, Theta: 0.0, V: 0.5},
		},
		"arc": {
			Model: "car", Dt: 0.05, Steps: 120, Batch: 1,
			Control: ControlConfig{V: 0.5, W: 0.4},
			Goal:    GoalConfig{X: 3.0, Y: 3.0, Theta: 1.57, V: 0.5},
		},
	},
	"saturated": {
		"cruise": {
			Model: "saturated", Dt: 0.05, Steps: 100, Batch: 1,
			Vehicle: VehicleConfig{VMin: 0.0, VMax: 0.6, WMin: -1.1, WMax: 1.1},
			Control: ControlConfig{V: 0.4, W: 0.0},
			Goal:    GoalConfig{X: 4.0, Y: 0.0, Theta: 0.0, V: 0.4},
		},
		"clipped": {
			Model: "saturated", Dt: 0.05, Steps: 100, Batch: 1,
			Vehicle: VehicleConfig{VMin: 0.0, VMax: 0.6, WMin: -1.1, WMax: 1.1},
			Control: ControlConfig{V: 1.5, W: 2.0}, // both commands saturate
			Goal:    GoalConfig{X: 2.0, Y: 2.0, Theta: 1.57, V: 0.6},
		},
		"uturn": {
			Model: "saturated", Dt: 0.05, Steps: 160, Batch: 1,
			Vehicle: VehicleConfig{VMin: 0.0, VMax: 0.6, WMin: -1.1, WMax: 1.1},
			Control: ControlConfig{V: 0.4, W: 0.8},
			Goal:    GoalConfig{X: 0.0, Y: 2.0, Theta: 3.14, V: 0.3},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
