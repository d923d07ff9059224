package types

// Conditions is the current outdoor weather shown next to the indoor readings.
type Conditions struct {
	TemperatureF float64 `json:"temperature"`
	HumidityPct  float64 `json:"humidity"`
	Condition    string  `json:"condition"`
	Icon         string  `json:"icon"`
	LastUpdate   string  `json:"last_update"`
}

func (c Conditions) IsZero() bool { return c == Conditions{} }
