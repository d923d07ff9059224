package controller

import "github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/types"

// DataResponse is the JSON body of GET /data and of every live update.
type DataResponse struct {
	Temperature float64      `json:"temperature"`
	Humidity    float64      `json:"humidity"`
	Timestamp   string       `json:"timestamp"`
	TempMin     float64      `json:"temp_min"`
	TempMax     float64      `json:"temp_max"`
	HumidMin    float64      `json:"humid_min"`
	HumidMax    float64      `json:"humid_max"`
	HasData     bool         `json:"has_data"`
	HasExtrema  bool         `json:"has_extrema"`
	Connected   bool         `json:"connected"`
	Alerts      types.Alerts `json:"alerts"`
}

func NewDataResponse(snap types.Snapshot, connected bool, thresholds types.Thresholds) DataResponse {
	resp := DataResponse{
		Temperature: snap.TemperatureF,
		Humidity:    snap.HumidityPct,
		TempMin:     snap.Extrema.TempMin,
		TempMax:     snap.Extrema.TempMax,
		HumidMin:    snap.Extrema.HumidMin,
		HumidMax:    snap.Extrema.HumidMax,
		HasData:     snap.HasReading(),
		HasExtrema:  snap.Extrema.HasData(),
		Connected:   connected,
		Alerts:      thresholds.Evaluate(snap),
	}
	if snap.HasReading() {
		resp.Timestamp = snap.Timestamp.Format(types.TimestampLayout)
	}
	return resp
}

type extremaResponse struct {
	Day string `json:"day"`
	types.Extrema
	Available bool `json:"has_data"`
}
