package alerting

import (
	"fmt"

	"github.com/rpenumatsa/airsense-server/internal/aqi"
	"github.com/rpenumatsa/airsense-server/internal/database"
)

var parameterNames = map[string]string{
	string(aqi.ParamPM25): "fine particulate matter (PM2.5)",
	string(aqi.ParamPM10): "coarse particulate matter (PM10)",
	string(aqi.ParamO3):   "ozone",
	string(aqi.ParamNO2):  "nitrogen dioxide",
	string(aqi.ParamSO2):  "sulfur dioxide",
	string(aqi.ParamCO):   "carbon monoxide",
	string(aqi.ParamHCHO): "formaldehyde",
}

// alertText returns the message and health-impact copy for a severity tier
func alertText(severity, dominant string, index int) (message, impact string) {
	name, ok := parameterNames[dominant]
	if !ok {
		name = dominant
	}

	switch severity {
	case database.SeverityCritical:
		message = fmt.Sprintf("Very unhealthy air quality: index %d driven by %s.", index, name)
		impact = "Health warnings of emergency conditions. Everyone should avoid outdoor exertion; sensitive groups should remain indoors."
	case database.SeverityHigh:
		message = fmt.Sprintf("Unhealthy air quality: index %d driven by %s.", index, name)
		impact = "Everyone may begin to experience health effects. Sensitive groups should avoid prolonged outdoor exertion."
	default:
		message = fmt.Sprintf("Air quality is unhealthy for sensitive groups: index %d driven by %s.", index, name)
		impact = "People with respiratory or heart conditions, children, and older adults should limit prolonged outdoor exertion."
	}
	return message, impact
}
