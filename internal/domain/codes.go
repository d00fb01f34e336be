package domain

import "strings"

// iconsetPath prefixes every icon reference. The mapping client resolves
// "<iconset-uuid>/<group>/<file>" against its installed iconsets.
const iconsetPath = "ad78aafb-83a6-4c07-b2b9-a897a8b6a38f/Alert/"

const (
	// IconInfoOnly is the generic marker for unrecognized event codes.
	IconInfoOnly = iconsetPath + "info.png"

	iconHealthHazard = iconsetPath + "biohazard.png"
	iconFire         = iconsetPath + "fire.png"
)

// categoryLabels maps CAP 1.2 category codes to display labels.
var categoryLabels = map[string]string{
	"Geo":       "Geophysical",
	"Met":       "Meteorological",
	"Safety":    "General emergency and public safety",
	"Security":  "Law enforcement and security",
	"Rescue":    "Rescue and recovery",
	"Fire":      "Fire suppression and rescue",
	"Health":    "Medical and public health",
	"Env":       "Pollution and other environmental",
	"Transport": "Public and private transportation",
	"Infra":     "Utility and infrastructure",
	"CBRNE":     "Chemical, biological, radiological, nuclear or explosive",
	"Other":     "Other events",
}

// eventLabels maps feed event codes to display labels.
var eventLabels = map[string]string{
	"earthquake":   "Earthquake",
	"tsunami":      "Tsunami",
	"volcano":      "Volcanic activity",
	"flood":        "Flooding",
	"heavyRain":    "Heavy rain",
	"heavySnow":    "Heavy snow",
	"strongWind":   "Strong wind",
	"thunderstorm": "Severe thunderstorm",
	"tornado":      "Tornado",
	"cyclone":      "Tropical cyclone",
	"roadSnowfall": "Road snowfall",
	"fog":          "Dense fog",
	"wildfire":     "Wildfire",
	"heat":         "Extreme heat",
	"coldSnap":     "Cold snap",
}

// eventIcons maps feed event codes to icon references.
var eventIcons = map[string]string{
	"earthquake":   iconsetPath + "earthquake.png",
	"tsunami":      iconsetPath + "tsunami.png",
	"volcano":      iconsetPath + "volcano.png",
	"flood":        iconsetPath + "flood.png",
	"heavyRain":    iconsetPath + "rain.png",
	"heavySnow":    iconsetPath + "snow.png",
	"strongWind":   iconsetPath + "wind.png",
	"thunderstorm": iconsetPath + "thunderstorm.png",
	"tornado":      iconsetPath + "tornado.png",
	"cyclone":      iconsetPath + "cyclone.png",
	"roadSnowfall": iconsetPath + "road-snow.png",
	"fog":          iconsetPath + "fog.png",
	"wildfire":     iconFire,
	"heat":         iconsetPath + "heat.png",
	"coldSnap":     iconsetPath + "cold.png",
}

// colourNames maps CAP ColourCode parameter names to hex values, used when an
// alert carries no explicit ColourCodeHex.
var colourNames = map[string]string{
	"Red":    "#FF0000",
	"Orange": "#FF8918",
	"Yellow": "#FFFF00",
	"Green":  "#00FF00",
	"Blue":   "#0000FF",
}

// CategoryLabel returns the display label for a CAP category code, or the
// code itself when unmapped.
func CategoryLabel(code string) string {
	if label, ok := categoryLabels[code]; ok {
		return label
	}
	return code
}

// EventLabel returns the display label for an event code, or the code itself
// when unmapped.
func EventLabel(code string) string {
	if label, ok := eventLabels[code]; ok {
		return label
	}
	return code
}

// IconForAlert selects the icon reference for an alert. Health and Fire
// categories override the event table; unrecognized events degrade to the
// information-only icon.
func IconForAlert(category, event string) string {
	switch category {
	case "Health":
		return iconHealthHazard
	case "Fire":
		return iconFire
	}
	if icon, ok := eventIcons[event]; ok {
		return icon
	}
	return IconInfoOnly
}

// ColourForName maps a ColourCode parameter name to its hex value.
// The second return is false for unknown names.
func ColourForName(name string) (string, bool) {
	hex, ok := colourNames[strings.TrimSpace(name)]
	return hex, ok
}
