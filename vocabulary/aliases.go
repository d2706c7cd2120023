package vocabulary

import "strings"

// sensorTypeAliases maps case-insensitive synonym spellings to one canonical
// type per family. New synonyms are additive data: extend the table, do not
// add types.
var sensorTypeAliases = map[string]string{
	// Soil
	"sm":               SoilMoisture,
	"moisture":         SoilMoisture,
	"vwc":              SoilMoisture,
	"soil_humidity":    SoilMoisture,
	"soilmoisture":     SoilMoisture,
	"st":               SoilTemperature,
	"soil_temp":        SoilTemperature,
	"soiltemperature":  SoilTemperature,
	"ec":               SoilEC,
	"salinity":         SoilEC,
	"conductivity":     SoilEC,
	"soil_salinity":    SoilEC,
	"ph":               SoilPH,
	"soil_acidity":     SoilPH,
	"n":                SoilNitrogen,
	"nitrogen":         SoilNitrogen,
	"p":                SoilPhosphorus,
	"phosphorus":       SoilPhosphorus,
	"k":                SoilPotassium,
	"potassium":        SoilPotassium,

	// Weather
	"temp":             AirTemperature,
	"at":               AirTemperature,
	"temperature":      AirTemperature,
	"air_temp":         AirTemperature,
	"ambient":          AirTemperature,
	"rh":               AirHumidity,
	"humidity":         AirHumidity,
	"air_hum":          AirHumidity,
	"ws":               WindSpeed,
	"wind":             WindSpeed,
	"wd":               WindDirection,
	"wind_dir":         WindDirection,
	"rain":             Rainfall,
	"precipitation":    Rainfall,
	"precip":           Rainfall,
	"solar":            SolarRadiation,
	"radiation":        SolarRadiation,
	"par":              SolarRadiation,
	"pressure":         AtmosphericPressure,
	"baro":             AtmosphericPressure,
	"barometric":       AtmosphericPressure,

	// Water
	"wl":               WaterLevel,
	"level":            WaterLevel,
	"depth":            WaterLevel,
	"flow":             WaterFlow,
	"flow_rate":        WaterFlow,
	"wf":               WaterFlow,
	"wt":               WaterTemperature,
	"water_temp":       WaterTemperature,
	"water_ph":         WaterPH,
	"wph":              WaterPH,

	// Plant
	"lw":               LeafWetness,
	"leaf":             LeafWetness,
	"wetness":          LeafWetness,
	"vegetation_index": NDVI,
	"vi":               NDVI,
}

// unitAliases maps synonym unit spellings to canonical unit strings.
var unitAliases = map[string]string{
	"celsius":    "°C",
	"c":          "°C",
	"deg_c":      "°C",
	"degc":       "°C",
	"degrees_c":  "°C",
	"fahrenheit": "°F",
	"f":          "°F",
	"deg_f":      "°F",
	"percent":    "%",
	"pct":        "%",
	"%rh":        "%",
	"mm":         "mm",
	"millimeter": "mm",
	"m":          "m",
	"meter":      "m",
	"metre":      "m",
	"cm":         "cm",
	"ms":         "m/s",
	"m/s":        "m/s",
	"mps":        "m/s",
	"kmh":        "km/h",
	"km/h":       "km/h",
	"kph":        "km/h",
	"deg":        "°",
	"degree":     "°",
	"degrees":    "°",
	"hpa":        "hPa",
	"mbar":       "hPa",
	"millibar":   "hPa",
	"wm2":        "W/m²",
	"w/m2":       "W/m²",
	"w/m^2":      "W/m²",
	"ds/m":       "dS/m",
	"dsm":        "dS/m",
	"mscm":       "dS/m",
	"lpm":        "L/min",
	"l/min":      "L/min",
	"lmin":       "L/min",
	"m3h":        "m³/h",
	"m3/h":       "m³/h",
	"mgkg":       "mg/kg",
	"mg/kg":      "mg/kg",
	"ppm":        "ppm",
}

// defaultUnits supplies a unit when the payload carries none. Types with no
// natural unit (pH, NDVI) fall back to the empty string.
var defaultUnits = map[string]string{
	SoilMoisture:        "%",
	SoilTemperature:     "°C",
	SoilEC:              "dS/m",
	SoilPH:              "",
	SoilNitrogen:        "mg/kg",
	SoilPhosphorus:      "mg/kg",
	SoilPotassium:       "mg/kg",
	AirTemperature:      "°C",
	AirHumidity:         "%",
	WindSpeed:           "m/s",
	WindDirection:       "°",
	Rainfall:            "mm",
	SolarRadiation:      "W/m²",
	AtmosphericPressure: "hPa",
	WaterLevel:          "m",
	WaterFlow:           "L/min",
	WaterTemperature:    "°C",
	WaterPH:             "",
	LeafWetness:         "%",
	NDVI:                "",
}

// deviceTypeBySensor maps canonical sensor types to the device category a
// device reporting that type is assumed to be. Used by zero-touch
// onboarding; unmapped types yield DeviceUnknown.
var deviceTypeBySensor = map[string]DeviceType{
	SoilMoisture:        DeviceSoilSensor,
	SoilTemperature:     DeviceSoilSensor,
	SoilEC:              DeviceSoilSensor,
	SoilPH:              DeviceSoilSensor,
	SoilNitrogen:        DeviceSoilSensor,
	SoilPhosphorus:      DeviceSoilSensor,
	SoilPotassium:       DeviceSoilSensor,
	AirTemperature:      DeviceWeatherStation,
	AirHumidity:         DeviceWeatherStation,
	WindSpeed:           DeviceWeatherStation,
	WindDirection:       DeviceWeatherStation,
	Rainfall:            DeviceWeatherStation,
	SolarRadiation:      DeviceWeatherStation,
	AtmosphericPressure: DeviceWeatherStation,
	WaterLevel:          DeviceWaterSensor,
	WaterTemperature:    DeviceWaterSensor,
	WaterPH:             DeviceWaterSensor,
	WaterFlow:           DeviceFlowMeter,
}

// CanonicalSensorType resolves s against the alias table, case-insensitively.
// Already-canonical spellings resolve to themselves, so the mapping is
// idempotent. Unmapped spellings pass through lower-cased.
func CanonicalSensorType(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	if canonical, ok := sensorTypeAliases[key]; ok {
		return canonical
	}
	return key
}

// CanonicalUnit resolves u against the unit alias table. Unmapped units pass
// through unchanged (not lower-cased: unit casing is significant, e.g. "hPa").
func CanonicalUnit(u string) string {
	key := strings.ToLower(strings.TrimSpace(u))
	if canonical, ok := unitAliases[key]; ok {
		return canonical
	}
	return strings.TrimSpace(u)
}

// DefaultUnit returns the natural unit for a canonical sensor type, or ""
// for types with no natural unit.
func DefaultUnit(sensorType string) string {
	return defaultUnits[sensorType]
}

// DeviceTypeFor infers the device category from a sensor type. The input is
// canonicalized first, so aliases ("sm") infer the same category as their
// canonical form ("soil_moisture").
func DeviceTypeFor(sensorType string) DeviceType {
	if dt, ok := deviceTypeBySensor[CanonicalSensorType(sensorType)]; ok {
		return dt
	}
	return DeviceUnknown
}
