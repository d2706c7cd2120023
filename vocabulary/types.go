package vocabulary

// Canonical sensor types. The vocabulary is open: readings carrying a type
// outside this list are passed through lower-cased, unmodified.
const (
	// Soil family
	SoilMoisture    = "soil_moisture"
	SoilTemperature = "soil_temperature"
	SoilEC          = "soil_ec"
	SoilPH          = "soil_ph"
	SoilNitrogen    = "soil_nitrogen"
	SoilPhosphorus  = "soil_phosphorus"
	SoilPotassium   = "soil_potassium"

	// Weather family
	AirTemperature      = "air_temperature"
	AirHumidity         = "air_humidity"
	WindSpeed           = "wind_speed"
	WindDirection       = "wind_direction"
	Rainfall            = "rainfall"
	SolarRadiation      = "solar_radiation"
	AtmosphericPressure = "atmospheric_pressure"

	// Water family
	WaterLevel       = "water_level"
	WaterFlow        = "water_flow"
	WaterTemperature = "water_temperature"
	WaterPH          = "water_ph"

	// Plant family
	LeafWetness = "leaf_wetness"
	NDVI        = "ndvi"
)

// DeviceType is the canonical device category inferred from the sensor
// types a device reports.
type DeviceType string

// Canonical device types
const (
	DeviceSoilSensor     DeviceType = "soil_sensor"
	DeviceWeatherStation DeviceType = "weather_station"
	DeviceWaterSensor    DeviceType = "water_sensor"
	DeviceFlowMeter      DeviceType = "flow_meter"
	DeviceUnknown        DeviceType = "unknown"
)

// String returns the string representation of the device type
func (dt DeviceType) String() string {
	return string(dt)
}
