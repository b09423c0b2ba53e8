package domain

import "strings"

// RoutingMode is the travel style chosen by the user.
type RoutingMode string

const (
	ModeRapide     RoutingMode = "rapide"
	ModeDecouverte RoutingMode = "decouverte"
	ModeSinueux    RoutingMode = "sinueux"
)

const DefaultProfile = "driving-car"

func ParseRoutingMode(s string) (RoutingMode, error) {
	m := RoutingMode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return ModeRapide, nil
	}
	if !m.Valid() {
		return "", Invalid("routing_mode", "%q must be one of rapide, decouverte, sinueux", s)
	}
	return m, nil
}

func (m RoutingMode) Valid() bool {
	switch m {
	case ModeRapide, ModeDecouverte, ModeSinueux:
		return true
	}
	return false
}

// FallbackSpeedKmh is the average speed used when distance is estimated
// locally. Unknown modes share the slowest speed.
func (m RoutingMode) FallbackSpeedKmh() float64 {
	switch m {
	case ModeRapide:
		return 90
	case ModeDecouverte:
		return 70
	default:
		return 55
	}
}

// Vehicle only affects presentation; every vehicle is routed with the car profile.
type Vehicle string

const (
	VehicleCar        Vehicle = "voiture"
	VehicleMotorcycle Vehicle = "moto"
)

func ParseVehicle(s string) (Vehicle, error) {
	v := Vehicle(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case "":
		return VehicleCar, nil
	case VehicleCar, VehicleMotorcycle:
		return v, nil
	}
	return "", Invalid("vehicle", "%q must be voiture or moto", s)
}
