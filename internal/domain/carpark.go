package domain

import "time"

// StreetZonePrefix is prepended to a street-parking zone name when the zone
// is materialized as a CarPark record.
const StreetZonePrefix = "Street Parking Zone - "

// Defaults applied when the parking listing omits a field.
const (
	DefaultOpeningHours  = "24-hour"
	DefaultContactNumber = "not provided"
)

// StreetParkingInfo описывает уличные парковочные места при гараже или зоне
type StreetParkingInfo struct {
	Total     int    `json:"total"`
	Available int    `json:"available"`
	Fee       string `json:"fee"`
}

// ChargingInfo - сведения о зарядных станциях, присоединённые по имени
type ChargingInfo struct {
	StationCount int    `json:"station_count"`
	Provider     string `json:"provider"`
	Type         string `json:"type"`
	HasCharging  bool   `json:"has_charging"`
}

// CarPark - нормализованная парковка (гараж или уличная зона)
type CarPark struct {
	Name            string            `json:"name" validate:"required"`
	Address         string            `json:"address"`
	Lat             float64           `json:"lat" validate:"min=-90,max=90"`
	Lng             float64           `json:"lng" validate:"min=-180,max=180"`
	Capacity        int               `json:"capacity" validate:"min=0"`
	IsStreetParking bool              `json:"is_street_parking"`
	StreetParking   StreetParkingInfo `json:"street_parking"`
	Charging        ChargingInfo      `json:"charging"`
	OpeningHours    string            `json:"opening_hours"`
	ContactNumber   string            `json:"contact_number"`
	Facilities      []string          `json:"facilities,omitempty"`
	DisplayInfo     string            `json:"display_info"`
	LastUpdated     time.Time         `json:"last_updated"`
}

// ChargerAggregate - сводка зарядных станций по названию площадки.
// Providers and Types keep first-seen order so the joined strings are
// deterministic across runs.
type ChargerAggregate struct {
	LocationName string   `json:"location_name"`
	Count        int      `json:"count"`
	Providers    []string `json:"providers"`
	Types        []string `json:"types"`
}
