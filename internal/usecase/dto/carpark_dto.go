package dto

import (
	"time"

	"github.com/carpark-aggregator/internal/domain"
)

// CarParkDTO - парковка в ответе API
type CarParkDTO struct {
	Name            string    `json:"name"`
	Address         string    `json:"address"`
	Lat             float64   `json:"lat"`
	Lng             float64   `json:"lng"`
	Capacity        int       `json:"capacity"`
	IsStreetParking bool      `json:"is_street_parking"`
	StreetTotal     int       `json:"street_total"`
	StreetAvailable int       `json:"street_available"`
	StreetFee       string    `json:"street_fee,omitempty"`
	StationCount    int       `json:"station_count"`
	Provider        string    `json:"provider,omitempty"`
	ChargerType     string    `json:"charger_type,omitempty"`
	HasCharging     bool      `json:"has_charging"`
	OpeningHours    string    `json:"opening_hours"`
	ContactNumber   string    `json:"contact_number"`
	Facilities      []string  `json:"facilities,omitempty"`
	DisplayInfo     string    `json:"display_info"`
	LastUpdated     time.Time `json:"last_updated"`

	// Заполняется только при радиусном фильтре
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// CarParkListResponse - список парковок со сведениями о снапшоте
type CarParkListResponse struct {
	CarParks   []CarParkDTO `json:"carparks"`
	SnapshotID string       `json:"snapshot_id"`
	CapturedAt time.Time    `json:"captured_at"`
	Total      int          `json:"total"`
	Stale      bool         `json:"stale"`
}

// StatsResponse - сводка по текущему снапшоту
type StatsResponse struct {
	Total          int       `json:"total"`
	StreetZones    int       `json:"street_zones"`
	Garages        int       `json:"garages"`
	WithCharging   int       `json:"with_charging"`
	TotalCapacity  int       `json:"total_capacity"`
	TotalChargers  int       `json:"total_chargers"`
	SnapshotID     string    `json:"snapshot_id"`
	CapturedAt     time.Time `json:"captured_at"`
	SnapshotAgeSec float64   `json:"snapshot_age_sec"`
}

// ConvertCarPark - доменная запись в DTO
func ConvertCarPark(p domain.CarPark) CarParkDTO {
	return CarParkDTO{
		Name:            p.Name,
		Address:         p.Address,
		Lat:             p.Lat,
		Lng:             p.Lng,
		Capacity:        p.Capacity,
		IsStreetParking: p.IsStreetParking,
		StreetTotal:     p.StreetParking.Total,
		StreetAvailable: p.StreetParking.Available,
		StreetFee:       p.StreetParking.Fee,
		StationCount:    p.Charging.StationCount,
		Provider:        p.Charging.Provider,
		ChargerType:     p.Charging.Type,
		HasCharging:     p.Charging.HasCharging,
		OpeningHours:    p.OpeningHours,
		ContactNumber:   p.ContactNumber,
		Facilities:      p.Facilities,
		DisplayInfo:     p.DisplayInfo,
		LastUpdated:     p.LastUpdated,
	}
}
