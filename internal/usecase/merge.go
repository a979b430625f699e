package usecase

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/carpark-aggregator/internal/domain"
)

// ChargerIndex - таблица сводок зарядок по нормализованному имени площадки
type ChargerIndex map[string]domain.ChargerAggregate

// normalizeJoinKey срезает пробелы и регистр: источники ведутся независимо
// и дрейфуют; отображаемое имя при этом не меняется.
func normalizeJoinKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// BuildChargerIndex сворачивает сводки в таблицу соединения.
// Дубликаты по одной площадке складываются.
func BuildChargerIndex(aggregates []domain.ChargerAggregate) ChargerIndex {
	index := make(ChargerIndex, len(aggregates))
	for _, agg := range aggregates {
		key := normalizeJoinKey(agg.LocationName)
		if key == "" {
			continue
		}

		existing, ok := index[key]
		if !ok {
			index[key] = agg
			continue
		}

		existing.Count += agg.Count
		existing.Providers = unionOrdered(existing.Providers, agg.Providers)
		existing.Types = unionOrdered(existing.Types, agg.Types)
		index[key] = existing
	}
	return index
}

// MergeCharging присоединяет сводки зарядок к парковкам по имени.
// Без совпадения поля зарядки остаются нулевыми и hasCharging=false -
// частично заполненных записей не бывает.
func MergeCharging(parks []domain.CarPark, index ChargerIndex, logger *zap.Logger) []domain.CarPark {
	matched := make(map[string]struct{}, len(index))

	merged := make([]domain.CarPark, len(parks))
	for i, park := range parks {
		key := normalizeJoinKey(park.Name)
		if agg, ok := index[key]; ok {
			park.Charging = domain.ChargingInfo{
				StationCount: agg.Count,
				Provider:     strings.Join(agg.Providers, ", "),
				Type:         strings.Join(agg.Types, ", "),
				HasCharging:  true,
			}
			matched[key] = struct{}{}
		}

		park.DisplayInfo = buildDisplayInfo(park)
		merged[i] = park
	}

	// Несоединённые сводки - диагностический сигнал, не тихий отброс.
	for key, agg := range index {
		if _, ok := matched[key]; !ok {
			logger.Warn("Charger aggregate matched no carpark",
				zap.String("location_name", agg.LocationName),
				zap.Int("count", agg.Count))
		}
	}

	return merged
}

// buildDisplayInfo собирает человекочитаемую сводку в фиксированном порядке
func buildDisplayInfo(p domain.CarPark) string {
	var parts []string

	if p.IsStreetParking {
		parts = append(parts, fmt.Sprintf("Street parking: %d units", p.Capacity))
		if p.StreetParking.Fee != "" {
			parts = append(parts, fmt.Sprintf("Fee: %s", p.StreetParking.Fee))
		}
	} else {
		parts = append(parts, fmt.Sprintf("Parking units: %d", p.Capacity))
		if p.StreetParking.Total > 0 {
			parts = append(parts, fmt.Sprintf("Street parking: %d units", p.StreetParking.Total))
		}
		if p.StreetParking.Fee != "" {
			parts = append(parts, fmt.Sprintf("Street fee: %s", p.StreetParking.Fee))
		}
	}

	if p.Charging.HasCharging {
		parts = append(parts, fmt.Sprintf("Charging stations: %d", p.Charging.StationCount))
	}

	if p.OpeningHours != "" {
		parts = append(parts, fmt.Sprintf("Hours: %s", p.OpeningHours))
	}

	return strings.Join(parts, " | ")
}

func unionOrdered(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, v := range base {
		seen[v] = struct{}{}
	}
	for _, v := range extra {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		base = append(base, v)
	}
	return base
}
