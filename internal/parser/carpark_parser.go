package parser

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/carpark-aggregator/internal/domain"
)

// Selectors for the parking listing document. The markup is third-party;
// only the behavior over well-formed fragments is guaranteed.
const (
	selGarageItem   = "div.carpark-item"
	selGarageName   = ".carpark-name"
	selAddress      = ".carpark-address"
	selCapacity     = ".carpark-capacity"
	selStreetBlock  = ".street-parking"
	selStreetTotal  = ".street-total"
	selStreetFee    = ".street-fee"
	selOpeningHours = ".opening-hours"
	selContact      = ".contact-number"
	selFacilityTag  = ".facility-tag"

	selZoneItem  = "div.street-zone-item"
	selZoneName  = ".zone-name"
	selZoneTotal = ".zone-total"
	selZoneFee   = ".zone-fee"

	attrLat = "data-lat"
	attrLng = "data-lng"
)

// CarParkParser извлекает гаражи и уличные зоны из листинга парковок
type CarParkParser struct {
	logger *zap.Logger
}

func NewCarParkParser(logger *zap.Logger) *CarParkParser {
	return &CarParkParser{logger: logger}
}

// ParseCarParks возвращает гаражные парковки из документа.
// Сломанная запись пропускается и логируется, соседние не страдают.
func (p *CarParkParser) ParseCarParks(raw []byte) ([]domain.CarPark, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse carpark document: %w", err)
	}

	var parks []domain.CarPark
	doc.Find(selGarageItem).Each(func(i int, sel *goquery.Selection) {
		park, err := p.extractGarage(sel)
		if err != nil {
			fragment, _ := goquery.OuterHtml(sel)
			p.logger.Warn("Skipping unparsable carpark record",
				zap.Int("index", i),
				zap.String("fragment", strings.TrimSpace(fragment)),
				zap.Error(err))
			return
		}
		parks = append(parks, park)
	})

	return parks, nil
}

// ParseStreetZones возвращает уличные зоны, материализованные как парковки
func (p *CarParkParser) ParseStreetZones(raw []byte) ([]domain.CarPark, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse street zone document: %w", err)
	}

	var zones []domain.CarPark
	doc.Find(selZoneItem).Each(func(i int, sel *goquery.Selection) {
		zone, err := p.extractStreetZone(sel)
		if err != nil {
			fragment, _ := goquery.OuterHtml(sel)
			p.logger.Warn("Skipping unparsable street zone record",
				zap.Int("index", i),
				zap.String("fragment", strings.TrimSpace(fragment)),
				zap.Error(err))
			return
		}
		zones = append(zones, zone)
	})

	return zones, nil
}

func (p *CarParkParser) extractGarage(sel *goquery.Selection) (domain.CarPark, error) {
	name := text(sel, selGarageName)
	if name == "" {
		return domain.CarPark{}, fmt.Errorf("carpark name is missing")
	}

	lat, lng, err := coordinates(sel)
	if err != nil {
		return domain.CarPark{}, err
	}

	park := domain.CarPark{
		Name:          name,
		Address:       text(sel, selAddress),
		Lat:           lat,
		Lng:           lng,
		Capacity:      intOrZero(text(sel, selCapacity)),
		OpeningHours:  textOrDefault(sel, selOpeningHours, domain.DefaultOpeningHours),
		ContactNumber: textOrDefault(sel, selContact, domain.DefaultContactNumber),
	}

	// Вложенный блок уличных мест опционален; без него остаются нули.
	street := sel.Find(selStreetBlock)
	if street.Length() > 0 {
		total := intOrZero(text(street, selStreetTotal))
		park.StreetParking = domain.StreetParkingInfo{
			Total:     total,
			Available: total,
			Fee:       text(street, selStreetFee),
		}
	}

	sel.Find(selFacilityTag).Each(func(_ int, tag *goquery.Selection) {
		if v := strings.TrimSpace(tag.Text()); v != "" {
			park.Facilities = append(park.Facilities, v)
		}
	})

	return park, nil
}

func (p *CarParkParser) extractStreetZone(sel *goquery.Selection) (domain.CarPark, error) {
	zoneName := text(sel, selZoneName)
	if zoneName == "" {
		return domain.CarPark{}, fmt.Errorf("street zone name is missing")
	}

	lat, lng, err := coordinates(sel)
	if err != nil {
		return domain.CarPark{}, err
	}

	total := intOrZero(text(sel, selZoneTotal))

	// Живого источника занятости нет: available всегда равен total.
	return domain.CarPark{
		Name:            domain.StreetZonePrefix + zoneName,
		Address:         text(sel, selAddress),
		Lat:             lat,
		Lng:             lng,
		Capacity:        total,
		IsStreetParking: true,
		StreetParking: domain.StreetParkingInfo{
			Total:     total,
			Available: total,
			Fee:       text(sel, selZoneFee),
		},
		OpeningHours:  textOrDefault(sel, selOpeningHours, domain.DefaultOpeningHours),
		ContactNumber: textOrDefault(sel, selContact, domain.DefaultContactNumber),
	}, nil
}

func coordinates(sel *goquery.Selection) (float64, float64, error) {
	latAttr, okLat := sel.Attr(attrLat)
	lngAttr, okLng := sel.Attr(attrLng)
	if !okLat || !okLng {
		return 0, 0, fmt.Errorf("coordinates are missing")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latAttr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q", latAttr)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngAttr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q", lngAttr)
	}
	return lat, lng, nil
}

func text(sel *goquery.Selection, selector string) string {
	return strings.TrimSpace(sel.Find(selector).First().Text())
}

func textOrDefault(sel *goquery.Selection, selector, def string) string {
	if v := text(sel, selector); v != "" {
		return v
	}
	return def
}

func intOrZero(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return 0
	}
	return v
}
