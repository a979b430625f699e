package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/carpark-aggregator/internal/domain"
	"github.com/carpark-aggregator/internal/parser"
)

const carparkListingHTML = `
<html><body>
  <div class="carpark-item" data-lat="22.3015" data-lng="114.1722">
    <span class="carpark-name">Harbour City Car Park</span>
    <span class="carpark-address">3-27 Canton Road, Tsim Sha Tsui</span>
    <span class="carpark-capacity">280</span>
    <div class="street-parking">
      <span class="street-total">15</span>
      <span class="street-fee">$8/hr</span>
    </div>
    <span class="opening-hours">07:00-23:00</span>
    <span class="contact-number">+852 2118 8666</span>
    <span class="facility-tag">EV Charging</span>
    <span class="facility-tag">Disabled Access</span>
  </div>
  <div class="carpark-item" data-lat="22.2783" data-lng="114.1747">
    <span class="carpark-name">Central Plaza Garage</span>
    <span class="carpark-capacity">120</span>
  </div>
  <div class="carpark-item">
    <span class="carpark-name">Broken Garage Without Coordinates</span>
  </div>
</body></html>`

const streetZoneListingHTML = `
<html><body>
  <div class="street-zone-item" data-lat="22.2850" data-lng="114.1910">
    <span class="zone-name">Causeway Bay Zone 3</span>
    <span class="zone-total">20</span>
    <span class="zone-fee">$2/hr</span>
  </div>
  <div class="street-zone-item" data-lat="22.3360" data-lng="114.1760">
    <span class="zone-name">Mong Kok Zone 1</span>
    <span class="zone-total">35</span>
  </div>
</body></html>`

func TestCarParkParser_ParseCarParks(t *testing.T) {
	p := parser.NewCarParkParser(zap.NewNop())

	parks, err := p.ParseCarParks([]byte(carparkListingHTML))
	assert.NoError(t, err)
	// Запись без координат пропускается, соседние выживают
	assert.Len(t, parks, 2)

	t.Run("fully populated garage", func(t *testing.T) {
		park := parks[0]
		assert.Equal(t, "Harbour City Car Park", park.Name)
		assert.Equal(t, "3-27 Canton Road, Tsim Sha Tsui", park.Address)
		assert.Equal(t, 22.3015, park.Lat)
		assert.Equal(t, 114.1722, park.Lng)
		assert.Equal(t, 280, park.Capacity)
		assert.False(t, park.IsStreetParking)
		assert.Equal(t, 15, park.StreetParking.Total)
		assert.Equal(t, 15, park.StreetParking.Available)
		assert.Equal(t, "$8/hr", park.StreetParking.Fee)
		assert.Equal(t, "07:00-23:00", park.OpeningHours)
		assert.Equal(t, "+852 2118 8666", park.ContactNumber)
		assert.Equal(t, []string{"EV Charging", "Disabled Access"}, park.Facilities)
	})

	t.Run("missing fields fall back to defaults", func(t *testing.T) {
		park := parks[1]
		assert.Equal(t, "Central Plaza Garage", park.Name)
		assert.Equal(t, domain.DefaultOpeningHours, park.OpeningHours)
		assert.Equal(t, domain.DefaultContactNumber, park.ContactNumber)
		assert.Equal(t, 0, park.StreetParking.Total)
		assert.Empty(t, park.Facilities)
	})
}

func TestCarParkParser_ParseStreetZones(t *testing.T) {
	p := parser.NewCarParkParser(zap.NewNop())

	zones, err := p.ParseStreetZones([]byte(streetZoneListingHTML))
	assert.NoError(t, err)
	assert.Len(t, zones, 2)

	t.Run("zone materialized as street carpark", func(t *testing.T) {
		zone := zones[0]
		assert.Equal(t, "Street Parking Zone - Causeway Bay Zone 3", zone.Name)
		assert.True(t, zone.IsStreetParking)
		assert.Equal(t, 20, zone.Capacity)
		assert.Equal(t, 20, zone.StreetParking.Total)
		// Живого источника занятости нет: available = total
		assert.Equal(t, 20, zone.StreetParking.Available)
		assert.Equal(t, "$2/hr", zone.StreetParking.Fee)
	})

	t.Run("zone without fee keeps defaults", func(t *testing.T) {
		zone := zones[1]
		assert.Equal(t, "Street Parking Zone - Mong Kok Zone 1", zone.Name)
		assert.Empty(t, zone.StreetParking.Fee)
		assert.Equal(t, domain.DefaultOpeningHours, zone.OpeningHours)
	})
}

func TestCarParkParser_EmptyDocument(t *testing.T) {
	p := parser.NewCarParkParser(zap.NewNop())

	parks, err := p.ParseCarParks([]byte("<html><body></body></html>"))
	assert.NoError(t, err)
	assert.Empty(t, parks)

	zones, err := p.ParseStreetZones([]byte("<html><body></body></html>"))
	assert.NoError(t, err)
	assert.Empty(t, zones)
}
