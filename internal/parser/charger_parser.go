package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/carpark-aggregator/internal/domain"
)

// Selectors for the EV charger listing document.
const (
	selChargerItem   = "div.charger-location"
	selLocationName  = ".location-name"
	selChargerCount  = ".charger-count"
	selProviderName  = ".provider-name"
	selConnectorType = ".connector-type"
)

// ChargerParser извлекает сводки зарядных станций по площадкам
type ChargerParser struct {
	logger *zap.Logger
}

func NewChargerParser(logger *zap.Logger) *ChargerParser {
	return &ChargerParser{logger: logger}
}

// ParseAggregates возвращает по одной сводке на площадку.
// Providers/Types дедуплицированы с сохранением порядка появления.
func (p *ChargerParser) ParseAggregates(raw []byte) ([]domain.ChargerAggregate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse charger document: %w", err)
	}

	var aggregates []domain.ChargerAggregate
	doc.Find(selChargerItem).Each(func(i int, sel *goquery.Selection) {
		agg, err := p.extractAggregate(sel)
		if err != nil {
			fragment, _ := goquery.OuterHtml(sel)
			p.logger.Warn("Skipping unparsable charger record",
				zap.Int("index", i),
				zap.String("fragment", strings.TrimSpace(fragment)),
				zap.Error(err))
			return
		}
		aggregates = append(aggregates, agg)
	})

	return aggregates, nil
}

func (p *ChargerParser) extractAggregate(sel *goquery.Selection) (domain.ChargerAggregate, error) {
	name := text(sel, selLocationName)
	if name == "" {
		return domain.ChargerAggregate{}, fmt.Errorf("charger location name is missing")
	}

	agg := domain.ChargerAggregate{
		LocationName: name,
		Count:        intOrZero(text(sel, selChargerCount)),
		Providers:    distinctTexts(sel, selProviderName),
		Types:        distinctTexts(sel, selConnectorType),
	}

	// Без явного счетчика считаем по одному на провайдера.
	if agg.Count == 0 && len(agg.Providers) > 0 {
		agg.Count = len(agg.Providers)
	}

	return agg, nil
}

func distinctTexts(sel *goquery.Selection, selector string) []string {
	seen := make(map[string]struct{})
	var out []string
	sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
		v := strings.TrimSpace(s.Text())
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	})
	return out
}
