package usecase

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/carpark-aggregator/internal/domain"
	apperrors "github.com/carpark-aggregator/internal/pkg/errors"
	"github.com/carpark-aggregator/internal/pkg/utils"
	"github.com/carpark-aggregator/internal/pkg/validator"
)

// collationTag — упорядочивание имён под гонконгские листинги
var collationTag = language.MustParse("zh-Hant")

// SanitizeBatch отбрасывает невалидные записи и сортирует остаток по
// имени с локальной коллацией. Пустой валидный остаток - провал партии.
func SanitizeBatch(parks []domain.CarPark, logger *zap.Logger) ([]domain.CarPark, error) {
	valid := make([]domain.CarPark, 0, len(parks))
	for _, park := range parks {
		if err := validateCarPark(&park); err != nil {
			// Полная запись в лог - так её проще разбирать руками.
			logger.Warn("Dropping invalid carpark record",
				zap.Any("carpark", park),
				zap.Error(err))
			continue
		}
		valid = append(valid, park)
	}

	if len(valid) == 0 {
		return nil, apperrors.ErrEmptyBatch
	}

	collator := collate.New(collationTag)
	sort.SliceStable(valid, func(i, j int) bool {
		return collator.CompareString(valid[i].Name, valid[j].Name) < 0
	})

	return valid, nil
}

func validateCarPark(park *domain.CarPark) error {
	// min/max теги не ловят NaN/Inf, проверяем конечность явно
	if !utils.ValidateCoordinates(park.Lat, park.Lng) {
		return fmt.Errorf("coordinates out of range: lat=%v lng=%v", park.Lat, park.Lng)
	}
	return validator.Validate(park)
}
