package repository

import (
	"context"

	"github.com/carpark-aggregator/internal/domain"
)

// SourceRepository получает сырой документ из внешнего источника
type SourceRepository interface {
	Fetch(ctx context.Context, src domain.Source) ([]byte, error)
}
