package dto

// ListCarParksRequest - параметры чтения списка парковок.
// Радиусный фильтр опционален и накладывается поверх снапшота.
type ListCarParksRequest struct {
	Lat    *float64 `query:"lat"`
	Lng    *float64 `query:"lng"`
	Radius *float64 `query:"radius"` // километры
}

// HasRadiusFilter - запрошен ли геофильтр целиком
func (r ListCarParksRequest) HasRadiusFilter() bool {
	return r.Lat != nil && r.Lng != nil && r.Radius != nil
}
