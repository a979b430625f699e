package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/carpark-aggregator/internal/pkg/errors"
	"github.com/carpark-aggregator/internal/pkg/utils"
	"github.com/carpark-aggregator/internal/usecase"
	"github.com/carpark-aggregator/internal/usecase/dto"
)

// CarParkHandler - HTTP обработчик парковочных эндпоинтов
type CarParkHandler struct {
	carparkUC *usecase.CarParkUseCase
	logger    *zap.Logger
}

func NewCarParkHandler(carparkUC *usecase.CarParkUseCase, logger *zap.Logger) *CarParkHandler {
	return &CarParkHandler{
		carparkUC: carparkUC,
		logger:    logger,
	}
}

// List - список парковок, опционально в радиусе от точки
func (h *CarParkHandler) List(c *fiber.Ctx) error {
	var req dto.ListCarParksRequest

	for _, q := range []struct {
		name string
		dst  **float64
	}{
		{"lat", &req.Lat},
		{"lng", &req.Lng},
		{"radius", &req.Radius},
	} {
		raw := c.Query(q.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
				"param": q.name,
			}))
		}
		*q.dst = &v
	}

	result, err := h.carparkUC.List(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total: result.Total,
		Stale: result.Stale,
	})
}

// Stats - сводка по текущему снапшоту
func (h *CarParkHandler) Stats(c *fiber.Ctx) error {
	result, err := h.carparkUC.Stats(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}

// Export - выгрузка текущего снапшота в XLSX
func (h *CarParkHandler) Export(c *fiber.Ctx) error {
	stats, err := h.carparkUC.Stats(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	data, err := h.carparkUC.ExportXLSX(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+usecase.ExportFilename(stats.CapturedAt)+`"`)
	return c.Send(data)
}
