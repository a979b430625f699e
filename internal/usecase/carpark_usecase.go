package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/carpark-aggregator/internal/pkg/errors"
	"github.com/carpark-aggregator/internal/pkg/utils"
	"github.com/carpark-aggregator/internal/usecase/dto"
)

// CarParkUseCase - читающая сторона поверх конвейера: список,
// радиусный фильтр, экспорт, сводка
type CarParkUseCase struct {
	ingestUC    *IngestUseCase
	logger      *zap.Logger
	snapshotTTL time.Duration
}

func NewCarParkUseCase(ingestUC *IngestUseCase, snapshotTTL time.Duration, logger *zap.Logger) *CarParkUseCase {
	return &CarParkUseCase{
		ingestUC:    ingestUC,
		logger:      logger,
		snapshotTTL: snapshotTTL,
	}
}

// List отдает снапшот, при желании отфильтрованный по радиусу от точки
func (uc *CarParkUseCase) List(ctx context.Context, req dto.ListCarParksRequest) (*dto.CarParkListResponse, error) {
	if req.Lat != nil || req.Lng != nil || req.Radius != nil {
		// Фильтр либо задан целиком, либо не задан вовсе.
		if !req.HasRadiusFilter() {
			return nil, errors.ErrInvalidRequest
		}
		if !utils.ValidateCoordinates(*req.Lat, *req.Lng) {
			return nil, errors.ErrInvalidCoordinates
		}
		if !utils.ValidateRadius(*req.Radius) {
			return nil, errors.ErrInvalidRadius
		}
	}

	snapshot, err := uc.ingestUC.Ingest(ctx)
	if err != nil {
		uc.logger.Error("Ingest failed with no fallback", zap.Error(err))
		return nil, errors.ErrNoDataAvailable
	}

	carparks := make([]dto.CarParkDTO, 0, len(snapshot.Records))
	for _, record := range snapshot.Records {
		item := dto.ConvertCarPark(record)

		if req.HasRadiusFilter() {
			dist := utils.HaversineDistance(*req.Lat, *req.Lng, record.Lat, record.Lng)
			if dist > *req.Radius {
				continue
			}
			item.DistanceKm = &dist
		}

		carparks = append(carparks, item)
	}

	return &dto.CarParkListResponse{
		CarParks:   carparks,
		SnapshotID: snapshot.ID,
		CapturedAt: snapshot.CapturedAt,
		Total:      len(carparks),
		Stale:      !snapshot.IsFresh(time.Now(), uc.snapshotTTL),
	}, nil
}

// Stats - агрегаты по текущему снапшоту
func (uc *CarParkUseCase) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	snapshot, err := uc.ingestUC.Ingest(ctx)
	if err != nil {
		return nil, errors.ErrNoDataAvailable
	}

	resp := &dto.StatsResponse{
		Total:          snapshot.Count,
		SnapshotID:     snapshot.ID,
		CapturedAt:     snapshot.CapturedAt,
		SnapshotAgeSec: snapshot.Age(time.Now()).Seconds(),
	}
	for _, record := range snapshot.Records {
		if record.IsStreetParking {
			resp.StreetZones++
		} else {
			resp.Garages++
		}
		if record.Charging.HasCharging {
			resp.WithCharging++
			resp.TotalChargers += record.Charging.StationCount
		}
		resp.TotalCapacity += record.Capacity
	}

	return resp, nil
}

// ExportXLSX рендерит текущий снапшот в книгу с листами carparks и summary
func (uc *CarParkUseCase) ExportXLSX(ctx context.Context) ([]byte, error) {
	snapshot, err := uc.ingestUC.Ingest(ctx)
	if err != nil {
		return nil, errors.ErrNoDataAvailable
	}

	f := excelize.NewFile()
	dataSheet := "carparks"
	summarySheet := "summary"
	f.SetSheetName("Sheet1", dataSheet)
	f.NewSheet(summarySheet)

	headers := []string{
		"Name", "Address", "Latitude", "Longitude", "Capacity",
		"Street Parking", "Street Spaces", "Street Fee",
		"Charging Stations", "Providers", "Connector Types",
		"Opening Hours", "Contact", "Summary",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(dataSheet, cell, h)
	}

	for rowIdx, record := range snapshot.Records {
		row := rowIdx + 2
		values := []interface{}{
			record.Name,
			record.Address,
			record.Lat,
			record.Lng,
			record.Capacity,
			record.IsStreetParking,
			record.StreetParking.Total,
			record.StreetParking.Fee,
			record.Charging.StationCount,
			record.Charging.Provider,
			record.Charging.Type,
			record.OpeningHours,
			record.ContactNumber,
			record.DisplayInfo,
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			_ = f.SetCellValue(dataSheet, cell, v)
		}
	}

	_ = f.SetCellValue(summarySheet, "A1", "Carpark Snapshot")
	_ = f.SetCellValue(summarySheet, "A3", "Snapshot ID")
	_ = f.SetCellValue(summarySheet, "B3", snapshot.ID)
	_ = f.SetCellValue(summarySheet, "A4", "Captured At")
	_ = f.SetCellValue(summarySheet, "B4", snapshot.CapturedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A5", "Records")
	_ = f.SetCellValue(summarySheet, "B5", snapshot.Count)

	buf, err := f.WriteToBuffer()
	if err != nil {
		uc.logger.Error("Failed to build XLSX export", zap.Error(err))
		return nil, errors.ErrExportError
	}
	return buf.Bytes(), nil
}

// ExportFilename - имя файла выгрузки по времени снапшота
func ExportFilename(capturedAt time.Time) string {
	return fmt.Sprintf("carparks-%s.xlsx", capturedAt.Format("20060102-150405"))
}
