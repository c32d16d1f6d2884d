package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
)

// StatisticsService aggregates confirmed bookings.
type StatisticsService struct {
	store StatisticsStore
	deps
}

// NewStatisticsService wires a StatisticsService.  Pass WithStatisticsCache
// to cache results.
func NewStatisticsService(store StatisticsStore, opts ...Option) *StatisticsService {
	return &StatisticsService{store: store, deps: newDeps(opts)}
}

// SeatStatistics counts confirmed bookings of a vehicle whose departure
// date lies within dr (inclusive), by seat type, position and floor.
func (s *StatisticsService) SeatStatistics(ctx context.Context, vehicleID string, dr model.DateRange) (model.SeatStatistics, error) {
	if strings.TrimSpace(vehicleID) == "" {
		return model.SeatStatistics{}, ValidationError{Field: "vehicle_id", Msg: "required"}
	}
	if dr.From.IsZero() || dr.To.IsZero() {
		return model.SeatStatistics{}, ValidationError{Field: "date_range", Msg: "from and to are required"}
	}
	dr = model.DateRange{From: dateOnly(dr.From), To: dateOnly(dr.To)}
	if dr.To.Before(dr.From) {
		return model.SeatStatistics{}, ValidationError{Field: "date_range", Msg: "to is before from"}
	}

	key := statisticsKey(vehicleID, dr)
	if s.cache != nil {
		stats, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.WithError(err).WithField("key", key).Warn("statistics cache read failed")
		} else if ok {
			return stats, nil
		}
	}

	rows, err := s.store.ConfirmedSeatCounts(ctx, vehicleID, dr)
	if err != nil {
		return model.SeatStatistics{}, fmt.Errorf("seat statistics: %w", err)
	}
	stats := model.SeatStatistics{
		VehicleID:  vehicleID,
		From:       dr.From.Format(model.DateLayout),
		To:         dr.To.Format(model.DateLayout),
		BySeatType: make(map[model.SeatType]int),
		ByPosition: make(map[model.SeatPosition]int),
		ByFloor:    make(map[int]int),
	}
	for _, r := range rows {
		stats.BySeatType[r.SeatType] += r.Count
		stats.ByPosition[r.Position] += r.Count
		stats.ByFloor[r.Floor] += r.Count
		stats.TotalConfirmed += r.Count
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats); err != nil {
			s.log.WithError(err).WithField("key", key).Warn("statistics cache write failed")
		}
	}
	return stats, nil
}

func statisticsKey(vehicleID string, dr model.DateRange) string {
	return fmt.Sprintf("seat-stats:%s:%s:%s", vehicleID, dr.From.Format(model.DateLayout), dr.To.Format(model.DateLayout))
}
