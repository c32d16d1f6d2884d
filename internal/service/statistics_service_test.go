package service

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
)

type mapCache struct {
	data    map[string]model.SeatStatistics
	gets    int
	sets    int
	failGet bool
}

func (c *mapCache) Get(_ context.Context, key string) (model.SeatStatistics, bool, error) {
	c.gets++
	if c.failGet {
		return model.SeatStatistics{}, false, errors.New("redis down")
	}
	s, ok := c.data[key]
	return s, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, s model.SeatStatistics) error {
	c.sets++
	c.data[key] = s
	return nil
}

func TestSeatStatisticsCountsConfirmedOnly(t *testing.T) {
	f := newFixture(t)
	f.mustLayout(t)
	ctx := context.Background()

	paid := f.mustBook(t, "A1", "B2")
	if err := f.reservations.ConfirmBooking(ctx, paid.BookingGroupID); err != nil {
		t.Fatal(err)
	}
	f.mustBook(t, "C1") // held only

	stats, err := f.stats.SeatStatistics(ctx, testVehicle, model.DateRange{From: testDate, To: testDate})
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.TotalConfirmed != 2 {
		t.Fatalf("total=%d", stats.TotalConfirmed)
	}
	if stats.BySeatType[model.SeatTypeStandard] != 1 || stats.BySeatType[model.SeatTypeVIP] != 1 {
		t.Fatalf("by type %v", stats.BySeatType)
	}
	if stats.ByPosition[model.PositionWindow] != 1 || stats.ByPosition[model.PositionAisle] != 1 {
		t.Fatalf("by position %v", stats.ByPosition)
	}
	if stats.ByFloor[1] != 2 {
		t.Fatalf("by floor %v", stats.ByFloor)
	}

	outside, err := f.stats.SeatStatistics(ctx, testVehicle, model.DateRange{From: testDate.AddDate(0, 0, 1), To: testDate.AddDate(0, 0, 7)})
	if err != nil || outside.TotalConfirmed != 0 {
		t.Fatalf("range filter broken: %+v %v", outside, err)
	}
}

func TestSeatStatisticsUsesCache(t *testing.T) {
	f := newFixture(t)
	f.mustLayout(t)
	cache := &mapCache{data: map[string]model.SeatStatistics{}}
	svc := NewStatisticsService(f.store, WithStatisticsCache(cache), WithLogger(quietLogger()))
	dr := model.DateRange{From: testDate, To: testDate}

	if _, err := svc.SeatStatistics(context.Background(), testVehicle, dr); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SeatStatistics(context.Background(), testVehicle, dr); err != nil {
		t.Fatal(err)
	}
	if cache.gets != 2 || cache.sets != 1 {
		t.Fatalf("gets=%d sets=%d", cache.gets, cache.sets)
	}

	cache.failGet = true
	if _, err := svc.SeatStatistics(context.Background(), testVehicle, dr); err != nil {
		t.Fatalf("cache failure must fall back to the store: %v", err)
	}
}

func TestSeatStatisticsValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.stats.SeatStatistics(ctx, "", model.DateRange{From: testDate, To: testDate}); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.stats.SeatStatistics(ctx, testVehicle, model.DateRange{From: testDate, To: testDate.AddDate(0, 0, -1)}); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
