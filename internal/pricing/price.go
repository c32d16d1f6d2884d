// Package pricing derives seat prices from seat type and position.
package pricing

import (
	"math"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
)

// DefaultBasePrice is used when a Calculator is built with a non-positive base.
const DefaultBasePrice int64 = 100

var typeMultiplier = map[model.SeatType]float64{
	model.SeatTypeStandard: 1.0,
	model.SeatTypeVIP:      1.5,
	model.SeatTypeSleeper:  2.0,
}

var positionMultiplier = map[model.SeatPosition]float64{
	model.PositionWindow: 1.1,
	model.PositionAisle:  1.05,
	model.PositionMiddle: 1.0,
}

// Calculator prices seats as base × type multiplier × position multiplier,
// rounded to the nearest currency unit.  It holds no state beyond the base
// price and is safe for concurrent use.
type Calculator struct {
	BasePrice int64
}

// NewCalculator returns a Calculator for the given base price.
func NewCalculator(base int64) Calculator {
	if base <= 0 {
		base = DefaultBasePrice
	}
	return Calculator{BasePrice: base}
}

// Price returns the price of a seat.  Unknown types and positions fall back
// to the neutral multiplier of 1.0.
func (c Calculator) Price(seatType model.SeatType, position model.SeatPosition) int64 {
	base := c.BasePrice
	if base <= 0 {
		base = DefaultBasePrice
	}
	tm, ok := typeMultiplier[seatType]
	if !ok {
		tm = 1.0
	}
	pm, ok := positionMultiplier[position]
	if !ok {
		pm = 1.0
	}
	return int64(math.Round(float64(base) * tm * pm))
}
