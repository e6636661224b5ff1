package seatmap

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math/rand"

	"github.com/dharmasatrya/flightbooking/pkg/currency"
)

// Inventory fetches the seat map for one flight leg. The production
// implementation talks to the carrier's inventory service; Generator stands
// in when none is configured.
type Inventory interface {
	SeatMap(ctx context.Context, flightID string, legIndex int, basePrice float64, cur string) (*Map, error)
}

// Generator fabricates deterministic seat inventory from a fixed aircraft
// configuration. Occupancy is seeded from the flight id and leg index so a
// refresh returns the same map.
type Generator struct {
	Aircraft      Aircraft
	OccupancyRate float64
}

func NewGenerator() *Generator {
	return &Generator{
		Aircraft:      DefaultAircraft(),
		OccupancyRate: 0.3,
	}
}

func (g *Generator) SeatMap(ctx context.Context, flightID string, legIndex int, basePrice float64, cur string) (*Map, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := fnv.New64a()
	h.Write([]byte(flightID))
	var leg [8]byte
	binary.BigEndian.PutUint64(leg[:], uint64(legIndex))
	h.Write(leg[:])
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	aircraft := g.Aircraft
	cols := aircraft.Columns
	seats := make([]Seat, 0, aircraft.Rows()*len(cols))

	for row := 1; row <= aircraft.Rows(); row++ {
		cabin, multiplier := aircraft.CabinFor(row)
		for colIdx, col := range cols {
			status := StatusAvailable
			if rng.Float64() < g.OccupancyRate {
				status = StatusOccupied
			}
			seats = append(seats, Seat{
				ID:       SeatID(row, col),
				Row:      row,
				Column:   col,
				Cabin:    cabin,
				Status:   status,
				Price:    currency.RoundCents(basePrice * multiplier),
				Features: featuresFor(cabin, positionFor(colIdx, len(cols))),
				Position: positionFor(colIdx, len(cols)),
			})
		}
	}

	return &Map{
		FlightID:  flightID,
		LegIndex:  legIndex,
		Aircraft:  aircraft,
		BasePrice: basePrice,
		Currency:  cur,
		Seats:     seats,
	}, nil
}

func positionFor(colIdx, total int) Position {
	switch {
	case colIdx == 0 || colIdx == total-1:
		return PositionWindow
	case colIdx == total/2-1 || colIdx == total/2:
		return PositionAisle
	default:
		return PositionMiddle
	}
}

func featuresFor(cabin CabinClass, pos Position) []Feature {
	var features []Feature
	switch cabin {
	case CabinFirst:
		features = append(features, FeatureLieFlat, FeatureExtraLegroom)
	case CabinBusiness:
		features = append(features, FeatureLieFlat, FeatureRecline)
	case CabinPremiumEconomy:
		features = append(features, FeatureExtraLegroom, FeatureRecline)
	default:
		features = append(features, FeatureRecline)
	}
	switch pos {
	case PositionWindow:
		features = append(features, FeatureWindowView)
	case PositionAisle:
		features = append(features, FeatureAisleAccess)
	}
	return features
}
