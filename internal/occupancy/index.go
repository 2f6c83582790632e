package occupancy

import (
	"context"
	"fmt"
	"math"
)

// DefaultRadius is the exclusion radius around an unharvested crop, in world units.
const DefaultRadius = 32.0

// Querier answers the point query. LedgerTx implements it.
type Querier interface {
	QueryOccupancy(ctx context.Context, worldID string, x, y, radius float64) (bool, error)
}

// Index applies the configured radius policy to occupancy queries.
// The radius is fixed at construction and never taken from a client.
type Index struct {
	radius float64
}

// New creates an index with the given exclusion radius.
func New(radius float64) (*Index, error) {
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("occupancy radius must be a positive finite number, got %v", radius)
	}
	return &Index{radius: radius}, nil
}

// Radius returns the configured exclusion radius.
func (i *Index) Radius() float64 {
	return i.radius
}

// IsOccupied reports whether any unharvested crop in worldID lies within the
// radius of (x, y). Call it with the transaction of the atomic block that will
// insert the crop, otherwise the answer can be stale by the time of the insert.
func (i *Index) IsOccupied(ctx context.Context, q Querier, worldID string, x, y float64) (bool, error) {
	return q.QueryOccupancy(ctx, worldID, x, y, i.radius)
}

// Within reports whether (ax, ay) and (bx, by) are at most r apart.
func Within(ax, ay, bx, by, r float64) bool {
	dx := ax - bx
	dy := ay - by
	return dx*dx+dy*dy <= r*r
}
