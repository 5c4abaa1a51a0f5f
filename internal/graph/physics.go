package graph

import "math"

const (
	// auMeters is one astronomical unit in meters.
	auMeters = 149_597_870_700.0
	// gateJumpTime is the fixed cost of taking a stargate between systems.
	gateJumpTime = 9.0
	// alignDelay covers aligning and initiating warp.
	alignDelay = 2.0
)

// travelTime returns the seconds needed to travel one edge. Inter-system
// edges are stargate jumps with a fixed cost; intra-system edges use the
// warp flight model over the 3-D distance between the endpoints.
func (g *Graph) travelTime(from, to int64) float64 {
	a := g.data.Locations[from]
	b := g.data.Locations[to]

	if a.SystemID != b.SystemID {
		return gateJumpTime
	}

	dx := a.Position[0] - b.Position[0]
	dy := a.Position[1] - b.Position[1]
	dz := a.Position[2] - b.Position[2]
	dist := math.Sqrt(dx*dx + dy*dy + dz*dz)

	return warpTime(dist, g.ship.MaxWarpSpeed, g.ship.MaxSubwarpSpeed) + alignDelay
}

// warpTime is the closed-form in-warp flight time over dist meters.
//
// Warp drives accelerate exponentially at rate kAccel (= max warp speed),
// decelerate at kDecel, and drop out of warp at a fraction of subwarp speed.
// Acceleration covers a fixed 1 AU; deceleration covers maxSpeed/kDecel.
// When the leg is shorter than accel+decel distance the ship never reaches
// its top warp speed and the attainable peak is solved by balancing the two
// rates instead. The function is continuous and monotonic in dist.
func warpTime(dist, maxWarpSpeed, maxSubwarpSpeed float64) float64 {
	kAccel := maxWarpSpeed
	kDecel := math.Min(maxWarpSpeed/3, 2)
	dropoutSpeed := math.Min(maxSubwarpSpeed/2, 100)
	maxSpeed := maxWarpSpeed * auMeters

	accelDist := auMeters
	decelDist := maxSpeed / kDecel
	minimumDist := accelDist + decelDist

	cruiseTime := 0.0
	if minimumDist > dist {
		maxSpeed = dist * kAccel * kDecel / (kAccel + kDecel)
	} else {
		cruiseTime = (dist - minimumDist) / maxSpeed
	}

	accelTime := math.Log(maxSpeed/kAccel) / kAccel
	decelTime := math.Log(maxSpeed/dropoutSpeed) / kDecel

	return cruiseTime + accelTime + decelTime
}
