package vmath

// ClosestPointOnSegment projects q onto segment [a, b], clamped to the endpoints
// Degenerate segments return a
func ClosestPointOnSegment(q, a, b Vec2) Vec2 {
	ab := b.Sub(a)
	lenSq := ab.MagSq()
	if lenSq < Epsilon*Epsilon {
		return a
	}
	t := Clamp(q.Sub(a).Dot(ab)/lenSq, 0, 1)
	return a.Add(ab.Scale(t))
}

// DistanceToSegment returns distance from q to the closest point of [a, b]
func DistanceToSegment(q, a, b Vec2) float64 {
	return q.Distance(ClosestPointOnSegment(q, a, b))
}
