package core

import "math"

// Position3D is a world-space coordinate as reported by the game client.
// Y is the vertical axis; zone yaw rotates about it.
type Position3D struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Sub returns p - o.
func (p Position3D) Sub(o Position3D) Position3D {
	return Position3D{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z}
}

// Len returns the euclidean length of p.
func (p Position3D) Len() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// DistanceTo returns the euclidean distance between p and o.
func (p Position3D) DistanceTo(o Position3D) float64 {
	return p.Sub(o).Len()
}
