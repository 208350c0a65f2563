package domain

import "math"

// Angular domains, in degrees.
const (
	MinYaw   = -180.0
	MaxYaw   = 180.0
	MinPitch = -90.0
	MaxPitch = 90.0
	MinFOV   = 30.0
	MaxFOV   = 120.0

	DefaultFOV = 100.0
)

// View is a camera pose on the panorama sphere.
type View struct {
	Yaw   float64
	Pitch float64
	FOV   float64
}

// DefaultView is the pose used when a scene does not specify one.
func DefaultView() View {
	return View{Yaw: 0, Pitch: 0, FOV: DefaultFOV}
}

// NormalizeYaw maps a finite yaw into (-180, 180]. Both -180 and 180 map to
// 180, so headings that differ by whole turns normalize to the same value.
// Non-finite input is returned unchanged.
func NormalizeYaw(yaw float64) float64 {
	if math.IsNaN(yaw) || math.IsInf(yaw, 0) {
		return yaw
	}
	y := math.Mod(yaw+180, 360)
	if y <= 0 {
		y += 360
	}
	return y - 180
}

// SameHeading reports whether two yaws point in the same direction.
// Comparison is exact after normalization; there is no tolerance.
func SameHeading(a, b float64) bool {
	return NormalizeYaw(a) == NormalizeYaw(b)
}

// ClampPitch limits pitch to [-90, 90]. Pitch never wraps.
func ClampPitch(pitch float64) float64 {
	return clamp(pitch, MinPitch, MaxPitch)
}

// ClampFOV limits a field of view to [30, 120].
func ClampFOV(fov float64) float64 {
	return clamp(fov, MinFOV, MaxFOV)
}

func YawInRange(yaw float64) bool     { return finiteIn(yaw, MinYaw, MaxYaw) }
func PitchInRange(pitch float64) bool { return finiteIn(pitch, MinPitch, MaxPitch) }
func FOVInRange(fov float64) bool     { return finiteIn(fov, MinFOV, MaxFOV) }

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Normalized returns the view with yaw wrapped and pitch/fov clamped.
func (v View) Normalized() View {
	return View{
		Yaw:   NormalizeYaw(v.Yaw),
		Pitch: ClampPitch(v.Pitch),
		FOV:   ClampFOV(v.FOV),
	}
}

// Equal compares two views, treating yaw headings that wrap at ±180 as equal.
func (v View) Equal(o View) bool {
	return SameHeading(v.Yaw, o.Yaw) && v.Pitch == o.Pitch && v.FOV == o.FOV
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Max(lo, math.Min(hi, v))
}

func finiteIn(v, lo, hi float64) bool {
	return IsFinite(v) && v >= lo && v <= hi
}
