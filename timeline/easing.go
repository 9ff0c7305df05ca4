package timeline

import "math"

// Ease maps linear progress in [0,1] onto eased progress.
type Ease func(t float64) float64

// Linear applies no easing.
func Linear(t float64) float64 { return t }

// QuadOut decelerates towards the end.
func QuadOut(t float64) float64 {
	return 1 - (1-t)*(1-t)
}

// CubicInOut accelerates through the first half and decelerates through the second.
func CubicInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// SineInOut is a gentle symmetric curve, used for blinking and fades.
func SineInOut(t float64) float64 {
	return -(math.Cos(math.Pi*t) - 1) / 2
}

// ExpoIn starts almost still and ends abruptly.
func ExpoIn(t float64) float64 {
	if t <= 0 {
		return 0
	}
	return math.Pow(2, 10*t-10)
}

// BackOut overshoots the target slightly before settling.
func BackOut(t float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	return 1 + c3*math.Pow(t-1, 3) + c1*math.Pow(t-1, 2)
}

// Lerp performs linear interpolation between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
