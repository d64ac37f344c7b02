package feedback

import (
	"math"

	"github.com/tanema/gween/ease"
)

// springStiffness sets how quickly the critically damped spring settles.
// At 10 the residual at the end of the transition is below 0.1%.
const springStiffness = 10

// CriticalSpring eases like a spring with damping ratio 1: no overshoot,
// fast start and a long settle.
var CriticalSpring ease.TweenFunc = func(t, b, c, d float32) float32 {
	if d <= 0 || t >= d {
		return b + c
	}
	p := float64(t / d)
	w := springStiffness * p
	v := 1 - (1+w)*math.Exp(-w)
	return b + c*float32(v)
}
