package dispatch

import "math"

const (
	// referenceRadius and referenceStep give the sampling density for the
	// 600×600 layout; other layouts scale the step with their radius.
	referenceRadius = 260.0
	referenceStep   = 5.0
)

// SampleStep is the grid spacing used by OverlapPercent for this layout.
func (l Layout) SampleStep() float64 {
	if l.MaxRadius <= 0 {
		return referenceStep
	}
	return referenceStep * l.MaxRadius / referenceRadius
}

// OverlapPercent estimates how much of the difficulty polygon the ability
// polygon covers, as an integer percentage. It samples a uniform grid over
// the layout's bounding square. A difficulty polygon that captures no sample
// yields 0.
//
// The result is for display only; resolution never reads it.
func OverlapPercent(attrs Attributes, l Layout) int {
	if len(attrs) < MinAttributes {
		return 0
	}
	ability := PolygonFor(attrs, Ability, l)
	difficulty := PolygonFor(attrs, Difficulty, l)

	step := l.SampleStep()
	n := int(math.Floor(2*l.MaxRadius/step + 1e-9))
	x0 := l.Center.X - l.MaxRadius
	y0 := l.Center.Y - l.MaxRadius

	var taskCount, overlapCount int
	for i := 0; i <= n; i++ {
		x := x0 + float64(i)*step
		for j := 0; j <= n; j++ {
			pt := Point{X: x, Y: y0 + float64(j)*step}
			if !difficulty.Contains(pt) {
				continue
			}
			taskCount++
			if ability.Contains(pt) {
				overlapCount++
			}
		}
	}
	if taskCount == 0 {
		return 0
	}
	return int(math.Round(100 * float64(overlapCount) / float64(taskCount)))
}
