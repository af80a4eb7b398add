package dispatch

// CheckAutoFail scans attributes in order and returns the index of the first
// one whose auto-fail threshold is set and met (playerValue >= autoFail).
// The second return is false when no attribute trips.
func CheckAutoFail(attrs Attributes) (int, bool) {
	for i, a := range attrs {
		if a.AutoFail != nil && a.PlayerValue >= *a.AutoFail {
			return i, true
		}
	}
	return -1, false
}

// CheckBonus reports whether any attribute meets its bonus threshold.
// Position in the list does not matter.
func CheckBonus(attrs Attributes) bool {
	for _, a := range attrs {
		if a.Bonus != nil && a.PlayerValue >= *a.Bonus {
			return true
		}
	}
	return false
}
