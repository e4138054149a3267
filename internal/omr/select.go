package omr

// NoSelection is the index returned when no bubble is accepted.
const NoSelection = -1

// BestIndex returns the index of the highest score. Ties go to the lowest
// index: a later bubble must be strictly greater to take over. It returns
// NoSelection for an empty list.
func BestIndex(scores []float64) int {
	if len(scores) == 0 {
		return NoSelection
	}
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}

// SelectIndex applies the fill threshold to BestIndex. The winner is
// accepted only when its score is strictly greater than threshold.
func SelectIndex(scores []float64, threshold float64) int {
	best := BestIndex(scores)
	if best == NoSelection || scores[best] <= threshold {
		return NoSelection
	}
	return best
}

// Label maps a selected index into the choice list of questionID. It
// returns "" for NoSelection or an index past the end of the list.
func (t *Template) Label(questionID string, index int) string {
	choices := t.ChoicesFor(questionID)
	if index < 0 || index >= len(choices) {
		return ""
	}
	return choices[index]
}
