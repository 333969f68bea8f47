package model

// QuestionType defines the kind of prompt a player faces.
type QuestionType string

const (
	QuestionTruth QuestionType = "truth"
	QuestionDare  QuestionType = "dare"
)

// ValidQuestionType reports whether t is truth or dare.
func ValidQuestionType(t QuestionType) bool {
	return t == QuestionTruth || t == QuestionDare
}

// Question is a single prompt shown to the current player. Immutable once
// created; either AI-generated for the turn or drawn from the fallback pool.
type Question struct {
	ID   string       `json:"id" bson:"id"`
	Text string       `json:"text" bson:"text"`
	Type QuestionType `json:"type" bson:"type"`
}

// QuestionHistory tracks which prompt texts a player has already seen,
// split by type. A text recorded here must never be offered to the same
// player for the same type again.
type QuestionHistory struct {
	Truths []string `json:"truths" bson:"truths"`
	Dares  []string `json:"dares" bson:"dares"`
}

// Seen returns the texts already shown for the given type.
func (h *QuestionHistory) Seen(t QuestionType) []string {
	if t == QuestionTruth {
		return h.Truths
	}
	return h.Dares
}

// Contains reports whether text was already shown for the given type.
func (h *QuestionHistory) Contains(t QuestionType, text string) bool {
	for _, s := range h.Seen(t) {
		if s == text {
			return true
		}
	}
	return false
}

// Record adds text to the history for the given type. Duplicate texts are
// ignored so the history stays a set.
func (h *QuestionHistory) Record(t QuestionType, text string) {
	if h.Contains(t, text) {
		return
	}
	if t == QuestionTruth {
		h.Truths = append(h.Truths, text)
	} else {
		h.Dares = append(h.Dares, text)
	}
}

// Clone returns a deep copy of the history.
func (h *QuestionHistory) Clone() *QuestionHistory {
	c := &QuestionHistory{
		Truths: make([]string, len(h.Truths)),
		Dares:  make([]string, len(h.Dares)),
	}
	copy(c.Truths, h.Truths)
	copy(c.Dares, h.Dares)
	return c
}
