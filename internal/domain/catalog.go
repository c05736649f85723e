package domain

// DefaultFFFCatalog is the built-in fastest finger question set.
var DefaultFFFCatalog = []FFFQuestion{
	{
		Question:            "Order these events in the life of a butterfly chronologically:",
		Items:               []string{"Chrysalis", "Egg", "Caterpillar", "Butterfly"},
		CorrectOrderIndices: []int{1, 2, 0, 3},
	},
	{
		Question:            "Order these planets by their distance from the Sun, from closest to furthest:",
		Items:               []string{"Earth", "Mars", "Jupiter", "Venus"},
		CorrectOrderIndices: []int{3, 0, 1, 2},
	},
	{
		Question:            "Order these numbers from smallest to largest:",
		Items:               []string{"15", "7", "23", "10"},
		CorrectOrderIndices: []int{1, 3, 0, 2},
	},
	{
		Question:            "Order these US presidents chronologically by their first term:",
		Items:               []string{"Abraham Lincoln", "George Washington", "Thomas Jefferson", "John Adams"},
		CorrectOrderIndices: []int{1, 3, 2, 0},
	},
	{
		Question:            "Order these animals by average adult weight, from lightest to heaviest:",
		Items:               []string{"Mouse", "Cat", "Dog", "Elephant"},
		CorrectOrderIndices: []int{0, 1, 2, 3},
	},
	{
		Question:            "Order these historical periods chronologically:",
		Items:               []string{"Renaissance", "Middle Ages", "Ancient Egypt", "Industrial Revolution"},
		CorrectOrderIndices: []int{2, 1, 0, 3},
	},
}

// FallbackQuestion is served whenever question generation fails.
func FallbackQuestion(tier int) GameQuestion {
	return GameQuestion{
		Question:           "What is the capital of Australia?",
		Options:            []string{"Sydney", "Melbourne", "Canberra", "Perth"},
		CorrectAnswerIndex: 2,
		QuestionIndex:      Ptr(tier),
	}
}

// HeatQuestion picks the puzzle for heat index from catalog, wrapping around.
func HeatQuestion(catalog []FFFQuestion, index int) (FFFQuestion, bool) {
	if len(catalog) == 0 || index < 0 {
		return FFFQuestion{}, false
	}
	return catalog[index%len(catalog)], true
}
