package viral

// DefaultKeywords maps engagement keywords to weights in [0,1]. Weights are
// summed raw when scoring: keyword-dense text saturates the keyword
// component well past 1.0 before the final clamp. The table can be replaced
// wholesale from configuration.
func DefaultKeywords() map[string]float64 {
	return map[string]float64{
		"secret":         0.9,
		"revelation":     0.95,
		"shocking":       0.8,
		"incredible":     0.7,
		"never":          0.6,
		"always":         0.5,
		"mistake":        0.7,
		"success":        0.6,
		"failure":        0.7,
		"transformation": 0.8,
		"method":         0.6,
		"technique":      0.5,
		"trick":          0.7,
		"tip":            0.6,
		"hack":           0.8,
		"lifehack":       0.9,
		"productivity":   0.6,
		"money":          0.9,
		"wealth":         0.9,
		"happiness":      0.7,
		"love":           0.6,
		"relationship":   0.5,
		"discovery":      0.8,
		"revolutionary":  0.9,
		"exclusive":      0.8,
		"unique":         0.7,
		"rare":           0.7,
		"powerful":       0.8,
		"effective":      0.7,
		"easy":           0.6,
		"free":           0.8,
		"save":           0.7,
		"win":            0.8,
		"lose":           0.7,
		"change":         0.6,
		"improve":        0.7,
		"create":         0.6,
		"achieve":        0.7,
		"master":         0.7,
		"dominate":       0.8,
		"overcome":       0.7,
		"solve":          0.7,
		"discover":       0.7,
		"learn":          0.6,
		"motivate":       0.7,
		"inspire":        0.7,
		"transform":      0.8,
		"invent":         0.8,
	}
}

var emotionWords = []string{
	"love", "hate", "joy", "sadness", "anger", "fear", "surprise", "disgust",
}

var interrogatives = []string{
	"why", "how", "when", "where", "who", "what",
}

var determinerPrefixes = []string{
	"The ", "A ", "An ", "This ", "That ", "These ", "Those ",
}

var listMarkers = []string{
	"first", "second", "third", "1.", "2.", "3.",
}
