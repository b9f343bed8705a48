package journal

// Mood is how the user felt on check-in. The zero value means unset.
type Mood string

const (
	MoodUnset     Mood = ""
	MoodAwful     Mood = "Awful"
	MoodNotGreat  Mood = "Not Great"
	MoodOkay      Mood = "Okay"
	MoodGood      Mood = "Good"
	MoodFantastic Mood = "Fantastic"
)

// Moods lists the labels from worst to best.
var Moods = []Mood{MoodAwful, MoodNotGreat, MoodOkay, MoodGood, MoodFantastic}

// ParseMood maps a label to a Mood. Unknown labels report ok=false.
func ParseMood(label string) (Mood, bool) {
	if label == "" {
		return MoodUnset, true
	}
	for _, m := range Moods {
		if string(m) == label {
			return m, true
		}
	}
	return MoodUnset, false
}

// Score is the 1-based position in Moods, or 0 when unset or unknown.
func (m Mood) Score() int {
	for i, known := range Moods {
		if m == known {
			return i + 1
		}
	}
	return 0
}

func (m Mood) Emoji() string {
	switch m {
	case MoodAwful:
		return "😢"
	case MoodNotGreat:
		return "😕"
	case MoodOkay:
		return "😐"
	case MoodGood:
		return "😊"
	case MoodFantastic:
		return "😃"
	}
	return "❓"
}

func (m Mood) String() string {
	if m == MoodUnset {
		return "Not specified"
	}
	return string(m)
}
