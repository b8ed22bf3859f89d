package content

import "strings"

type Tone string

const (
	Professional  Tone = "professional"
	Casual        Tone = "casual"
	Funny         Tone = "funny"
	Inspirational Tone = "inspirational"
	Educational   Tone = "educational"
	Motivational  Tone = "motivational"
)

var tones = map[Tone]struct{}{
	Professional:  {},
	Casual:        {},
	Funny:         {},
	Inspirational: {},
	Educational:   {},
	Motivational:  {},
}

func ParseTone(raw string) (Tone, bool) {
	t := Tone(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := tones[t]
	return t, ok
}

type Industry string

const (
	Tech     Industry = "tech"
	Fashion  Industry = "fashion"
	Food     Industry = "food"
	Business Industry = "business"
	Health   Industry = "health"
	Fitness  Industry = "fitness"
	General  Industry = "general"
)

var industryHashtags = map[Industry][]string{
	Tech:     {"#technology", "#innovation", "#AI", "#startup", "#digital"},
	Fashion:  {"#fashion", "#style", "#trends", "#design", "#lifestyle"},
	Food:     {"#food", "#recipe", "#cooking", "#nutrition", "#foodie"},
	Business: {"#business", "#entrepreneur", "#strategy", "#growth", "#success"},
	Health:   {"#health", "#wellness", "#fitness", "#selfcare", "#lifestyle"},
	Fitness:  {"#fitness", "#workout", "#health", "#motivation", "#training"},
	General:  {"#inspiration", "#motivation", "#tips", "#advice", "#life"},
}

// ParseIndustry maps an empty value to General.
func ParseIndustry(raw string) (Industry, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return General, true
	}
	i := Industry(trimmed)
	_, ok := industryHashtags[i]
	return i, ok
}
