// Package content holds the fixed per-platform tables used to build
// generation prompts, pick hashtags and validate post copy.
package content

import (
	"strings"
	"unicode/utf8"
)

type Platform string

const (
	Instagram Platform = "instagram"
	LinkedIn  Platform = "linkedin"
	Twitter   Platform = "twitter"
	Facebook  Platform = "facebook"
)

type platformProfile struct {
	charLimit   int
	instruction string
	hashtags    []string
}

var platforms = map[Platform]platformProfile{
	Instagram: {
		charLimit:   2200,
		instruction: "Create an engaging Instagram post with emojis and relevant hashtags. Focus on visual storytelling and engagement.",
		hashtags:    []string{"#content", "#socialmedia", "#digitalmarketing", "#growth"},
	},
	LinkedIn: {
		charLimit:   3000,
		instruction: "Write a professional LinkedIn post that provides value to the audience. Include industry insights and professional tone.",
		hashtags:    []string{"#professional", "#business", "#leadership", "#innovation"},
	},
	Twitter: {
		charLimit:   280,
		instruction: "Create a concise, engaging tweet that fits within character limits. Use relevant hashtags and a conversational tone.",
		hashtags:    []string{"#trending", "#content", "#digital"},
	},
	Facebook: {
		charLimit:   63206,
		instruction: "Write a Facebook post that encourages engagement and community interaction. Use a friendly, accessible tone.",
		hashtags:    []string{"#community", "#engagement", "#social"},
	},
}

// Platforms returns the supported platforms in display order.
func Platforms() []Platform {
	return []Platform{Instagram, LinkedIn, Twitter, Facebook}
}

func ParsePlatform(raw string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := platforms[p]
	return p, ok
}

func (p Platform) CharacterLimit() int {
	return platforms[p].charLimit
}

func (p Platform) Instruction() string {
	return platforms[p].instruction
}

func (p Platform) String() string {
	return string(p)
}

// CharacterCount counts user-visible characters rather than bytes.
func CharacterCount(text string) int {
	return utf8.RuneCountInString(text)
}

// Fits reports whether text is within the platform's character limit.
func (p Platform) Fits(text string) bool {
	return CharacterCount(text) <= p.CharacterLimit()
}
