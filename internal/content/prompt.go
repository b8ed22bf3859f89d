package content

import (
	"fmt"
	"strings"
)

// SystemPrompt assembles the instruction sent ahead of the user's topic.
func SystemPrompt(platform Platform, tone Tone, industry Industry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert social media content creator specializing in %s content.\n\n", platform)
	fmt.Fprintf(&b, "Platform: %s\n", platform)
	fmt.Fprintf(&b, "Tone: %s\n", tone)
	fmt.Fprintf(&b, "Industry: %s\n", industry)
	fmt.Fprintf(&b, "Character limit: %d\n\n", platform.CharacterLimit())
	fmt.Fprintf(&b, "Instructions: %s\n\n", platform.Instruction())
	b.WriteString("Create engaging content that:\n")
	b.WriteString("- Fits within the character limit\n")
	b.WriteString("- Matches the specified tone\n")
	fmt.Fprintf(&b, "- Is relevant to the %s industry\n", industry)
	b.WriteString("- Includes appropriate emojis for engagement\n")
	b.WriteString("- Ends with relevant hashtags (but don't exceed the character limit)\n\n")
	b.WriteString("Return only the content text, no additional explanations.")

	return b.String()
}

// Prompt is a fully assembled generation request.
type Prompt struct {
	System   string
	User     string
	Platform Platform
	Tone     Tone
	Industry Industry
}

func BuildPrompt(topic string, platform Platform, tone Tone, industry Industry) Prompt {
	return Prompt{
		System:   SystemPrompt(platform, tone, industry),
		User:     topic,
		Platform: platform,
		Tone:     tone,
		Industry: industry,
	}
}
