package model

import "time"

type Generation struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Prompt           string    `json:"prompt"`
	GeneratedContent string    `json:"generated_content"`
	Platform         string    `json:"platform"`
	Tone             string    `json:"tone"`
	Industry         string    `json:"industry"`
	Hashtags         []string  `json:"hashtags"`
	CreatedAt        time.Time `json:"created_at"`
}

type GenerationResult struct {
	Content        string   `json:"content"`
	Hashtags       []string `json:"hashtags"`
	CharacterCount int      `json:"characterCount"`
	CharacterLimit int      `json:"characterLimit"`
	Usage          Usage    `json:"usage"`
}

type GenerationListData struct {
	Generations []Generation `json:"generations"`
}
