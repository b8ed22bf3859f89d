package content

const (
	platformTagCount = 2
	industryTagCount = 3
	maxHashtags      = 5
)

// Hashtags picks the leading platform tags followed by the leading industry tags.
func Hashtags(platform Platform, industry Industry) []string {
	platformTags := platforms[platform].hashtags
	industryTags := industryHashtags[industry]

	out := make([]string, 0, maxHashtags)
	out = append(out, head(platformTags, platformTagCount)...)
	out = append(out, head(industryTags, industryTagCount)...)
	if len(out) > maxHashtags {
		out = out[:maxHashtags]
	}

	return out
}

func head(tags []string, n int) []string {
	if len(tags) < n {
		return tags
	}
	return tags[:n]
}
