package trending

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/openlove-social/openlove/internal/post"
)

// Number of topics returned by the trending surface.
const maxTopics = 10

// Topic extraction is a naive bag-of-words heuristic, not NLP: strip tags
// and mentions, lowercase, keep tokens of at least four letters, drop the
// stop words of the platform's primary language.
const minTopicTokenLen = 4

// mentionPattern matches @mentions so they are removed before tokenizing.
var mentionPattern = regexp.MustCompile(`@[\p{L}\p{N}_]+`)

// tokenPattern splits the remaining text into letter runs, keeping accents.
var tokenPattern = regexp.MustCompile(`[\p{L}]+`)

// topicStopWords are high-frequency Portuguese words excluded from topics.
var topicStopWords = map[string]bool{
	"o": true, "a": true, "de": true, "do": true, "da": true,
	"em": true, "para": true, "com": true, "por": true, "que": true,
	"e": true, "é": true, "um": true, "uma": true,
}

// ExtractTopicTokens returns the lowercase topic tokens of text: hashtags
// and mentions removed, tokens shorter than four letters or in the stop
// word set dropped. Duplicates are kept; each occurrence carries weight.
func ExtractTopicTokens(text string) []string {
	cleaned := hashtagPattern.ReplaceAllString(text, " ")
	cleaned = mentionPattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.ToLower(cleaned)

	var tokens []string
	for _, tok := range tokenPattern.FindAllString(cleaned, -1) {
		if utf8.RuneCountInString(tok) < minTopicTokenLen {
			continue
		}
		if topicStopWords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// accumulateTopics builds the weighted topic frequency for a window of
// posts. Each occurrence contributes 1 + 0.1*(likes+comments) so engaged
// posts pull their vocabulary up the list.
func accumulateTopics(posts []*post.Post) map[string]float64 {
	weights := make(map[string]float64)
	for _, p := range posts {
		occurrence := 1.0 + 0.1*float64(p.LikeCount+p.CommentCount)
		for _, tok := range ExtractTopicTokens(p.Text) {
			weights[tok] += occurrence
		}
	}
	return weights
}
