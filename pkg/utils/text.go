package utils

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

// Common stop words for text processing
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"that": true, "the": true, "to": true, "was": true, "will": true, "with": true,
	"this": true, "but": true, "they": true, "have": true, "had": true, "would": true,
	"were": true, "been": true, "their": true, "she": true, "which": true, "do": true,
	"or": true, "if": true, "not": true, "what": true, "there": true, "can": true,
	"out": true, "up": true, "one": true, "about": true, "more": true, "so": true,
	"said": true, "when": true, "some": true, "into": true, "them": true, "then": true,
	"two": true, "how": true, "her": true, "than": true, "first": true, "way": true,
	"even": true, "back": true, "any": true, "over": true, "where": true, "just": true,
	"you": true, "your": true, "our": true, "all": true, "who": true,
	"also": true, "may": true, "these": true, "those": true, "his": true,
}

var whitespace = regexp.MustCompile(`\s+`)

// IsStopWord reports whether word is a common stop word
func IsStopWord(word string) bool {
	return stopWords[strings.ToLower(word)]
}

// CleanText removes extra whitespace and normalizes text
func CleanText(text string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// Words splits text into lowercase words with edge punctuation removed
func Words(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	words := make([]string, 0, len(fields))
	for _, w := range fields {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// RemoveStopWords filters out common stop words from text
func RemoveStopWords(text string) string {
	words := Words(text)
	filtered := make([]string, 0, len(words))
	for _, word := range words {
		if !stopWords[word] {
			filtered = append(filtered, word)
		}
	}
	return strings.Join(filtered, " ")
}

// ExtractKeywords ranks the most frequent non stop words in text.
// Words of two characters or fewer are skipped; ties sort alphabetically.
func ExtractKeywords(text string, limit int) []models.Keyword {
	wordCount := make(map[string]int)
	for _, word := range strings.Fields(RemoveStopWords(text)) {
		if utf8.RuneCountInString(word) > 2 && !isNumeric(word) {
			wordCount[word]++
		}
	}

	sorted := make([]models.Keyword, 0, len(wordCount))
	for k, v := range wordCount {
		sorted = append(sorted, models.Keyword{Word: k, Count: v})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Count == sorted[j].Count {
			return sorted[i].Word < sorted[j].Word
		}
		return sorted[i].Count > sorted[j].Count
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// VocabularyRichness returns unique words as a percentage of all words
func VocabularyRichness(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[strings.ToLower(w)] = struct{}{}
	}
	return float64(len(unique)) / float64(len(words)) * 100
}

// TruncateRunes cuts text to at most n runes
func TruncateRunes(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n])
}

// TruncateText truncates text to a maximum length, preserving word boundaries
func TruncateText(text string, maxLength int) string {
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}

	truncated := TruncateRunes(text, maxLength)
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 0 {
		truncated = truncated[:lastSpace]
	}

	return truncated + "..."
}

// TitleCase upper-cases the first letter of each word
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
