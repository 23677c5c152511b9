package extractor

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"
)

// minDetectRunes is the shortest text worth running detection on
const minDetectRunes = 40

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

func languageDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.English,
				lingua.Spanish,
				lingua.French,
				lingua.German,
				lingua.Italian,
				lingua.Portuguese,
				lingua.Dutch,
			).
			Build()
	})
	return detector
}

// detectLanguage returns an ISO 639-1 code for text, or "" when unsure
func detectLanguage(text string) string {
	if utf8.RuneCountInString(text) < minDetectRunes {
		return ""
	}
	language, ok := languageDetector().DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}
