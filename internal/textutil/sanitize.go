package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// MaxTitleRunes bounds the length of a sanitized title.
const MaxTitleRunes = 100

// titleReplacer swaps each filesystem-unsafe character for an underscore.
var titleReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	"?", "_",
	"%", "_",
	"*", "_",
	":", "_",
	"|", "_",
	"\"", "_",
	"<", "_",
	">", "_",
)

// SanitizeTitle converts a video title into a base file name. Each unsafe
// character is replaced one-for-one with an underscore and the result is
// truncated to MaxTitleRunes runes.
func SanitizeTitle(title string) string {
	cleaned := titleReplacer.Replace(norm.NFC.String(title))
	runes := []rune(cleaned)
	if len(runes) > MaxTitleRunes {
		runes = runes[:MaxTitleRunes]
	}
	return string(runes)
}

// DisplayName renders an identifier such as a style name or export kind for
// humans: "extract_audio" becomes "Extract Audio". A Caser is stateful, so
// each call builds its own.
func DisplayName(value string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(strings.TrimSpace(value), "_", " "))
}
