package language

import "strings"

type entry struct {
	code2   string   // ISO 639-1
	code3   []string // ISO 639-2 terminology and bibliographic forms
	display string
}

var languages = []entry{
	{"en", []string{"eng"}, "English"},
	{"es", []string{"spa"}, "Spanish"},
	{"fr", []string{"fra", "fre"}, "French"},
	{"de", []string{"deu", "ger"}, "German"},
	{"it", []string{"ita"}, "Italian"},
	{"pt", []string{"por"}, "Portuguese"},
	{"ja", []string{"jpn"}, "Japanese"},
	{"ko", []string{"kor"}, "Korean"},
	{"zh", []string{"zho", "chi"}, "Chinese"},
	{"ru", []string{"rus"}, "Russian"},
	{"ar", []string{"ara"}, "Arabic"},
	{"hi", []string{"hin"}, "Hindi"},
	{"id", []string{"ind"}, "Indonesian"},
	{"tr", []string{"tur"}, "Turkish"},
	{"vi", []string{"vie"}, "Vietnamese"},
	{"uk", []string{"ukr"}, "Ukrainian"},
	{"nl", []string{"nld", "dut"}, "Dutch"},
	{"pl", []string{"pol"}, "Polish"},
	{"sv", []string{"swe"}, "Swedish"},
	{"da", []string{"dan"}, "Danish"},
	{"no", []string{"nor"}, "Norwegian"},
	{"fi", []string{"fin"}, "Finnish"},
}

var index = buildIndex()

func buildIndex() map[string]*entry {
	idx := make(map[string]*entry, len(languages)*4)
	for i := range languages {
		e := &languages[i]
		idx[e.code2] = e
		for _, code := range e.code3 {
			idx[code] = e
		}
		idx[strings.ToLower(e.display)] = e
	}
	return idx
}

// primary strips region and variant subtags: "en-US", "en_GB" and
// "en-orig" all become "en".
func primary(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if idx := strings.IndexAny(code, "-_"); idx > 0 {
		code = code[:idx]
	}
	return code
}

func lookup(code string) *entry {
	if e, ok := index[primary(code)]; ok {
		return e
	}
	return nil
}

// ToISO2 converts a recognized code or English name to ISO 639-1. Unknown
// two-letter codes pass through; anything else yields "".
func ToISO2(code string) string {
	if e := lookup(code); e != nil {
		return e.code2
	}
	if p := primary(code); len(p) == 2 {
		return p
	}
	return ""
}

// Normalize returns the ISO 639-1 form of code when one exists, otherwise the
// trimmed lowercase input so downloader patterns such as "en.*" survive.
func Normalize(code string) string {
	if iso := ToISO2(code); iso != "" {
		return iso
	}
	return strings.ToLower(strings.TrimSpace(code))
}

// Matches reports whether two codes name the same language.
func Matches(a, b string) bool {
	left, right := ToISO2(a), ToISO2(b)
	return left != "" && left == right
}

// DisplayName returns a readable name, "Unknown" for empty input, or the
// uppercased code when unrecognized.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// FromTags extracts the language from stream metadata tags.
func FromTags(tags map[string]string) string {
	for _, key := range []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"} {
		value := strings.TrimSpace(strings.ReplaceAll(tags[key], "\u0000", ""))
		if value != "" {
			return Normalize(value)
		}
	}
	return ""
}
