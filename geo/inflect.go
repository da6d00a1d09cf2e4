package geo

import "strings"

// Inflector generates the grammatically inflected surface forms of a place
// name so gazetteer matching works on queries written in any case. The
// returned set always contains the input form. Implementations must be safe
// for concurrent use; a table-driven or rule-based substitute can replace
// the default for other languages or locales.
type Inflector interface {
	Inflect(word string) []string
}

// RussianInflector approximates the six Russian grammatical cases with
// suffix rewrite rules keyed on the final letter of the name. It is not a
// full morphological analyzer but covers the city-name declension patterns
// that matter for query matching (москва -> москвы, москве, москву,
// москвой; новгород -> новгорода, новгороду, новгороде, новгородом).
type RussianInflector struct{}

// NewRussianInflector returns the default rule-based inflector.
func NewRussianInflector() *RussianInflector {
	return &RussianInflector{}
}

// velar/sibilant stems take -и instead of -ы in the genitive
var softStemFinals = []rune{'г', 'к', 'х', 'ж', 'ч', 'ш', 'щ'}

// Inflect declines the final segment of the name (after the last space or
// hyphen) and reattaches the fixed prefix, so multiword and hyphenated
// names like "санкт-петербург" or "нижний новгород" produce usable forms.
func (r *RussianInflector) Inflect(word string) []string {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil
	}
	prefix, last := splitFinalSegment(word)
	forms := map[string]struct{}{word: {}}
	for _, f := range declineSegment(last) {
		forms[prefix+f] = struct{}{}
	}
	out := make([]string, 0, len(forms))
	for f := range forms {
		out = append(out, f)
	}
	return out
}

func splitFinalSegment(word string) (prefix, last string) {
	idx := strings.LastIndexAny(word, " -")
	if idx < 0 {
		return "", word
	}
	return word[:idx+1], word[idx+1:]
}

func declineSegment(seg string) []string {
	runes := []rune(seg)
	if len(runes) < 3 {
		return nil
	}
	stem := string(runes[:len(runes)-1])
	final := runes[len(runes)-1]
	prev := runes[len(runes)-2]

	switch final {
	case 'а':
		gen := stem + "ы"
		if isSoftStemFinal(prev) {
			gen = stem + "и"
		}
		return []string{gen, stem + "е", stem + "у", stem + "ой", stem + "ою"}
	case 'я':
		return []string{stem + "и", stem + "е", stem + "ю", stem + "ей"}
	case 'ь':
		// feminine soft-sign cities: казань, тверь, пермь
		return []string{stem + "и", stem + "ью"}
	case 'й':
		return []string{stem + "я", stem + "ю", stem + "е", stem + "ем"}
	case 'о', 'е':
		// neuter toponyms: иваново, бологое
		return []string{stem + "а", stem + "у", stem + "ом"}
	case 'и', 'ы', 'у', 'э', 'ю':
		// сочи, баку and similar are indeclinable
		return nil
	default:
		// consonant ending: новгород, екатеринбург, петербург
		full := stem + string(final)
		return []string{full + "а", full + "у", full + "е", full + "ом"}
	}
}

func isSoftStemFinal(r rune) bool {
	for _, c := range softStemFinals {
		if r == c {
			return true
		}
	}
	return false
}
