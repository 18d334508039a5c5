package speech

import (
	"github.com/sahilm/fuzzy"
	"golang.org/x/text/language"
)

// ChooseVoice picks the voice for one utterance.
//
// When the fraction of the text's characters that are ASCII letters
// exceeds englishRatio, an American-English voice is preferred
// regardless of the configured default: notes written in another
// language frequently quote English passages, and reading those with
// a non-English voice mangles them. Otherwise the configured voice is
// matched by exact name, then by fuzzy name match, then the first
// registered voice wins.
func ChooseVoice(voices []Voice, preferred, text string, englishRatio float64) Voice {
	if len(voices) == 0 {
		return Voice{Name: preferred}
	}

	if englishRatio > 0 && ASCIILetterRatio(text) > englishRatio {
		if v, ok := matchLanguage(voices, language.AmericanEnglish); ok {
			return v
		}
	}

	for _, v := range voices {
		if v.Name == preferred {
			return v
		}
	}

	if preferred != "" {
		names := make([]string, len(voices))
		for i, v := range voices {
			names[i] = v.Name
		}
		if matches := fuzzy.Find(preferred, names); len(matches) > 0 {
			return voices[matches[0].Index]
		}
	}

	return voices[0]
}

// matchLanguage finds the registered voice whose language tag best
// matches want, requiring at least high confidence so "und" and
// unrelated tags never win.
func matchLanguage(voices []Voice, want language.Tag) (Voice, bool) {
	tags := make([]language.Tag, 0, len(voices))
	index := make([]int, 0, len(voices))
	for i, v := range voices {
		tag, err := language.Parse(v.Language)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		index = append(index, i)
	}
	if len(tags) == 0 {
		return Voice{}, false
	}

	matcher := language.NewMatcher(tags)
	_, i, conf := matcher.Match(want)
	if conf < language.High {
		return Voice{}, false
	}
	return voices[index[i]], true
}

// ASCIILetterRatio returns the fraction of characters in s that are
// ASCII letters. An empty string has ratio 0.
func ASCIILetterRatio(s string) float64 {
	if s == "" {
		return 0
	}
	letters, total := 0, 0
	for _, r := range s {
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters++
		}
	}
	return float64(letters) / float64(total)
}
