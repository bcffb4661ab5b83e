package research

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pep299/study-planner/internal/model"
)

const (
	maxConcepts      = 10
	maxRelatedTopics = 5
	minConceptRunes  = 30
	maxConceptRunes  = 200
)

var definitionMarkers = []string{
	" is ", " are ", " refers to ", " defined as ", " means ", " consists of ", " includes ",
}

var stopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "this": true,
	"that": true, "what": true, "how": true, "why": true,
	"a": true, "an": true, "of": true, "in": true, "on": true, "to": true,
	"is": true, "are": true, "your": true, "you": true,
}

const edgePunctuation = ".,;:?!|-"

// ExtractConcepts picks definition-like sentences out of source summaries,
// shortest first.
func ExtractConcepts(sources []model.SourceItem) []string {
	seen := make(map[string]bool)
	var concepts []string

	for _, src := range sources {
		for _, sentence := range strings.Split(src.Summary, ".") {
			sentence = collapseSpaces(sentence)
			n := utf8.RuneCountInString(sentence)
			if n <= minConceptRunes || n >= maxConceptRunes {
				continue
			}
			if !hasDefinitionMarker(strings.ToLower(sentence)) {
				continue
			}
			if seen[sentence] {
				continue
			}
			seen[sentence] = true
			concepts = append(concepts, sentence)
		}
	}

	sort.SliceStable(concepts, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(concepts[i]), utf8.RuneCountInString(concepts[j])
		if li != lj {
			return li < lj
		}
		return concepts[i] < concepts[j]
	})

	if len(concepts) > maxConcepts {
		concepts = concepts[:maxConcepts]
	}
	return concepts
}

func hasDefinitionMarker(lower string) bool {
	for _, m := range definitionMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ExtractRelatedTopics builds short phrases from result titles that avoid
// the topic's own words.
func ExtractRelatedTopics(topic string, results []model.SearchResult) []string {
	topicWords := make(map[string]bool)
	for _, w := range strings.Fields(topic) {
		if nw := normalizeWord(w); nw != "" {
			topicWords[nw] = true
		}
	}

	seen := make(map[string]bool)
	var related []string

	for _, r := range results {
		words := strings.Fields(r.Title)
		for i := range words {
			for _, size := range []int{2, 3} {
				if i+size > len(words) {
					continue
				}
				phrase, ok := relatedPhrase(words[i:i+size], topicWords)
				if !ok {
					continue
				}
				key := strings.ToLower(phrase)
				if seen[key] {
					continue
				}
				seen[key] = true
				related = append(related, phrase)
				if len(related) == maxRelatedTopics {
					return related
				}
			}
		}
	}
	return related
}

func relatedPhrase(window []string, topicWords map[string]bool) (string, bool) {
	meaningful := false
	for _, w := range window {
		nw := normalizeWord(w)
		if nw == "" || topicWords[nw] || stopWords[nw] {
			return "", false
		}
		if strings.IndexFunc(nw, unicode.IsLetter) >= 0 {
			meaningful = true
		}
	}
	if !meaningful {
		return "", false
	}

	phrase := strings.Trim(strings.Join(window, " "), edgePunctuation+" ")
	if phrase == "" {
		return "", false
	}
	return phrase, true
}

func normalizeWord(w string) string {
	return strings.ToLower(strings.Trim(w, edgePunctuation+`"'()[]`))
}
