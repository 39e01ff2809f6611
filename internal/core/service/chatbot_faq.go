package service

import (
	"sort"
	"strings"

	"github.com/schollz/closestmatch"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// defaultFAQ answers the questions asked often enough to skip the LLM.
var defaultFAQ = map[string]string{
	"leave balance":    "You can check your leave balance on the Employee Panel under the Leave section.",
	"payslip download": "Payslips can be downloaded from the Payroll section in your profile.",
	"hr policies":      "Please refer to the HR policies document available on the company intranet.",
}

// minFAQSimilarity is the normalised Levenshtein similarity a fuzzy match
// needs before its canned answer is used.
const minFAQSimilarity = 0.8

// faqMatcher finds the canned answer for a question, tolerating typos.
type faqMatcher struct {
	answers map[string]string
	keys    []string
	cm      *closestmatch.ClosestMatch
}

func newFAQMatcher(answers map[string]string) *faqMatcher {
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &faqMatcher{answers: answers, keys: keys, cm: closestmatch.New(keys, []int{2, 3})}
}

// Match returns the answer for question and whether one was found.
func (m *faqMatcher) Match(question string) (string, bool) {
	q := normalizeQuestion(question)
	if q == "" {
		return "", false
	}
	if a, ok := m.answers[q]; ok {
		return a, true
	}
	for _, k := range m.keys {
		if strings.Contains(q, k) {
			return m.answers[k], true
		}
	}

	best := m.cm.Closest(q)
	if best == "" || similarity(q, best) < minFAQSimilarity {
		return "", false
	}
	return m.answers[best], true
}

func normalizeQuestion(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, "?!. ")
	return strings.Join(strings.Fields(s), " ")
}

func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 1
	}
	d := levenshtein.DistanceForStrings(ra, rb, levenshtein.DefaultOptions)
	return 1 - float64(d)/float64(maxLen)
}
