package domain

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	andOperator = regexp.MustCompile(`(?i)\band\b`)
	orOperator  = regexp.MustCompile(`(?i)\bor\b`)
	notOperator = regexp.MustCompile(`(?i)\bnot \b`)
)

// NormalizeQuery rewrites boolean operators regardless of case into the
// web-search form: "and", "or" and a leading "-" for negation.
func NormalizeQuery(q string) string {
	q = andOperator.ReplaceAllString(q, "and")
	q = orOperator.ReplaceAllString(q, "or")
	return notOperator.ReplaceAllString(q, "-")
}

// QueryTerm is a word or quoted phrase, optionally negated.
type QueryTerm struct {
	Words   []string
	Negated bool
}

// SearchQuery is a disjunction of conjunctions of terms.
type SearchQuery struct {
	Groups [][]QueryTerm
}

// ParseQuery parses a normalised web-search query. Adjacent terms are
// combined with AND, "or" separates alternatives and "-" negates a term.
func ParseQuery(q string) SearchQuery {
	var (
		out     SearchQuery
		current []QueryTerm
	)
	flush := func() {
		if len(current) > 0 {
			out.Groups = append(out.Groups, current)
		}
		current = nil
	}

	for _, tok := range tokenizeQuery(q) {
		switch {
		case !tok.quoted && tok.text == "or":
			flush()
		case !tok.quoted && tok.text == "and":
		default:
			words := Words(tok.text)
			if len(words) == 0 {
				continue
			}
			current = append(current, QueryTerm{Words: words, Negated: tok.negated})
		}
	}
	flush()
	return out
}

// Empty reports whether the query has no terms.
func (q SearchQuery) Empty() bool { return len(q.Groups) == 0 }

// Match reports whether text satisfies the query.
func (q SearchQuery) Match(text string) bool {
	words := Words(text)
	for _, group := range q.Groups {
		ok := true
		for _, term := range group {
			if containsPhrase(words, term.Words) == term.Negated {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

type queryToken struct {
	text    string
	quoted  bool
	negated bool
}

func tokenizeQuery(q string) []queryToken {
	var tokens []queryToken
	rs := []rune(q)
	for i := 0; i < len(rs); {
		if unicode.IsSpace(rs[i]) {
			i++
			continue
		}
		tok := queryToken{}
		if rs[i] == '-' {
			tok.negated = true
			i++
		}
		if i < len(rs) && rs[i] == '"' {
			end := i + 1
			for end < len(rs) && rs[end] != '"' {
				end++
			}
			tok.text = string(rs[i+1 : end])
			tok.quoted = true
			i = end + 1
		} else {
			end := i
			for end < len(rs) && !unicode.IsSpace(rs[end]) {
				end++
			}
			tok.text = string(rs[i:end])
			i = end
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Words splits text into lower-cased alphanumeric words.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 {
		return false
	}
outer:
	for i := 0; i+len(phrase) <= len(words); i++ {
		for j, w := range phrase {
			if words[i+j] != w {
				continue outer
			}
		}
		return true
	}
	return false
}
