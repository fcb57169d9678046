package filter

import (
	"sort"
	"strings"
	"unicode"

	"github.com/rebeliceyang/qbsearch/internal/models"
)

// Token is the result of splitting a search string into key, operator and value
type Token struct {
	Key      string
	Operator models.FilterOperator
	RawValue string
	Value    models.Value
	// Loose is set when a word operator was typed in other than its canonical upper case, e.g. "in"
	Loose bool
}

// KeyWord returns the first whitespace-delimited word of the key segment
func (t Token) KeyWord() string {
	fields := strings.Fields(t.Key)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Tag builds a tag from the token with the given resolved key
func (t Token) Tag(key models.AttributeKey) models.Tag {
	return models.Tag{Key: key, Op: t.Operator, Value: t.Value.Clone()}
}

type keyword struct {
	spelling string
	op       models.FilterOperator
	alpha    bool
}

// keywords are ordered longest first so the most specific spelling wins at a given position
var keywords = func() []keyword {
	var kws []keyword
	for _, op := range AllOperators {
		s := string(op)
		alpha := unicode.IsLetter(rune(s[0]))
		kws = append(kws, keyword{spelling: s, op: op, alpha: alpha})
		if alpha && strings.Contains(s, "_") {
			kws = append(kws, keyword{spelling: strings.ReplaceAll(s, "_", " "), op: op, alpha: true})
		}
	}
	sort.SliceStable(kws, func(i, j int) bool {
		return len(kws[i].spelling) > len(kws[j].spelling)
	})
	return kws
}()

// SplitTag splits raw search text on the first operator keyword following a non-empty key.
// Without an operator the whole text is key.
func SplitTag(text string) Token {
	trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)

	for i := 1; i < len(trimmed); i++ {
		if strings.TrimSpace(trimmed[:i]) == "" {
			continue
		}
		kw, ok := matchKeyword(trimmed, i)
		if !ok {
			continue
		}
		end := i + len(kw.spelling)
		raw := strings.TrimSpace(trimmed[end:])
		return Token{
			Key:      strings.TrimSpace(trimmed[:i]),
			Operator: kw.op,
			RawValue: raw,
			Value:    parseValue(kw.op, raw),
			Loose:    kw.alpha && trimmed[i:end] != kw.spelling,
		}
	}

	return Token{Key: strings.TrimSpace(trimmed)}
}

func matchKeyword(s string, pos int) (keyword, bool) {
	rest := s[pos:]
	for _, kw := range keywords {
		if len(rest) < len(kw.spelling) {
			continue
		}
		if kw.alpha {
			if !strings.EqualFold(rest[:len(kw.spelling)], kw.spelling) {
				continue
			}
			if !isSpaceByte(s[pos-1]) {
				continue
			}
			if end := pos + len(kw.spelling); end < len(s) && !isSpaceByte(s[end]) {
				continue
			}
			return kw, true
		}
		if strings.HasPrefix(rest, kw.spelling) {
			return kw, true
		}
	}
	return keyword{}, false
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func parseValue(op models.FilterOperator, raw string) models.Value {
	if IsInNotIn(op) {
		return models.Value{List: true, Items: SplitValues(raw)}
	}
	return models.Scalar(unquote(strings.TrimSpace(raw)))
}

// SplitValues splits a comma-separated list, honouring double quotes.
// A trailing empty item is kept so an in-progress "a," reads as [a, ""].
func SplitValues(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var items []string
	var cur strings.Builder
	inQuote := false
	for _, r := range raw {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case r == ',' && !inQuote:
			items = append(items, unquote(strings.TrimSpace(cur.String())))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	items = append(items, unquote(strings.TrimSpace(cur.String())))
	return items
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
