package segments

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/travigo/segmenter/pkg/busdata"
)

// Scope is the set of directions a parsed range applies to.
type Scope int

const (
	ScopeBoth Scope = iota
	ScopeOutbound
	ScopeInbound
)

func (s Scope) String() string {
	switch s {
	case ScopeOutbound:
		return "outbound"
	case ScopeInbound:
		return "inbound"
	default:
		return "both"
	}
}

// Range is one buffer zone as written in free text: the stop names where it
// starts and ends. Single stop zones have Start == End.
type Range struct {
	Start string
	End   string
	Scope Scope
}

func (r Range) AppliesTo(direction busdata.Direction) bool {
	switch r.Scope {
	case ScopeOutbound:
		return direction == busdata.DirectionOutbound
	case ScopeInbound:
		return direction == busdata.DirectionInbound
	default:
		return true
	}
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s (%s)", r.Start, r.End, r.Scope)
}

const (
	rangeDelimiter = "-"
	listSeparator  = "|"
)

var (
	arrowReplacer = strings.NewReplacer("->", rangeDelimiter, "→", rangeDelimiter)

	headerSpacingRegex = regexp.MustCompile(`([(（]?)((?:去|回|往|返)程?)[:：]?`)
	// \s and \d are ASCII only in RE2, ideographic spaces and fullwidth digits are common here.
	dashRegex        = regexp.MustCompile(`[\s\p{Zs}]*[-—~～－─―][\s\p{Zs}]*`)
	enumerationRegex = regexp.MustCompile(`\p{Nd}+\.`)
	includesRegex    = regexp.MustCompile(`[(（]含[\s\p{Zs}]*(.*?)[\s\p{Zs}]*[)）]`)

	separatorReplacer = strings.NewReplacer(
		"分段緩衝區：", "",
		"緩衝區：", "",
		"、", listSeparator,
		"，", listSeparator,
		"；", listSeparator,
		";", listSeparator,
	)

	directionHeaderRegex = regexp.MustCompile(
		`[|\s\p{Zs}]*[(（]?(?:去|往)程?[:：]?[)）]?[|\s\p{Zs}]*` +
			`|[|\s\p{Zs}]*[(（]?(?:回|返)程?[:：]?[)）]?[|\s\p{Zs}]*`,
	)

	tokenReplacer = strings.NewReplacer(
		"（", "(",
		"）", ")",
		"「", "",
		"」", "",
		"'", "",
		`"`, "",
	)
)

// ParseRanges extracts buffer zone ranges from a free-text description such as
// "去程：市政府-松山車站；回程：松山車站-市政府". It never fails: anything it
// cannot read is dropped.
func ParseRanges(text string) []Range {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	text = arrowReplacer.Replace(text)
	text = headerSpacingRegex.ReplaceAllString(text, " ${1}${2}")
	text = dashRegex.ReplaceAllString(text, rangeDelimiter)
	text = enumerationRegex.ReplaceAllString(text, " ")
	text = includesRegex.ReplaceAllString(text, AlternativeSeparator+"${1}")
	text = separatorReplacer.Replace(text)

	var ranges []Range
	scope := ScopeBoth
	cursor := 0

	for _, header := range directionHeaderRegex.FindAllStringIndex(text, -1) {
		ranges = append(ranges, parseBlock(text[cursor:header[0]], scope)...)
		scope = headerScope(text[header[0]:header[1]])
		cursor = header[1]
	}
	ranges = append(ranges, parseBlock(text[cursor:], scope)...)

	return ranges
}

func headerScope(header string) Scope {
	if strings.ContainsAny(header, "去往") {
		return ScopeOutbound
	}
	return ScopeInbound
}

func parseBlock(block string, scope Scope) []Range {
	var ranges []Range

	segments := strings.FieldsFunc(block, func(r rune) bool {
		return r == '|' || unicode.IsSpace(r)
	})

	for _, segment := range segments {
		parts := strings.Split(segment, rangeDelimiter)

		if len(parts) >= 2 {
			start := cleanToken(parts[0], true, false)
			end := cleanToken(parts[len(parts)-1], false, true)

			if start != "" && end != "" {
				ranges = append(ranges, Range{Start: start, End: end, Scope: scope})
			}
		} else if name := cleanToken(parts[0], true, true); name != "" {
			ranges = append(ranges, Range{Start: name, End: name, Scope: scope})
		}
	}

	return ranges
}

// cleanToken removes unbalanced outer parentheses and quoting left over from
// splitting a larger annotated phrase.
func cleanToken(token string, leading bool, trailing bool) string {
	token = strings.TrimSpace(tokenReplacer.Replace(token))

	for leading && strings.HasPrefix(token, "(") && strings.Count(token, "(") > strings.Count(token, ")") {
		token = token[1:]
	}
	for trailing && strings.HasSuffix(token, ")") && strings.Count(token, ")") > strings.Count(token, "(") {
		token = token[:len(token)-1]
	}

	return strings.TrimSpace(token)
}
