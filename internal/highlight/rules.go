// Package highlight tokenizes code samples and renders them as styled, escaped segments.
package highlight

import "regexp"

// Category is the lexical category assigned to a highlighted region.
type Category string

const (
	CategoryComment   Category = "comment"
	CategoryString    Category = "string"
	CategoryKeyword   Category = "keyword"
	CategoryTag       Category = "tag"
	CategoryAttribute Category = "attribute"
	CategoryNumber    Category = "number"
)

// Rule pairs a pattern with the category it produces.
// When Group > 0 the match range is that capture group instead of the whole match.
type Rule struct {
	Category Category
	Pattern  *regexp.Regexp
	Group    int
}

// Rules in priority order. Earlier rules claim their ranges first.
var defaultRules = []Rule{
	{Category: CategoryComment, Pattern: regexp.MustCompile(`//[^\n]*|/\*[\s\S]*?\*/`)},
	{Category: CategoryString, Pattern: regexp.MustCompile("\"(?:[^\"\\\\]|\\\\.)*\"|'(?:[^'\\\\]|\\\\.)*'|`(?:[^`\\\\]|\\\\.)*`")},
	{Category: CategoryKeyword, Pattern: regexp.MustCompile(`\b(?:import|export|default|from|const|let|var|function|return|if|else|for|while|class|extends|new|typeof|null|undefined|true|false)\b`)},
	{Category: CategoryTag, Pattern: regexp.MustCompile(`</?[A-Za-z][\w.]*`)},
	// RE2 has no look-around; the name is captured between a whitespace and "=".
	// The class also covers the Unicode spaces that JavaScript's \s matches.
	{Category: CategoryAttribute, Pattern: regexp.MustCompile(`[\s\v\x{00A0}\x{FEFF}\p{Zs}\x{2028}\x{2029}]([\w-]+)=`), Group: 1},
	{Category: CategoryNumber, Pattern: regexp.MustCompile(`\b\d+\.?\d*\b`)},
}

// DefaultRules returns a copy of the built-in JSX/HTML/JS rule set.
func DefaultRules() []Rule {
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}

// Theme maps categories to the style class emitted for them.
type Theme map[Category]string

// DefaultTheme returns the utility classes used by the tutorial site.
func DefaultTheme() Theme {
	return Theme{
		CategoryComment:   "text-slate-500 italic",
		CategoryString:    "text-emerald-300",
		CategoryKeyword:   "text-purple-400",
		CategoryTag:       "text-sky-400",
		CategoryAttribute: "text-amber-300",
		CategoryNumber:    "text-orange-300",
	}
}

// Merge returns a theme where non-empty classes from override replace those in t.
func (t Theme) Merge(override map[Category]string) Theme {
	out := make(Theme, len(t))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range override {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Class returns the class for c, or the category name when the theme has none.
func (t Theme) Class(c Category) string {
	if cls, ok := t[c]; ok && cls != "" {
		return cls
	}
	return string(c)
}
