// Package naming holds the naming conventions shared by the registry, the
// analyzer and the synthesizer: plural table names, class names, foreign key
// and junction table names.
// This is part of the Functional Core - no I/O, only pure functions.
package naming

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jinzhu/inflection"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ReservedField is the identity column every generated model carries.
const ReservedField = "id"

var (
	tableNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	fieldNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	titleCaser       = cases.Title(language.Und)
)

// pythonKeywords are the hard keywords of Python 3; none can name a
// variable, attribute or class.
var pythonKeywords = map[string]bool{
	"and": true, "as": true, "assert": true, "async": true, "await": true,
	"break": true, "class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "finally": true, "for": true,
	"from": true, "global": true, "if": true, "import": true, "in": true,
	"is": true, "lambda": true, "nonlocal": true, "not": true, "or": true,
	"pass": true, "raise": true, "return": true, "try": true, "while": true,
	"with": true, "yield": true,
	"false": true, "none": true, "true": true,
}

// routeNames are bound by the generated routes module: imports, locals and
// the resource method receiver. A table's singular name becomes a local in
// the same scope, so it must not be one of these.
var routeNames = map[string]bool{
	"request":  true,
	"resource": true,
	"db":       true,
	"data":     true,
	"self":     true,
	"key":      true,
	"value":    true,
}

// modelAttributes are claimed by Flask-SQLAlchemy's declarative base.
var modelAttributes = map[string]bool{
	"metadata":    true,
	"registry":    true,
	"query":       true,
	"query_class": true,
}

// irregulars take precedence over the suffix rules in Pluralize.
var irregulars = map[string]string{
	"person":   "people",
	"child":    "children",
	"mouse":    "mice",
	"man":      "men",
	"woman":    "women",
	"tooth":    "teeth",
	"foot":     "feet",
	"goose":    "geese",
	"ox":       "oxen",
	"category": "categories",
	"status":   "statuses",
	"photo":    "photos",
	"piano":    "pianos",
	"memo":     "memos",
	"logo":     "logos",
	"video":    "videos",
	"roof":     "roofs",
	"chief":    "chiefs",
	"chef":     "chefs",
	"belief":   "beliefs",
	"proof":    "proofs",
}

// Normalize trims and lowercases a user-entered table name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Pluralize returns the plural table name for a singular name.
// Irregular forms win; otherwise the first matching suffix rule applies:
// consonant+y, sibilant endings, consonant+o, f/fe, then a plain "s".
func Pluralize(word string) string {
	if word == "" {
		return word
	}
	lower := strings.ToLower(word)

	if plural, ok := irregulars[lower]; ok {
		return plural
	}

	n := len(lower)
	switch {
	case n > 1 && lower[n-1] == 'y' && !isVowel(lower[n-2]):
		return lower[:n-1] + "ies"
	case hasAnySuffix(lower, "s", "ss", "sh", "ch", "x", "z"):
		return lower + "es"
	case n > 1 && lower[n-1] == 'o' && !isVowel(lower[n-2]):
		return lower + "es"
	case strings.HasSuffix(lower, "fe"):
		return lower[:n-2] + "ves"
	case strings.HasSuffix(lower, "f") && !strings.HasSuffix(lower, "ff"):
		return lower[:n-1] + "ves"
	}
	return lower + "s"
}

// ClassName returns the model class name for a singular table name.
// e.g., "user" -> "User", "blog_post" -> "BlogPost"
func ClassName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, word := range words {
		words[i] = titleCaser.String(word)
	}
	return strings.Join(words, "")
}

// ForeignKeyName returns the generated FK column name pointing at owner.
func ForeignKeyName(owner string) string {
	return owner + "_id"
}

// JunctionName returns the many-to-many junction table name for a pair.
// The two names are sorted first so both sides compute the same string.
func JunctionName(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "_")
}

// IsValidTableName checks a table name against [a-z][a-z0-9_]*.
func IsValidTableName(name string) bool {
	return tableNamePattern.MatchString(name)
}

// IsValidFieldName checks a field name against [a-z_][a-z0-9_]*.
func IsValidFieldName(name string) bool {
	return fieldNamePattern.MatchString(name)
}

// IsPythonKeyword reports whether name is a Python keyword.
func IsPythonKeyword(name string) bool {
	return pythonKeywords[name]
}

// ShadowsRouteName reports whether a table name would shadow a name the
// generated routes module binds.
func ShadowsRouteName(name string) bool {
	return routeNames[name]
}

// IsModelAttribute reports whether a field name is claimed by the generated
// model's base class.
func IsModelAttribute(name string) bool {
	return modelAttributes[name]
}

// LooksPlural reports whether a table name reads as a plural noun.
// Table names are meant to be singular; this backs a validation warning only.
func LooksPlural(name string) bool {
	if name == "" {
		return false
	}
	return inflection.Singular(name) != name
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
