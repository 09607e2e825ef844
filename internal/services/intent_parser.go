package services

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// ParseKind is the stage at which a model reply became usable JSON
type ParseKind string

const (
	ParseParsed   ParseKind = "parsed"
	ParseRepaired ParseKind = "repaired"
	ParseFailed   ParseKind = "failed"
)

// ParseOutcome is the result of ParseIntentReply. Value is only meaningful
// when Kind is not ParseFailed.
type ParseOutcome struct {
	Kind    ParseKind
	Cleaned string
	Value   gjson.Result
}

var (
	fencePattern         = regexp.MustCompile("(?i)```(?:json)?")
	controlCharPattern   = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
	spacedKeyPattern     = regexp.MustCompile(`"([^"]+)"\s+:`)
	bareKeyPattern       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)

// SanitizeReply strips code fences and slices from the first '{' or '[' to
// the last '}' or ']'. A reply with no brackets is returned trimmed.
func SanitizeReply(raw string) string {
	s := strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
	if s == "" {
		return "{}"
	}

	if first := strings.IndexAny(s, "{["); first >= 0 {
		s = s[first:]
	}
	if last := strings.LastIndexAny(s, "}]"); last >= 0 {
		s = s[:last+1]
	}
	return strings.TrimSpace(s)
}

// ParseIntentReply runs the reply through sanitize, strict parse, then repair.
// It never panics; unusable input yields ParseFailed.
func ParseIntentReply(raw string) ParseOutcome {
	cleaned := SanitizeReply(raw)

	if isJSONContainer(cleaned) {
		return ParseOutcome{Kind: ParseParsed, Cleaned: cleaned, Value: gjson.Parse(cleaned)}
	}

	repaired := repairJSON(cleaned)
	if isJSONContainer(repaired) {
		return ParseOutcome{Kind: ParseRepaired, Cleaned: repaired, Value: gjson.Parse(repaired)}
	}

	return ParseOutcome{Kind: ParseFailed, Cleaned: cleaned}
}

func isJSONContainer(s string) bool {
	if !json.Valid([]byte(s)) {
		return false
	}
	r := gjson.Parse(s)
	return r.IsObject() || r.IsArray()
}

// repairJSON fixes the mistakes models commonly make in JSON output
func repairJSON(s string) string {
	s = controlCharPattern.ReplaceAllString(s, "")
	// newlines and tabs inside string values are not allowed raw
	s = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ").Replace(s)
	s = strings.ReplaceAll(s, "`", "")
	if !strings.Contains(s, `"`) {
		s = strings.ReplaceAll(s, "'", `"`)
	}
	s = spacedKeyPattern.ReplaceAllString(s, `"$1":`)
	s = bareKeyPattern.ReplaceAllString(s, `$1"$2":`)
	s = trailingCommaPattern.ReplaceAllString(s, "$1")
	return s
}
