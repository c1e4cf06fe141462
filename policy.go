package passlib

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// PolicyMap is the flat key-value form of a Context's configuration, as
// produced by [ParsePolicyINI] or built directly by a caller. Keys follow
// spec §4.3/§8's dotted convention: "schemes", "default", "deprecated",
// "<scheme>.<param>" for a global override, and
// "<category>__<scheme>.<param>" for a category-scoped override (the
// double underscore marks the category boundary; the dot marks the
// param boundary, exactly as in spec §8's worked examples).
type PolicyMap map[string]string

// ParsePolicyINI parses an INI-like policy document with "[section]"
// headers into one PolicyMap per section. Content before the first header
// belongs to the implicit section "".
func ParsePolicyINI(text string) (map[string]PolicyMap, error) {
	sections := map[string]PolicyMap{}
	section := ""
	sections[section] = PolicyMap{}

	for lineNo, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, &ConfigError{Reason: fmt.Sprintf("line %d: unterminated section header", lineNo+1)}
			}
			section = strings.TrimSpace(line[1 : len(line)-1])
			if _, ok := sections[section]; !ok {
				sections[section] = PolicyMap{}
			}
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, &ConfigError{Reason: fmt.Sprintf("line %d: expected key=value", lineNo+1)}
		}
		sections[section][strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return sections, nil
}

// String serializes the policy map back into INI-body form (no section
// header), sorted by key for determinism, so ParsePolicyINI(m.String())
// round-trips losslessly.
func (m PolicyMap) String() string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s = %s\n", k, m[k])
	}
	return b.String()
}

// parseList parses a comma-separated value, tolerating optional surrounding
// "[" "]" and whitespace around each element, per spec §8's
// "schemes=[sha256_crypt, md5_crypt]" style.
func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseDuration parses a duration with an explicit unit ("350ms", "1s"),
// per spec §4.3.
func parseDuration(raw string) (time.Duration, error) {
	return time.ParseDuration(strings.TrimSpace(raw))
}

func parseBool(raw string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(raw))
}

func parseFloat(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

func parseInt(raw string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(raw))
}

// categoryOverrideKey builds a "<category>__<scheme>.<param>" key.
func categoryOverrideKey(category, scheme, param string) string {
	return category + "__" + scheme + "." + param
}

// schemeOverrideKey builds a "<scheme>.<param>" key.
func schemeOverrideKey(scheme, param string) string {
	return scheme + "." + param
}

// splitCategoryOverride recognizes a "<category>__<scheme>.<param>" key,
// returning its parts and ok=true if it matches that shape.
func splitCategoryOverride(key string) (category, scheme, param string, ok bool) {
	cat, rest, found := strings.Cut(key, "__")
	if !found {
		return "", "", "", false
	}
	scheme, param, found = strings.Cut(rest, ".")
	if !found {
		return "", "", "", false
	}
	return cat, scheme, param, true
}

// splitSchemeOverride recognizes a "<scheme>.<param>" key.
func splitSchemeOverride(key string) (scheme, param string, ok bool) {
	if strings.Contains(key, "__") {
		return "", "", false
	}
	return strings.Cut(key, ".")
}
