package hash

import "strings"

// MCF holds the split fields of a Modular Crypt Format string:
// $<ident>$[<params>$]<salt>$<checksum>. Fields is everything between the
// ident and the final two (salt, checksum) segments, in original order,
// and may be empty for schemes with no extra parameters.
type MCF struct {
	Ident    string
	Fields   []string
	Salt     string
	Checksum string
}

// ParseMCF splits an MCF string into its ident, middle fields, salt, and
// checksum. It rejects empty segments and malformed delimiter counts but
// does not validate field contents against any scheme's alphabet or
// range — that is the scheme's job, via HasRounds/HasSalt/etc.
func ParseMCF(s string, scheme string) (*MCF, error) {
	if len(s) == 0 || s[0] != '$' {
		return nil, &MalformedHashError{Scheme: scheme, Reason: "missing leading '$'"}
	}
	parts := strings.Split(s[1:], "$")
	if len(parts) < 3 {
		return nil, &MalformedHashError{Scheme: scheme, Reason: "too few '$'-delimited fields"}
	}
	for _, p := range parts {
		if p == "" {
			return nil, &MalformedHashError{Scheme: scheme, Reason: "empty field between delimiters"}
		}
	}
	return &MCF{
		Ident:    parts[0],
		Fields:   parts[1 : len(parts)-2],
		Salt:     parts[len(parts)-2],
		Checksum: parts[len(parts)-1],
	}, nil
}

// Build reassembles the canonical MCF string. Serializers that omit a
// default-valued field (e.g. sha256_crypt's rounds=5000) should drop it
// from Fields before calling Build, not pass an empty string.
func (m *MCF) Build() string {
	parts := make([]string, 0, len(m.Fields)+3)
	parts = append(parts, m.Ident)
	parts = append(parts, m.Fields...)
	parts = append(parts, m.Salt, m.Checksum)
	return "$" + strings.Join(parts, "$")
}
