package passlib

import (
	"time"

	"github.com/notypecheck/passlib/hash"
)

// resolveScheme implements spec §4.3 dispatch step 1: explicit arg, else
// category default, else global default.
func (c *Context) resolveScheme(p *callParams) string {
	if p.scheme != "" {
		return p.scheme
	}
	if p.category != "" {
		if d, ok := c.categoryDefault[p.category]; ok {
			return d
		}
	}
	return c.defaultScheme
}

// resolveSettings implements spec §4.3 dispatch step 2: scheme defaults
// are the hasher's own job; here we only layer scheme override, then
// category override, then call-site kwds, last write wins.
func (c *Context) resolveSettings(scheme string, p *callParams) hash.Settings {
	settings := hash.Settings{}
	if over, ok := c.schemeOverrides[scheme]; ok {
		settings = settings.Merge(over)
	}
	if p.category != "" {
		if byScheme, ok := c.categoryOverrides[p.category]; ok {
			if over, ok := byScheme[scheme]; ok {
				settings = settings.Merge(over)
			}
		}
	}
	return settings.Merge(p.settings)
}

// Hash produces a new hash string for secret under the scheme selected by
// opts (explicit scheme, else category default, else global default).
func (c *Context) Hash(secret string, opts ...CallOption) (string, error) {
	p := applyCallOptions(opts)
	schemeName := c.resolveScheme(p)

	h, err := c.registry.Get(schemeName)
	if err != nil {
		c.logger.Warnw("passlib: hash backend unavailable", "scheme", schemeName, "err", err)
		return "", err
	}

	settings := c.resolveSettings(schemeName, p)
	if _, ok := settings["truncate_error"]; !ok && c.truncateError {
		settings["truncate_error"] = true
	}

	out, err := h.Hash(secret, settings)
	if err != nil {
		return "", err
	}
	c.logger.Debugw("passlib: hashed", "scheme", schemeName, "category", p.category)
	return out, nil
}

// Identify tries each configured scheme in policy order and returns the
// first whose Identify reports true. Disambiguation is by policy order,
// never by "best match" (spec §4.3).
func (c *Context) Identify(hashStr string) (string, bool) {
	for _, name := range c.schemes {
		h, err := c.registry.Get(name)
		if err != nil {
			continue
		}
		if h.Identify(hashStr) {
			return name, true
		}
	}
	return "", false
}

// Verify identifies hashStr (or uses an explicit scheme from opts),
// recomputes its checksum against secret, and compares in constant time
// inside the scheme implementation. If min_verify_time is configured, it
// pads the call's wall-clock time up to the threshold without revealing
// whether padding occurred. If harden_verify is set and identification
// fails, it performs a dummy hash against the default scheme to equalize
// timing with the success path.
func (c *Context) Verify(secret, hashStr string, opts ...CallOption) (bool, error) {
	start := time.Now()
	p := applyCallOptions(opts)

	var schemeName string
	if p.scheme != "" {
		schemeName = p.scheme
	} else {
		name, ok := c.Identify(hashStr)
		if !ok {
			if c.hardenVerify {
				c.dummyHash()
			}
			c.padMinVerifyTime(start)
			return false, &hash.UnknownHashError{}
		}
		schemeName = name
	}

	h, err := c.registry.Get(schemeName)
	if err != nil {
		c.padMinVerifyTime(start)
		return false, err
	}

	ok, err := h.Verify(secret, hashStr, p.contextKwds)
	c.padMinVerifyTime(start)
	return ok, err
}

// dummyHash performs a throwaway hash against the default scheme to burn
// roughly the same CPU time as a successful verify, without leaking
// whether identification failed. Its output and any error are discarded.
func (c *Context) dummyHash() {
	h, err := c.registry.Get(c.defaultScheme)
	if err != nil {
		return
	}
	_, _ = h.Hash("passlib-harden-verify-dummy", c.resolveSettings(c.defaultScheme, newCallParams()))
}

func (c *Context) padMinVerifyTime(start time.Time) {
	if c.minVerifyTime <= 0 {
		return
	}
	elapsed := time.Since(start)
	if elapsed < c.minVerifyTime {
		time.Sleep(c.minVerifyTime - elapsed)
	}
}

// NeedsUpdate reports whether hashStr's scheme or parameters fall below
// the context's current policy: the identified scheme differs from the
// effective default, is marked deprecated, or one of its embedded
// parameters (rounds, salt size, ident) is weaker than policy requires.
func (c *Context) NeedsUpdate(hashStr string, opts ...CallOption) (bool, error) {
	p := applyCallOptions(opts)

	schemeName, ok := c.Identify(hashStr)
	if !ok {
		return false, &hash.UnknownHashError{}
	}

	effectiveDefault := c.resolveScheme(p)
	if schemeName != effectiveDefault {
		return true, nil
	}
	if c.isDeprecated(schemeName, effectiveDefault) {
		return true, nil
	}

	h, err := c.registry.Get(schemeName)
	if err != nil {
		return false, err
	}

	settings := c.resolveSettings(schemeName, p)
	policy := c.buildUpdatePolicy(h, settings, p)
	return h.NeedsUpdate(hashStr, policy)
}

func (c *Context) isDeprecated(scheme, effectiveDefault string) bool {
	if c.autoDeprecated {
		return scheme != effectiveDefault
	}
	return c.deprecated[scheme]
}

// buildUpdatePolicy derives the hash-package-level thresholds a scheme
// needs from the context's resolved settings for it.
func (c *Context) buildUpdatePolicy(h hash.Hasher, settings hash.Settings, p *callParams) hash.UpdatePolicy {
	d := h.Descriptor()

	minRounds := d.DefaultRounds
	if r, ok := settings.Int("rounds"); ok {
		minRounds = r
	}

	minSaltSize := d.DefaultSaltSize
	if s, ok := settings.Int("salt_size"); ok {
		minSaltSize = s
	}

	deprecatedIdents := map[string]bool{}
	if ident, ok := settings.String("ident"); ok && ident != "" {
		for _, id := range d.Idents {
			if id != ident {
				deprecatedIdents[id] = true
			}
		}
	}

	var secretPtr *string
	if secret, ok := p.settings.String("_needs_update_secret"); ok {
		secretPtr = &secret
	}

	return hash.UpdatePolicy{
		MinRounds:        minRounds,
		MinSaltSize:      minSaltSize,
		DeprecatedIdents: deprecatedIdents,
		Secret:           secretPtr,
	}
}

// VerifyAndUpdate atomically verifies secret against hashStr and, if the
// verify succeeds and the hash needs updating, rehashes secret under the
// context's current policy. The caller should persist newHash iff it is
// non-empty.
func (c *Context) VerifyAndUpdate(secret, hashStr string, opts ...CallOption) (ok bool, newHash string, err error) {
	ok, err = c.Verify(secret, hashStr, opts...)
	if err != nil || !ok {
		return ok, "", err
	}

	updateOpts := append(append([]CallOption{}, opts...), WithSetting("_needs_update_secret", secret))
	needs, err := c.NeedsUpdate(hashStr, updateOpts...)
	if err != nil {
		return true, "", nil
	}
	if !needs {
		return true, "", nil
	}

	newHash, err = c.Hash(secret, opts...)
	if err != nil {
		return true, "", err
	}
	return true, newHash, nil
}
