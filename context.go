package passlib

import (
	"strings"
	"time"

	"github.com/notypecheck/passlib/hash"
)

// Context is an immutable policy object composed over several schemes:
// an ordered scheme list, a default, deprecations, per-scheme and
// per-category overrides, and verify-hardening knobs. Build one with
// [NewContext]; [Context.Update] returns a modified copy rather than
// mutating the receiver, so a Context already handed to other goroutines
// is never changed out from under them (spec §5).
type Context struct {
	registry *Registry
	logger   Logger

	rawPolicy PolicyMap

	schemes        []string
	defaultScheme  string
	deprecated     map[string]bool
	autoDeprecated bool

	schemeOverrides   map[string]hash.Settings
	categoryOverrides map[string]map[string]hash.Settings
	categoryDefault   map[string]string

	truncateError bool
	hardenVerify  bool
	minVerifyTime time.Duration

	calibration *hash.CalibrationCache
}

// NewContext builds an immutable Context from policy. An unknown scheme
// name, or a setting outside its scheme's bounds, fails construction with
// a [ConfigError].
func NewContext(policy PolicyMap, opts ...ContextOption) (*Context, error) {
	c := &Context{
		registry:          defaultRegistry,
		logger:            nopLogger{},
		schemeOverrides:   map[string]hash.Settings{},
		categoryOverrides: map[string]map[string]hash.Settings{},
		categoryDefault:   map[string]string{},
		calibration:       hash.NewCalibrationCache(),
	}
	for _, opt := range opts {
		opt(c)
	}

	raw := make(PolicyMap, len(policy))
	for k, v := range policy {
		raw[k] = v
	}
	c.rawPolicy = raw

	schemesRaw, ok := raw["schemes"]
	if !ok || len(parseList(schemesRaw)) == 0 {
		return nil, &ConfigError{Key: "schemes", Reason: "at least one scheme is required"}
	}
	c.schemes = parseList(schemesRaw)
	for _, name := range c.schemes {
		if !c.registry.Has(name) {
			return nil, &ConfigError{Key: "schemes", Reason: "unregistered scheme " + name}
		}
	}

	c.defaultScheme = c.schemes[0]
	if d, ok := raw["default"]; ok && d != "" {
		if !contains(c.schemes, d) {
			return nil, &ConfigError{Key: "default", Reason: "default scheme " + d + " is not in schemes"}
		}
		c.defaultScheme = d
	}

	if dep, ok := raw["deprecated"]; ok {
		if trimmedEquals(dep, "auto") {
			c.autoDeprecated = true
		} else {
			c.deprecated = toSet(parseList(dep))
		}
	}
	if c.deprecated == nil {
		c.deprecated = map[string]bool{}
	}

	if v, ok := raw["truncate_error"]; ok {
		b, err := parseBool(v)
		if err != nil {
			return nil, &ConfigError{Key: "truncate_error", Reason: err.Error()}
		}
		c.truncateError = b
	}
	if v, ok := raw["harden_verify"]; ok {
		b, err := parseBool(v)
		if err != nil {
			return nil, &ConfigError{Key: "harden_verify", Reason: err.Error()}
		}
		c.hardenVerify = b
	}
	if v, ok := raw["min_verify_time"]; ok {
		d, err := parseDuration(v)
		if err != nil {
			return nil, &ConfigError{Key: "min_verify_time", Reason: err.Error()}
		}
		c.minVerifyTime = d
	}

	for key, value := range raw {
		switch key {
		case "schemes", "default", "deprecated", "truncate_error", "harden_verify", "min_verify_time":
			continue
		}
		if cat, scheme, param, ok := splitCategoryOverride(key); ok {
			if param == "default" {
				if !contains(c.schemes, value) {
					return nil, &ConfigError{Key: key, Reason: "category default scheme " + value + " is not in schemes"}
				}
				c.categoryDefault[cat] = value
				continue
			}
			if err := c.setOverride(c.categorySettings(cat, scheme), scheme, param, value); err != nil {
				return nil, &ConfigError{Key: key, Reason: err.Error()}
			}
			continue
		}
		if scheme, param, ok := splitSchemeOverride(key); ok {
			settings := c.schemeOverrides[scheme]
			if settings == nil {
				settings = hash.Settings{}
				c.schemeOverrides[scheme] = settings
			}
			if err := c.setOverride(settings, scheme, param, value); err != nil {
				return nil, &ConfigError{Key: key, Reason: err.Error()}
			}
			continue
		}
		return nil, &ConfigError{Key: key, Reason: "unrecognized policy key"}
	}

	if err := c.validateOverrides(); err != nil {
		return nil, err
	}

	c.logger.Debugw("passlib: context built", "schemes", c.schemes, "default", c.defaultScheme)
	return c, nil
}

func (c *Context) categorySettings(category, scheme string) hash.Settings {
	byScheme := c.categoryOverrides[category]
	if byScheme == nil {
		byScheme = map[string]hash.Settings{}
		c.categoryOverrides[category] = byScheme
	}
	settings := byScheme[scheme]
	if settings == nil {
		settings = hash.Settings{}
		byScheme[scheme] = settings
	}
	return settings
}

// setOverride parses value according to param's well-known type and
// stores it in settings. Unknown params are stored as raw strings, so a
// scheme-specific setting not in the fixed list below still flows through.
func (c *Context) setOverride(settings hash.Settings, scheme, param, value string) error {
	switch param {
	case "rounds", "salt_size":
		v, err := parseInt(value)
		if err != nil {
			return err
		}
		settings[param] = v
	case "vary_rounds":
		v, err := parseFloat(value)
		if err != nil {
			return err
		}
		settings[param] = v
	case "truncate_error":
		v, err := parseBool(value)
		if err != nil {
			return err
		}
		settings[param] = v
	default:
		settings[param] = value
	}
	_ = scheme
	return nil
}

// validateOverrides checks every explicit rounds/salt_size override
// against its scheme's descriptor bounds. Category overrides are checked
// against the same scheme descriptor as the matching global override.
func (c *Context) validateOverrides() error {
	check := func(scheme string, settings hash.Settings) error {
		h, err := c.registry.Get(scheme)
		if err != nil {
			return nil // missing backend surfaces lazily, not at construction
		}
		d := h.Descriptor()
		if rounds, ok := settings.Int("rounds"); ok {
			if err := hash.ValidateRounds(rounds, d.MinRounds, d.MaxRounds); err != nil {
				return &ConfigError{Key: scheme + ".rounds", Reason: err.Error()}
			}
		}
		if size, ok := settings.Int("salt_size"); ok {
			if size < d.MinSaltSize || size > d.MaxSaltSize {
				return &ConfigError{Key: scheme + ".salt_size", Reason: "salt_size out of scheme bounds"}
			}
		}
		return nil
	}
	for scheme, settings := range c.schemeOverrides {
		if err := check(scheme, settings); err != nil {
			return err
		}
	}
	for _, byScheme := range c.categoryOverrides {
		for scheme, settings := range byScheme {
			if err := check(scheme, settings); err != nil {
				return err
			}
		}
	}
	return nil
}

// Update returns a new Context built from the receiver's policy with
// extra layered on top (last write wins per key), leaving the receiver
// untouched.
func (c *Context) Update(extra PolicyMap, opts ...ContextOption) (*Context, error) {
	merged := make(PolicyMap, len(c.rawPolicy)+len(extra))
	for k, v := range c.rawPolicy {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	allOpts := append([]ContextOption{WithRegistry(c.registry), WithLogger(c.logger)}, opts...)
	return NewContext(merged, allOpts...)
}

// DefaultScheme returns the context's global default scheme name.
func (c *Context) DefaultScheme() string { return c.defaultScheme }

// Schemes returns the ordered scheme list, leftmost first.
func (c *Context) Schemes() []string {
	out := make([]string, len(c.schemes))
	copy(out, c.schemes)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func toSet(list []string) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, v := range list {
		out[v] = true
	}
	return out
}

func trimmedEquals(s, want string) bool {
	return strings.TrimSpace(s) == want
}
