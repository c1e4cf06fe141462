package passlib

import "github.com/notypecheck/passlib/hash"

// ContextOption configures a [Context] at construction time.
type ContextOption func(*Context)

// WithRegistry points a Context at a non-default [Registry], mainly for
// tests that want a scheme catalogue isolated from the process-wide one.
func WithRegistry(r *Registry) ContextOption {
	return func(c *Context) { c.registry = r }
}

// WithLogger attaches a structured logger. The default is a no-op logger;
// Context never logs secrets or derived checksums.
func WithLogger(l Logger) ContextOption {
	return func(c *Context) { c.logger = l }
}

// callParams accumulates the optional arguments to Hash/Verify/
// NeedsUpdate/VerifyAndUpdate calls: explicit scheme, category, call-site settings, and
// runtime-only context kwds (e.g. "user").
type callParams struct {
	scheme      string
	category    string
	settings    hash.Settings
	contextKwds map[string]string
}

func newCallParams() *callParams {
	return &callParams{settings: hash.Settings{}, contextKwds: map[string]string{}}
}

// CallOption configures one Hash/Verify/NeedsUpdate/VerifyAndUpdate call.
type CallOption func(*callParams)

// WithScheme pins the scheme to use, bypassing category/default
// resolution.
func WithScheme(name string) CallOption {
	return func(p *callParams) { p.scheme = name }
}

// WithCategory selects a category's overrides and default scheme.
func WithCategory(name string) CallOption {
	return func(p *callParams) { p.category = name }
}

// WithSetting layers one call-site setting (e.g. "rounds", "salt") on top
// of scheme and category overrides; last write wins.
func WithSetting(key string, value any) CallOption {
	return func(p *callParams) { p.settings[key] = value }
}

// WithContextKwd supplies a runtime-only input (e.g. "user") that a
// scheme's Verify needs but that is never stored in the hash itself.
func WithContextKwd(key, value string) CallOption {
	return func(p *callParams) { p.contextKwds[key] = value }
}

func applyCallOptions(opts []CallOption) *callParams {
	p := newCallParams()
	for _, opt := range opts {
		opt(p)
	}
	return p
}
