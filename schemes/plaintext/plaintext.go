// Package plaintext implements the trivial "scheme" where the stored
// hash is the secret itself, verbatim. It exists for migrating legacy
// systems that stored passwords in the clear, not as a sensible target
// for new hashes: Identify matches any string, so it must never be
// listed ahead of a real scheme in a policy's scheme order, and
// NeedsUpdate reports true whenever the update policy it receives lists
// any deprecated ident.
package plaintext

import (
	passlib "github.com/notypecheck/passlib"
	"github.com/notypecheck/passlib/hash"
)

func init() {
	passlib.Register("plaintext", newHasher)
}

// Hasher implements hash.Hasher for plaintext storage.
type Hasher struct{}

func newHasher() (hash.Hasher, error) {
	return Hasher{}, nil
}

// Descriptor implements hash.Hasher.
func (Hasher) Descriptor() hash.Descriptor {
	return hash.Descriptor{
		Name:           "plaintext",
		Idents:         nil,
		TruncatePolicy: hash.TruncateNone,
	}
}

// Identify implements hash.Hasher. It matches any string: plaintext has
// no wire format of its own to distinguish it from other schemes, which
// is exactly why it must be ordered last wherever it appears in a
// policy's scheme list.
func (Hasher) Identify(string) bool { return true }

// Hash implements hash.Hasher.
func (Hasher) Hash(secret string, _ hash.Settings) (string, error) {
	return secret, nil
}

// Verify implements hash.Hasher.
func (Hasher) Verify(secret, hashStr string, _ map[string]string) (bool, error) {
	return constantTimeEqual(secret, hashStr), nil
}

// GenConfig implements hash.Hasher. plaintext has no salt or cost
// parameters to pre-generate; the config is empty.
func (Hasher) GenConfig(_ hash.Settings) (string, error) {
	return "", nil
}

// GenHash implements hash.Hasher.
func (Hasher) GenHash(secret, _ string) (string, error) {
	return secret, nil
}

// NeedsUpdate implements hash.Hasher. A plaintext hash always needs
// updating if the policy carries any deprecated ident at all, since
// storing a secret in the clear is strictly worse than any configured
// scheme; callers that deprecate "plaintext" itself get this for free.
func (Hasher) NeedsUpdate(_ string, policy hash.UpdatePolicy) (bool, error) {
	if policy.DeprecatedIdents["plaintext"] {
		return true, nil
	}
	return len(policy.DeprecatedIdents) > 0, nil
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := 0; i < len(a); i++ {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
