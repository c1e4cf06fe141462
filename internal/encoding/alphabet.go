package encoding

// H64Alphabet is exported so schemes can validate salt characters without
// duplicating the literal.
const H64Alphabet = h64Alphabet

// BcryptAlphabet is exported so schemes can validate salt characters.
const BcryptAlphabet = bcryptAlphabet

// AB64Alphabet is exported so schemes can validate salt/checksum characters.
const AB64Alphabet = ab64Alphabet

// ValidAlphabet reports whether every byte of s is a member of alphabet.
func ValidAlphabet(s, alphabet string) bool {
	for i := 0; i < len(s); i++ {
		if indexByte(alphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}
