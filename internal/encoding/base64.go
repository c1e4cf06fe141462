package encoding

import "encoding/base64"

// bcryptAlphabet is the modified base64 alphabet used by the bcrypt family:
// identical bit-packing to RFC 4648 base64, but with "./" in place of "+/"
// and a different letter/digit ordering.
const bcryptAlphabet = "./ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// h64Alphabet is the "crypt" base64 alphabet shared by md5_crypt,
// sha256_crypt and sha512_crypt. Unlike RFC 4648 base64, each 3-byte group
// is packed most-significant-byte-first but emitted least-significant-
// sextet-first.
const h64Alphabet = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// ab64Alphabet is passlib's adapted base64: standard RFC 4648 alphabet with
// '+' swapped for '.', used by the pbkdf2_* schemes. Padding is omitted.
const ab64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789./"

// BcryptEncoding is bcrypt's raw (unpadded) base64 variant. Because its bit
// packing matches RFC 4648, reusing encoding/base64 with a swapped alphabet
// is exact: no custom bit-twiddling is needed.
var BcryptEncoding = base64.NewEncoding(bcryptAlphabet).WithPadding(base64.NoPadding)

// AB64Encoding is passlib's adapted base64 used by pbkdf2_* hashes.
var AB64Encoding = base64.NewEncoding(ab64Alphabet).WithPadding(base64.NoPadding)

// H64Encode encodes data using the crypt(3) h64 scheme: every group of up
// to 3 input bytes (packed MSB-first) becomes 4 output characters (fewer
// for a trailing partial group), emitted least-significant-sextet-first.
func H64Encode(data []byte) string {
	out := make([]byte, 0, (len(data)*8+5)/6)
	for i := 0; i < len(data); i += 3 {
		remaining := len(data) - i
		switch {
		case remaining >= 3:
			v := uint32(data[i])<<16 | uint32(data[i+1])<<8 | uint32(data[i+2])
			out = append(out, h64char(v), h64char(v>>6), h64char(v>>12), h64char(v>>18))
		case remaining == 2:
			v := uint32(data[i])<<8 | uint32(data[i+1])
			out = append(out, h64char(v), h64char(v>>6), h64char(v>>12))
		default:
			v := uint32(data[i])
			out = append(out, h64char(v), h64char(v>>6))
		}
	}
	return string(out)
}

// H64Decode is the inverse of [H64Encode]. n is the number of plaintext
// bytes expected; the caller must know it ahead of time because the final
// group's character count depends on it.
func H64Decode(s string, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	pos := 0
	for len(out) < n {
		remaining := n - len(out)
		chars := 4
		if remaining == 2 {
			chars = 3
		} else if remaining == 1 {
			chars = 2
		}
		if pos+chars > len(s) {
			return nil, errInvalidH64
		}
		var v uint32
		for j := 0; j < chars; j++ {
			c, err := h64val(s[pos+j])
			if err != nil {
				return nil, err
			}
			v |= c << (6 * j)
		}
		switch {
		case remaining >= 3:
			out = append(out, byte(v>>16), byte(v>>8), byte(v))
		case remaining == 2:
			out = append(out, byte(v>>8), byte(v))
		default:
			out = append(out, byte(v))
		}
		pos += chars
	}
	return out, nil
}

// H64FromTriplet encodes up to 3 explicitly-ordered bytes using the same
// bit-packing and emission order as [H64Encode]'s per-group logic, but
// without requiring the bytes be contiguous in memory. sha256_crypt and
// sha512_crypt use this to apply their non-sequential final byte
// permutation (glibc's b64_from_24bit).
func H64FromTriplet(b2, b1, b0 byte, n int) string {
	v := uint32(b2)<<16 | uint32(b1)<<8 | uint32(b0)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = h64char(v)
		v >>= 6
	}
	return string(out)
}

func h64char(v uint32) byte {
	return h64Alphabet[v&0x3f]
}

func h64val(c byte) (uint32, error) {
	idx := indexByte(h64Alphabet, c)
	if idx < 0 {
		return 0, errInvalidH64
	}
	return uint32(idx), nil
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}
