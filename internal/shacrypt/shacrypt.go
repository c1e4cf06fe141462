// Package shacrypt implements the round-stretching core shared by
// sha256_crypt and sha512_crypt (Ulrich Drepper's SHA-crypt algorithm).
// It is parameterized over the underlying digest so both schemes reuse
// one implementation; each scheme package supplies its own digest
// constructor, digest size, and final byte-permutation table, since
// those differ between the two.
package shacrypt

import "hash"

// Digest runs the SHA-crypt round-stretching algorithm and returns the
// raw final digest (dsize bytes), before the scheme-specific byte
// permutation and h64 encoding are applied.
func Digest(newHash func() hash.Hash, dsize int, password, salt []byte, rounds int) []byte {
	plen := len(password)
	slen := len(salt)

	hb := newHash()
	hb.Write(password)
	hb.Write(salt)
	hb.Write(password)
	b := hb.Sum(nil)

	ha := newHash()
	ha.Write(password)
	ha.Write(salt)
	writeCyclic(ha, b, plen, dsize)
	for i := plen; i > 0; i >>= 1 {
		if i&1 != 0 {
			ha.Write(b)
		} else {
			ha.Write(password)
		}
	}
	a := ha.Sum(nil)

	hdp := newHash()
	for i := 0; i < plen; i++ {
		hdp.Write(password)
	}
	dp := hdp.Sum(nil)
	pSeq := cyclicSequence(dp, plen, dsize)

	hds := newHash()
	reps := 16 + int(a[0])
	for i := 0; i < reps; i++ {
		hds.Write(salt)
	}
	ds := hds.Sum(nil)
	sSeq := cyclicSequence(ds, slen, dsize)

	alt := a
	for i := 0; i < rounds; i++ {
		hc := newHash()
		if i&1 != 0 {
			hc.Write(pSeq)
		} else {
			hc.Write(alt)
		}
		if i%3 != 0 {
			hc.Write(sSeq)
		}
		if i%7 != 0 {
			hc.Write(pSeq)
		}
		if i&1 != 0 {
			hc.Write(alt)
		} else {
			hc.Write(pSeq)
		}
		alt = hc.Sum(nil)
	}
	return alt
}

func writeCyclic(h hash.Hash, digest []byte, n, dsize int) {
	for n > dsize {
		h.Write(digest)
		n -= dsize
	}
	h.Write(digest[:n])
}

func cyclicSequence(digest []byte, n, dsize int) []byte {
	out := make([]byte, 0, n)
	for len(out) < n {
		remaining := n - len(out)
		if remaining >= dsize {
			out = append(out, digest...)
		} else {
			out = append(out, digest[:remaining]...)
		}
	}
	return out
}
