package scan

// complement maps each IUPAC nucleotide code to its complement, preserving
// case. Zero entries mean no complement is defined.
var complement [256]byte

func init() {
	pairs := "ATCGUARYSSWWKMBVDHNN"
	for i := 0; i < len(pairs); i += 2 {
		b, c := pairs[i], pairs[i+1]
		complement[b] = c
		complement[c] = b
		complement[b+'a'-'A'] = c + 'a' - 'A'
		complement[c+'a'-'A'] = b + 'a' - 'A'
	}
	// U pairs with A on the complementary strand but A keeps pairing
	// with T, as DNA output is the convention.
	complement['A'] = 'T'
	complement['a'] = 't'
}

// Complement returns the complement of a single base. Bytes with no defined
// complement are returned unchanged.
func Complement(c byte) byte {
	if m := complement[c]; m != 0 {
		return m
	}
	return c
}

// RevComp returns the reverse complement of p as a new slice. Bytes with no
// defined complement pass through unchanged.
func RevComp(p []byte) []byte {
	out := make([]byte, len(p))
	for i, j := 0, len(p)-1; j >= 0; i, j = i+1, j-1 {
		out[i] = Complement(p[j])
	}
	return out
}

// RevCompInPlace reverse-complements p without allocating.
func RevCompInPlace(p []byte) {
	i, j := 0, len(p)-1
	for i < j {
		p[i], p[j] = Complement(p[j]), Complement(p[i])
		i++
		j--
	}
	if i == j {
		p[i] = Complement(p[i])
	}
}
