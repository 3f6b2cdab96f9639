package storage

import "strings"

// naturalLess orders strings so that runs of digits compare by numeric
// value: "file2" sorts before "file10". Ties on value fall back to the run
// with fewer leading zeros, then to byte order.
func naturalLess(a, b string) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if !isDigit(ca) || !isDigit(cb) {
			if ca != cb {
				return ca < cb
			}
			i++
			j++
			continue
		}

		si := i
		for i < len(a) && isDigit(a[i]) {
			i++
		}
		sj := j
		for j < len(b) && isDigit(b[j]) {
			j++
		}

		ra := strings.TrimLeft(a[si:i], "0")
		rb := strings.TrimLeft(b[sj:j], "0")
		if len(ra) != len(rb) {
			return len(ra) < len(rb)
		}
		if ra != rb {
			return ra < rb
		}
		if i-si != j-sj {
			return i-si < j-sj
		}
	}
	if len(a)-i != len(b)-j {
		return len(a)-i < len(b)-j
	}
	return a < b
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
