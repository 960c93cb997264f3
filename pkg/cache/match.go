package cache

// matchPattern reports whether key matches a Redis-style glob pattern.
// Supported wildcards are "*" (any sequence, including separators) and
// "?" (any single byte). A backslash escapes the next byte.
func matchPattern(pattern, key string) bool {
	p, k := 0, 0
	starP, starK := -1, 0

	for k < len(key) {
		if p < len(pattern) {
			switch pattern[p] {
			case '*':
				starP, starK = p, k
				p++
				continue
			case '?':
				p++
				k++
				continue
			case '\\':
				if p+1 < len(pattern) && pattern[p+1] == key[k] {
					p += 2
					k++
					continue
				}
			default:
				if pattern[p] == key[k] {
					p++
					k++
					continue
				}
			}
		}
		// Mismatch: backtrack to the last star, consuming one more key byte.
		if starP < 0 {
			return false
		}
		starK++
		p, k = starP+1, starK
	}

	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}
