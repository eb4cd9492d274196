package timeline

// Pair is a row of the current keyframe and its match in the next one.
type Pair struct {
	Curr Row
	Next Row
}

// Joined is the result of pairing two keyframes by key.
type Joined struct {
	// Matched rows are interpolated.
	Matched []Pair

	// Exiting rows of the current keyframe have no match in the next one;
	// Entering rows of the next keyframe have no match in the current one.
	// Keyed interpolation draws neither.
	Exiting  []Row
	Entering []Row
}

// Keyframe returns the rows whose field equals value.
func Keyframe(rows []Row, field string, value any) []Row {
	var out []Row
	for _, r := range rows {
		if v, ok := r[field]; ok && equal(v, value) {
			out = append(out, r)
		}
	}
	return out
}

// Join pairs the rows of two keyframes on key. Rows without a key value never
// match. When several rows of next share a key, the first one wins.
func Join(curr, next []Row, key string) Joined {
	var j Joined
	matched := make([]bool, len(next))
	for _, c := range curr {
		i := -1
		if k, ok := c[key]; ok && k != nil {
			for n, r := range next {
				if v, ok := r[key]; ok && equal(v, k) {
					i = n
					break
				}
			}
		}
		if i < 0 {
			j.Exiting = append(j.Exiting, c)
			continue
		}
		matched[i] = true
		j.Matched = append(j.Matched, Pair{Curr: c, Next: next[i]})
	}
	for i, r := range next {
		if !matched[i] {
			j.Entering = append(j.Entering, r)
		}
	}
	return j
}

// Lerp interpolates a numeric field of a pair. ok is false when either side
// is not a number.
func (p Pair) Lerp(field string, t float64) (float64, bool) {
	a, aok := number(p.Curr[field])
	b, bok := number(p.Next[field])
	if !aok || !bok {
		return 0, false
	}
	return a + (b-a)*t, true
}
