package fmindex

// buildSuffixArray computes the suffix array of s with SA-IS. s must end
// with a unique smallest symbol and every symbol must be below alphabet.
func buildSuffixArray(s []uint32, alphabet int) []int32 {
	n := len(s)
	sa := make([]int32, n)
	switch n {
	case 0:
		return sa
	case 1:
		sa[0] = 0
		return sa
	}

	// S-type suffixes are lexicographically smaller than their successor.
	stype := make([]bool, n)
	stype[n-1] = true
	for i := n - 2; i >= 0; i-- {
		stype[i] = s[i] < s[i+1] || (s[i] == s[i+1] && stype[i+1])
	}
	isLMS := func(i int) bool { return i > 0 && stype[i] && !stype[i-1] }

	var lms []int32
	for i := 1; i < n; i++ {
		if isLMS(i) {
			lms = append(lms, int32(i))
		}
	}

	buckets := bucketSizes(s, alphabet)
	induceSort(s, sa, stype, buckets, lms)

	// Name LMS substrings in sorted order; equal substrings share a name.
	names := make([]int32, n)
	for i := range names {
		names[i] = -1
	}
	name := int32(-1)
	prev := -1
	for _, p := range sa {
		if !isLMS(int(p)) {
			continue
		}
		if prev < 0 || !lmsSubstringEqual(s, stype, prev, int(p)) {
			name++
		}
		names[p] = name
		prev = int(p)
	}

	reduced := make([]uint32, len(lms))
	for i, p := range lms {
		reduced[i] = uint32(names[p])
	}

	var reducedSA []int32
	if int(name)+1 < len(lms) {
		reducedSA = buildSuffixArray(reduced, int(name)+1)
	} else {
		reducedSA = make([]int32, len(lms))
		for i, c := range reduced {
			reducedSA[c] = int32(i)
		}
	}

	sorted := make([]int32, len(lms))
	for i, r := range reducedSA {
		sorted[i] = lms[r]
	}
	induceSort(s, sa, stype, buckets, sorted)
	return sa
}

func induceSort(s []uint32, sa []int32, stype []bool, buckets []int32, lms []int32) {
	for i := range sa {
		sa[i] = -1
	}

	tails := bucketTails(buckets)
	for i := len(lms) - 1; i >= 0; i-- {
		p := lms[i]
		c := s[p]
		sa[tails[c]] = p
		tails[c]--
	}

	heads := bucketHeads(buckets)
	for i := 0; i < len(sa); i++ {
		if p := sa[i]; p > 0 && !stype[p-1] {
			c := s[p-1]
			sa[heads[c]] = p - 1
			heads[c]++
		}
	}

	tails = bucketTails(buckets)
	for i := len(sa) - 1; i >= 0; i-- {
		if p := sa[i]; p > 0 && stype[p-1] {
			c := s[p-1]
			sa[tails[c]] = p - 1
			tails[c]--
		}
	}
}

func lmsSubstringEqual(s []uint32, stype []bool, a, b int) bool {
	isLMS := func(i int) bool { return i > 0 && stype[i] && !stype[i-1] }
	for d := 0; ; d++ {
		if s[a+d] != s[b+d] || stype[a+d] != stype[b+d] {
			return false
		}
		if d > 0 && (isLMS(a+d) || isLMS(b+d)) {
			return isLMS(a+d) && isLMS(b+d)
		}
	}
}

func bucketSizes(s []uint32, alphabet int) []int32 {
	sizes := make([]int32, alphabet)
	for _, c := range s {
		sizes[c]++
	}
	return sizes
}

func bucketHeads(sizes []int32) []int32 {
	heads := make([]int32, len(sizes))
	var sum int32
	for i, v := range sizes {
		heads[i] = sum
		sum += v
	}
	return heads
}

func bucketTails(sizes []int32) []int32 {
	tails := make([]int32, len(sizes))
	var sum int32
	for i, v := range sizes {
		sum += v
		tails[i] = sum - 1
	}
	return tails
}
