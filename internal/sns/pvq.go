package sns

// Pyramid vector quantization: integer vectors of dimension n whose absolute
// values sum to k, enumerated combinatorially (CWRS).

// unext computes the next row of a recurrence obeying
// u[i][j] = u[i-1][j] + u[i][j-1] + u[i-1][j-1]; u0 is the new row's base.
func unext(u []uint32, length int, u0 uint32) {
	for j := 1; j < length; j++ {
		u1 := u[j] + u[j-1] + u0
		u[j-1] = u0
		u0 = u1
	}
	u[length-1] = u0
}

// uprev steps the same recurrence back one row.
func uprev(u []uint32, length int, u0 uint32) {
	for j := 1; j < length; j++ {
		u1 := u[j] - u[j-1] - u0
		u[j-1] = u0
		u0 = u1
	}
	u[length-1] = u0
}

// urow fills u (len k+2) with U(n, 0..k+1) and returns V(n, k), the number
// of codewords. n must be at least 2.
func urow(n, k int, u []uint32) uint32 {
	u[0] = 0
	u[1] = 1
	for j := 2; j < k+2; j++ {
		u[j] = uint32(2*j - 1)
	}
	for j := 2; j < n; j++ {
		unext(u[1:], k+1, 1)
	}
	return u[k] + u[k+1]
}

// codebookSize returns V(n, k).
func codebookSize(n, k int) uint32 {
	return urow(n, k, make([]uint32, k+2))
}

func iabs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// pvqIndex returns the index of y, a vector of n >= 2 entries with
// sum |y| = k.
func pvqIndex(y []int, k int) uint32 {
	n := len(y)
	u := make([]uint32, k+2)
	u[0] = 0
	for j := 1; j <= k+1; j++ {
		u[j] = uint32(2*j - 1)
	}
	var i uint32
	k1 := iabs(y[n-1])
	if y[n-1] < 0 {
		i = 1
	}
	j := n - 2
	i += u[k1]
	k1 += iabs(y[j])
	if y[j] < 0 {
		i += u[k1+1]
	}
	for j--; j >= 0; j-- {
		unext(u, k+2, 0)
		i += u[k1]
		k1 += iabs(y[j])
		if y[j] < 0 {
			i += u[k1+1]
		}
	}
	return i
}

// pvqVector decodes index i < V(len(y), k) into y.
func pvqVector(i uint32, k int, y []int) {
	n := len(y)
	u := make([]uint32, k+2)
	urow(n, k, u)
	for j := 0; j < n; j++ {
		p := u[k+1]
		neg := i >= p
		if neg {
			i -= p
		}
		yj := k
		for u[k] > i {
			k--
		}
		i -= u[k]
		yj -= k
		if neg {
			yj = -yj
		}
		y[j] = yj
		uprev(u, k+2, 0)
	}
}

// pvqSearch places k unit pulses on y to best match the direction of x.
func pvqSearch(x []float64, k int, y []int) {
	clear(y)
	var l1 float64
	for _, v := range x {
		l1 += abs(v)
	}
	if l1 < 1e-9 {
		y[0] = k
		return
	}

	pulses := 0
	var corr, energy float64
	for i, v := range x {
		p := int(float64(k) * abs(v) / l1)
		y[i] = p
		pulses += p
		corr += abs(v) * float64(p)
		energy += float64(p * p)
	}
	for ; pulses < k; pulses++ {
		best, bestScore := 0, -1.0
		for i, v := range x {
			c := corr + abs(v)
			e := energy + float64(2*y[i]+1)
			if s := c * c / e; s > bestScore {
				best, bestScore = i, s
			}
		}
		corr += abs(x[best])
		energy += float64(2*y[best] + 1)
		y[best]++
	}
	for i, v := range x {
		if v < 0 {
			y[i] = -y[i]
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
