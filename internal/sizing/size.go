// Package sizing provides safe size arithmetic and conversions to prevent overflow.
package sizing

// Add adds two uint64 values, returning (result, false) on overflow.
func Add(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// Mul multiplies two uint64 values, returning (result, false) on overflow.
func Mul(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	product := a * b
	if product/a != b {
		return 0, false
	}
	return product, true
}

// Fits reports whether the half-open range [off, off+length) lies within a
// source of the given size. Overflow of off+length counts as not fitting.
func Fits(off, length uint64, size int64) bool {
	if size < 0 {
		return false
	}
	end, ok := Add(off, length)
	if !ok {
		return false
	}
	return end <= uint64(size)
}
