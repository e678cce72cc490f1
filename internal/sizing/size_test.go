package sizing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdd(t *testing.T) {
	tests := []struct {
		name   string
		a, b   uint64
		want   uint64
		wantOK bool
	}{
		{"zero", 0, 0, 0, true},
		{"simple", 40, 2, 42, true},
		{"max plus zero", math.MaxUint64, 0, math.MaxUint64, true},
		{"overflow", math.MaxUint64, 1, 0, false},
		{"large overflow", math.MaxUint64, math.MaxUint64, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Add(tt.a, tt.b)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestMul(t *testing.T) {
	tests := []struct {
		name   string
		a, b   uint64
		want   uint64
		wantOK bool
	}{
		{"zero", 0, math.MaxUint64, 0, true},
		{"simple", 64, 64, 4096, true},
		{"overflow", math.MaxUint64, 2, 0, false},
		{"square overflow", 1 << 33, 1 << 33, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Mul(tt.a, tt.b)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFits(t *testing.T) {
	tests := []struct {
		name        string
		off, length uint64
		size        int64
		want        bool
	}{
		{"exact", 0, 100, 100, true},
		{"inside", 10, 50, 100, true},
		{"zero length at end", 100, 0, 100, true},
		{"past end", 90, 11, 100, false},
		{"offset past end", 101, 0, 100, false},
		{"overflowing sum", math.MaxUint64, 2, 100, false},
		{"negative size", 0, 0, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fits(tt.off, tt.length, tt.size))
		})
	}
}
