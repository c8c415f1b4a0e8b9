package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecallAtK(t *testing.T) {
	tests := []struct {
		name      string
		relevant  []string
		retrieved []string
		k         int
		want      float64
	}{
		{name: "all found", relevant: []string{"Acme", "Bolt"}, retrieved: []string{"acme", "bolt", "x"}, k: 10, want: 1},
		{name: "half found", relevant: []string{"a", "b", "c", "d"}, retrieved: []string{"a", "b", "x"}, k: 10, want: 0.5},
		{name: "cut at k", relevant: []string{"a", "b", "c"}, retrieved: []string{"a", "b", "x", "y", "c"}, k: 3, want: 2.0 / 3.0},
		{name: "duplicates count once", relevant: []string{"a", "b"}, retrieved: []string{"a", "A"}, k: 10, want: 0.5},
		{name: "empty retrieved", relevant: []string{"a"}, retrieved: nil, k: 10, want: 0},
		{name: "no relevant", relevant: nil, retrieved: []string{"a"}, k: 10, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RecallAtK(tt.relevant, tt.retrieved, tt.k), 1e-9)
		})
	}
}

func TestMRRAtK(t *testing.T) {
	tests := []struct {
		name      string
		relevant  []string
		retrieved []string
		k         int
		want      float64
	}{
		{name: "first", relevant: []string{"a"}, retrieved: []string{"a", "x"}, k: 10, want: 1},
		{name: "third", relevant: []string{"a"}, retrieved: []string{"x", "y", " A "}, k: 10, want: 1.0 / 3.0},
		{name: "earliest of several", relevant: []string{"a", "b"}, retrieved: []string{"x", "b", "a"}, k: 10, want: 0.5},
		{name: "beyond k", relevant: []string{"a"}, retrieved: []string{"x", "y", "a"}, k: 2, want: 0},
		{name: "empty relevant", relevant: nil, retrieved: []string{"a"}, k: 10, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MRRAtK(tt.relevant, tt.retrieved, tt.k), 1e-9)
		})
	}
}
