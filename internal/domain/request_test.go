package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int {
	return &v
}

func TestRequest_IsFilled(t *testing.T) {
	tests := []struct {
		name     string
		request  *Request
		expected bool
	}{
		{
			name: "all fields set",
			request: &Request{
				Areas:    []string{"Чангу"},
				Beds:     []int{1},
				MinPrice: intPtr(100),
				Price:    intPtr(500),
			},
			expected: true,
		},
		{
			name: "empty but set selections",
			request: &Request{
				Areas:    []string{},
				Beds:     []int{},
				MinPrice: intPtr(0),
				Price:    intPtr(0),
			},
			expected: true,
		},
		{
			name: "missing areas",
			request: &Request{
				Beds:     []int{1},
				MinPrice: intPtr(100),
				Price:    intPtr(500),
			},
			expected: false,
		},
		{
			name: "missing beds",
			request: &Request{
				Areas:    []string{"Чангу"},
				MinPrice: intPtr(100),
				Price:    intPtr(500),
			},
			expected: false,
		},
		{
			name: "missing min price",
			request: &Request{
				Areas: []string{"Чангу"},
				Beds:  []int{1},
				Price: intPtr(500),
			},
			expected: false,
		},
		{
			name: "missing price",
			request: &Request{
				Areas:    []string{"Чангу"},
				Beds:     []int{1},
				MinPrice: intPtr(100),
			},
			expected: false,
		},
		{
			name:     "nil request",
			request:  nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.request.IsFilled())
		})
	}
}
