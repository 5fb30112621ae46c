package helpers_test

import (
	"testing"

	"github.com/isometry/webhook-relay/internal/helpers"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	testCases := []struct {
		Name     string
		Input    string
		Length   int
		Expected string
	}{
		{
			Name:     "shorter",
			Input:    "ok",
			Length:   10,
			Expected: "ok",
		},
		{
			Name:     "exact",
			Input:    "no_service",
			Length:   10,
			Expected: "no_service",
		},
		{
			Name:     "longer",
			Input:    "invalid_payload",
			Length:   10,
			Expected: "invalid...",
		},
		{
			Name:     "tiny_limit",
			Input:    "invalid_payload",
			Length:   2,
			Expected: "in",
		},
		{
			Name:     "multibyte_boundary",
			Input:    "héllo wörld",
			Length:   5,
			Expected: "h...",
		},
		{
			Name:     "multibyte_tiny_limit",
			Input:    "éé",
			Length:   3,
			Expected: "é",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, helpers.Truncate(tc.Input, tc.Length))
		})
	}
}
