package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionIDFromURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "url with view query",
			input: "https://notes.example.com/workspace/team-docs-286c479a8fc21c807d134a19e9ae7065?v=abc123",
			want:  "286c479a8fc21c807d134a19e9ae7065",
		},
		{
			name:  "url without query",
			input: "https://notes.example.com/286c479a8fc21c807d134a19e9ae7065",
			want:  "286c479a8fc21c807d134a19e9ae7065",
		},
		{
			name:  "url with dashed uuid",
			input: "https://notes.example.com/db/286c479a-8fc2-1c80-7d13-4a19e9ae7065",
			want:  "286c479a8fc21c807d134a19e9ae7065",
		},
		{
			name:  "raw hex id",
			input: "286c479a8fc21c807d134a19e9ae7065",
			want:  "286c479a8fc21c807d134a19e9ae7065",
		},
		{
			name:  "raw dashed uuid",
			input: "286c479a-8fc2-1c80-7d13-4a19e9ae7065",
			want:  "286c479a8fc21c807d134a19e9ae7065",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CollectionIDFromURL(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCollectionIDFromURL_Invalid(t *testing.T) {
	for _, input := range []string{
		"",
		"not-an-id",
		"https://notes.example.com/just-a-title",
		"286c479a8fc21c807d134a19e9ae70",
	} {
		_, err := CollectionIDFromURL(input)
		assert.ErrorIs(t, err, ErrInvalidInput, "input %q", input)
	}
}
