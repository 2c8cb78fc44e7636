package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolations(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []interpolation
	}{
		{
			name: "none",
			text: "plain text",
			want: nil,
		},
		{
			name: "single",
			text: "hello #{name}!",
			want: []interpolation{{code: "name", lineOffset: 1}},
		},
		{
			name: "nested braces",
			text: "#{items.map { |i| i.to_s }}",
			want: []interpolation{{code: "items.map { |i| i.to_s }", lineOffset: 1}},
		},
		{
			name: "multiple lines",
			text: "a #{one}\nb\nc #{two}",
			want: []interpolation{
				{code: "one", lineOffset: 1},
				{code: "two", lineOffset: 3},
			},
		},
		{
			name: "escaped interpolation is skipped",
			text: `a \#{nope} b #{yes}`,
			want: []interpolation{{code: "yes", lineOffset: 1}},
		},
		{
			name: "unterminated",
			text: "a #{broken",
			want: nil,
		},
		{
			name: "hash without brace is not interpolation",
			text: "# heading\n#also not",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, interpolations(tt.text))
		})
	}
}
