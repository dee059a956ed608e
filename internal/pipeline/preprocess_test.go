package pipeline

import (
	"context"
	"testing"
)

func TestMessagePreprocessor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain text unchanged", input: "# Hi\n\ntext", want: "# Hi\n\ntext"},
		{name: "crlf normalized", input: "a\r\nb\rc", want: "a\nb\nc"},
		{name: "bom stripped", input: "\uFEFF# Title", want: "# Title"},
		{name: "blank lines compressed", input: "a\n\n\n\n\nb", want: "a\n\nb"},
		{name: "highlight marked", input: "a ==b== c", want: "a " + MarkStartPlaceholder + "b" + MarkEndPlaceholder + " c"},
		{name: "empty highlight ignored", input: "a ==== b", want: "a ==== b"},
	}

	p := &MessagePreprocessor{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := p.PreprocessMarkdown(context.Background(), tt.input)
			if got != tt.want {
				t.Errorf("PreprocessMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestConvertMarkPlaceholders(t *testing.T) {
	t.Parallel()

	in := "<p>" + MarkStartPlaceholder + "x" + MarkEndPlaceholder + "</p>"
	want := "<p><mark>x</mark></p>"
	if got := ConvertMarkPlaceholders(in); got != want {
		t.Errorf("ConvertMarkPlaceholders(%q) = %q, want %q", in, got, want)
	}
}
