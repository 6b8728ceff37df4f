package sanitizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text untouched",
			input: "أهلاً بك",
			want:  "أهلاً بك",
		},
		{
			name:  "single occurrence",
			input: "نعمل في شركتنا بجد",
			want:  "نعمل في الشركة القابضة بجد",
		},
		{
			name:  "multiple occurrences",
			input: "في شركتنا و في شركتنا",
			want:  "في الشركة القابضة و في الشركة القابضة",
		},
		{
			name:  "wide spacing inside phrase",
			input: "نعمل في     شركتنا",
			want:  "نعمل في الشركة القابضة",
		},
		{
			name:  "tab and nbsp inside phrase",
			input: "في\tشركتنا ثم في\u00a0شركتنا",
			want:  "في الشركة القابضة ثم في الشركة القابضة",
		},
		{
			name:  "collapses spaces and trims",
			input: "   مرحبا    بك   ",
			want:  "مرحبا بك",
		},
		{
			name:  "keeps newlines",
			input: "سطر أول\nسطر  ثاني",
			want:  "سطر أول\nسطر ثاني",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestSanitizeRemovesEveryVariant(t *testing.T) {
	separators := []string{" ", "  ", "\t", " \t ", "\u00a0", "\u2009", "\n"}
	prefixes := []string{"", " ", "نص ", "   نص  "}
	suffixes := []string{"", " ", " نص", "  نص   "}

	for _, sep := range separators {
		for _, prefix := range prefixes {
			for _, suffix := range suffixes {
				input := prefix + "في" + sep + "شركتنا" + suffix + " و" + "في" + sep + "شركتنا"
				got := Sanitize(input)

				assert.NotContains(t, got, "شركتنا", "input %q", input)
				assert.NotContains(t, got, "  ", "input %q", input)
				assert.Equal(t, strings.TrimSpace(got), got)
			}
		}
	}
}

func TestReplaceForbiddenKeepsSpacing(t *testing.T) {
	assert.Equal(t, "لاً ", ReplaceForbidden("لاً "))
	assert.Equal(t, " في الشركة القابضة ", ReplaceForbidden(" في شركتنا "))
}
