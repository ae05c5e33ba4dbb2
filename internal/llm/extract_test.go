package llm

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain JSON",
			input:    `{"type": "film", "title": "Dune"}`,
			expected: `{"type": "film", "title": "Dune"}`,
		},
		{
			name:     "json code fence",
			input:    "Ecco il risultato:\n```json\n{\"type\": \"book\"}\n```",
			expected: `{"type": "book"}`,
		},
		{
			name:     "generic code fence",
			input:    "```\n{\"type\": \"music\"}\n```",
			expected: `{"type": "music"}`,
		},
		{
			name:     "JSON embedded in prose",
			input:    `Certo! {"type": "todo", "title": "Spesa"} Spero sia utile.`,
			expected: `{"type": "todo", "title": "Spesa"}`,
		},
		{
			name:     "nested braces",
			input:    `risposta: {"a": {"b": {"c": 1}}} fine`,
			expected: `{"a": {"b": {"c": 1}}}`,
		},
		{
			name:     "no JSON at all",
			input:    "Non posso classificare questo contenuto.",
			expected: "",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "unbalanced braces",
			input:    `{"type": "film"`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.input)
			if got != tt.expected {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.expected)
			}
		})
	}
}
