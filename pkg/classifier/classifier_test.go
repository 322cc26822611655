package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResult(t *testing.T) {
	testCases := []struct {
		name      string
		body      string
		expected  Result
		expectErr string
	}{
		{
			name:     "Valid verdict",
			body:     `{"keywords": ["happy", "animals"], "is_for_kids": true}`,
			expected: Result{Keywords: []string{"happy", "animals"}, IsForKids: true},
		},
		{
			name:     "Empty keyword list",
			body:     `{"keywords": [], "is_for_kids": false}`,
			expected: Result{Keywords: []string{}, IsForKids: false},
		},
		{
			name:     "Extra fields ignored",
			body:     `{"keywords": ["crime"], "is_for_kids": false, "score": 0.1}`,
			expected: Result{Keywords: []string{"crime"}, IsForKids: false},
		},
		{name: "Not JSON", body: `<html>oops</html>`, expectErr: "not valid JSON"},
		{name: "Array body", body: `[true]`, expectErr: "not a JSON object"},
		{name: "Missing verdict", body: `{"keywords": ["a"]}`, expectErr: "is_for_kids"},
		{name: "Verdict as string", body: `{"keywords": [], "is_for_kids": "yes"}`, expectErr: "is_for_kids"},
		{name: "Missing keywords", body: `{"is_for_kids": true}`, expectErr: "keywords missing"},
		{name: "Keywords not strings", body: `{"keywords": ["ok", 3], "is_for_kids": true}`, expectErr: "keywords[1]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeResult([]byte(tc.body))
			if tc.expectErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrRequestFailed)
				assert.Contains(t, err.Error(), tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestRenderPrompt(t *testing.T) {
	assert.Equal(t, "kw: a, b", RenderPrompt("kw: {{KEYWORDS}}", []string{"a", "b"}))
	assert.Contains(t, RenderPrompt("", []string{"forest"}), "forest")
}

func TestTrimFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, trimFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, trimFences("  {\"a\":1} "))
}
