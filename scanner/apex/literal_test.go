package apex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractQueryLiterals(t *testing.T) {
	testCases := []struct {
		description string
		source      string
		expectTexts []string
		expectLines []int
	}{
		{
			description: "single literal",
			source:      "List<Account> accs = [SELECT Id FROM Account];",
			expectTexts: []string{"SELECT Id FROM Account"},
			expectLines: []int{1},
		},
		{
			description: "two literals on one line",
			source:      "List<Account> a = [SELECT Id FROM Account LIMIT 1]; List<Contact> c = [SELECT Id FROM Contact];",
			expectTexts: []string{"SELECT Id FROM Account LIMIT 1", "SELECT Id FROM Contact"},
			expectLines: []int{1, 1},
		},
		{
			description: "literal spanning lines",
			source:      "List<Account> accs = [SELECT Id, Name\n    FROM Account\n    LIMIT 10];",
			expectTexts: []string{"SELECT Id, Name\n    FROM Account\n    LIMIT 10"},
			expectLines: []int{1},
		},
		{
			description: "bracket in line comment ignored",
			source:      "// [SELECT Id FROM Account]\nList<Account> accs = [SELECT Name FROM Account];",
			expectTexts: []string{"SELECT Name FROM Account"},
			expectLines: []int{2},
		},
		{
			description: "bracket in block comment ignored",
			source:      "/* [SELECT Id FROM Account] */\nInteger i = 0;",
			expectTexts: nil,
			expectLines: nil,
		},
		{
			description: "bracket in string ignored",
			source:      "String q = '[SELECT Id FROM Account]';",
			expectTexts: nil,
			expectLines: nil,
		},
		{
			description: "array access is not a query",
			source:      "Integer x = values[0];",
			expectTexts: nil,
			expectLines: nil,
		},
		{
			description: "lowercase select",
			source:      "List<Account> accs = [select Id from Account];",
			expectTexts: []string{"select Id from Account"},
			expectLines: []int{1},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			literals := ExtractQueryLiterals([]byte(testCase.source))
			var texts []string
			var lines []int
			for _, literal := range literals {
				texts = append(texts, literal.Text)
				lines = append(lines, literal.StartLine)
			}
			assert.Equal(t, testCase.expectTexts, texts)
			assert.Equal(t, testCase.expectLines, lines)
		})
	}
}

func TestMaskQueryLiterals(t *testing.T) {
	source := []byte("List<Account> accs = [SELECT Id, Name\n    FROM Account];\nInteger i = 0;")
	literals := ExtractQueryLiterals(source)
	masked := MaskQueryLiterals(source, literals)

	assert.Equal(t, len(source), len(masked), "masking must preserve byte length")
	assert.Equal(t, countNewlines(source), countNewlines(masked), "masking must preserve line breaks")
	assert.Equal(t, byte('0'), masked[literals[0].StartByte], "literal replaced by a numeric placeholder")
	assert.NotContains(t, string(masked), "SELECT")
	assert.Contains(t, string(masked), "Integer i = 0;")
}

func countNewlines(data []byte) int {
	count := 0
	for _, b := range data {
		if b == '\n' {
			count++
		}
	}
	return count
}
