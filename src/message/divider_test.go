package message

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

func TestDivide(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "explicit separator",
			text: "X\n\n---MESSAGE_SEPARATOR---\n\nY",
			want: []string{"X", "Y"},
		},
		{
			name: "separator wins over blank lines",
			text: "Intro\n\nmore detail\n\n---MESSAGE_SEPARATOR---\n\nWant the breakdown?",
			want: []string{"Intro\n\nmore detail", "Want the breakdown?"},
		},
		{
			name: "separator with trimmed padding",
			text: "  A  \n\n---MESSAGE_SEPARATOR---\n\n  B \n\n---MESSAGE_SEPARATOR---\n\n",
			want: []string{"A", "B"},
		},
		{
			name: "blank line",
			text: "First paragraph.\n\n  \nSecond paragraph.",
			want: []string{"First paragraph.", "Second paragraph."},
		},
		{
			name: "statement then question",
			text: "You had 42 orders today, up from yesterday.\nWould you like a breakdown by hour?",
			want: []string{"You had 42 orders today, up from yesterday.", "Would you like a breakdown by hour?"},
		},
		{
			name: "short statement falls through to question rules",
			text: "Ok.\nWhat else do you need?",
			want: []string{"Ok.\nWhat else do you need?"},
		},
		{
			name: "question then remark",
			text: "Did you mean orders from today?\nok",
			want: []string{"Did you mean orders from today?", "ok"},
		},
		{
			name: "portuguese offer",
			text: "Sua receita foi de R$ 1.200 nesta semana.\nPosso detalhar por dia",
			want: []string{"Sua receita foi de R$ 1.200 nesta semana.", "Posso detalhar por dia"},
		},
		{
			name: "english offer",
			text: "Revenue grew 12% compared to last week.\nShall I compare it with last month",
			want: []string{"Revenue grew 12% compared to last week.", "Shall I compare it with last month"},
		},
		{
			name: "single block",
			text: "  Just a single sentence.  ",
			want: []string{"Just a single sentence."},
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
		{
			name: "whitespace only",
			text: " \n\t \n",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Divide(tt.text))
		})
	}
}

func TestQuestionThenSentenceRule(t *testing.T) {
	match := splitAtFirstGroup(questionThenSentence, 0, 10)

	assert.Equal(t,
		[]string{"Is this about delivery?", "Here are the delivery numbers"},
		match("Is this about delivery?\nHere are the delivery numbers"),
	)
	assert.Nil(t, match("Is this about delivery?\nShort one"))
	assert.Nil(t, match("Is this about delivery?\nlowercase remark here"))
}

func TestOfferRuleThresholds(t *testing.T) {
	match := splitAtFirstGroup(statementThenOffer, 20, 10)
	assert.Nil(t, match("Done.\nPosso ajudar em algo mais"))
	assert.Nil(t, match("The report is ready for you.\nPosso"))
}

func TestDivideIsTotal(t *testing.T) {
	inputs := []string{
		"",
		"???",
		"\n\n\n",
		"a?\n",
		".\n?",
		"?\n?\n?",
		"...\n...",
		"---MESSAGE_SEPARATOR---",
		"\n\n---MESSAGE_SEPARATOR---\n\n",
		"Vendas subiram.\nQuer que eu mostre?\nOu prefere outro período?",
		"中文。\n你好？\n好的",
		"A.\nB?\n\nC.\nPosso ajudar",
		strings.Repeat("long line without breaks ", 200),
	}

	for _, input := range inputs {
		var parts []string
		assert.NotPanics(t, func() { parts = Divide(input) }, input)

		if strings.TrimSpace(input) == "" {
			assert.Empty(t, parts, "blank input %q", input)
			continue
		}

		want := stripWhitespace(strings.ReplaceAll(input, separatorToken, ""))
		got := stripWhitespace(strings.Join(parts, ""))
		if want == "" {
			// nothing but separator markers
			assert.Len(t, parts, 1)
			continue
		}
		assert.Equal(t, want, got, "input %q", input)
		for _, p := range parts {
			assert.NotEmpty(t, p)
		}
	}
}

func TestJoinRoundTrip(t *testing.T) {
	parts := []string{"Here is your summary.", "Anything else?"}
	assert.Equal(t, parts, Divide(Join(parts)))
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
