package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupWord_Keywords(t *testing.T) {
	tests := []struct {
		word     string
		expected TokenType
	}{
		{"if", IF},
		{"then", THEN},
		{"else", ELSE},
		{"when", WHEN},
		{"and", AND},
		{"or", OR},
		{"using", USING},
		{"with", WITH},
		{"to", TO},
		{"in", IN},
		{"from", FROM},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LookupWord(tt.word), "word %q", tt.word)
	}
}

func TestLookupWord_VerbsNormalizePlurals(t *testing.T) {
	tests := []struct {
		word     string
		expected TokenType
	}{
		{"send", SEND},
		{"sends", SEND},
		{"store", STORE},
		{"stores", STORE},
		{"validate", VALIDATE},
		{"validates", VALIDATE},
		{"process", PROCESS},
		{"processes", PROCESS},
		{"trigger", TRIGGER},
		{"triggers", TRIGGER},
		{"call", CALL},
		{"calls", CALL},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LookupWord(tt.word), "verb %q", tt.word)
	}
}

func TestLookupWord_PlainIdentifiers(t *testing.T) {
	for _, word := range []string{"user", "email", "new_user", "sending", "iff", "notify"} {
		assert.Equal(t, IDENT, LookupWord(word), "word %q should be IDENT", word)
	}
}

func TestTokenType_String(t *testing.T) {
	assert.Equal(t, "IDENT", IDENT.String())
	assert.Equal(t, "SEND", SEND.String())
	assert.Equal(t, ":", COLON.String())
	assert.Equal(t, "TOKEN(9999)", TokenType(9999).String())
}

func TestTokenType_Classification(t *testing.T) {
	assert.True(t, IsKeyword(IF))
	assert.True(t, IsKeyword(FROM))
	assert.False(t, IsKeyword(SEND))
	assert.False(t, IsKeyword(IDENT))

	assert.True(t, IsVerb(SEND))
	assert.True(t, IsVerb(CALL))
	assert.False(t, IsVerb(USING))
	assert.False(t, IsVerb(SERVICE))
}

func TestSpan_Text(t *testing.T) {
	source := `if user then send alert`
	span := Span{
		Start: Position{Line: 1, Column: 4, Offset: 3},
		End:   Position{Line: 1, Column: 8, Offset: 7},
	}

	require.True(t, span.IsValid())
	assert.Equal(t, "user", span.Text(source))
	assert.Equal(t, 4, span.Len())
	assert.True(t, span.Contains(3))
	assert.True(t, span.Contains(6))
	assert.False(t, span.Contains(7), "end offset is exclusive")
}

func TestPosition_String(t *testing.T) {
	p := Position{Line: 3, Column: 14, Offset: 52}
	assert.Equal(t, "line 3, column 14", p.String())
	assert.True(t, p.IsValid())
	assert.False(t, Position{}.IsValid())
}
