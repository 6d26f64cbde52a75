package sqldump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestParseTuple(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []*string
	}{
		{
			name:  "quoted comma, doubled quote, NULL and number",
			input: `('a,b','it''s',NULL,123)`,
			want:  []*string{strp("a,b"), strp("it's"), nil, strp("123")},
		},
		{
			name:  "serialized blob with braces and inner quotes",
			input: `(1,'O:8:"stdClass":0:{}',NULL)`,
			want:  []*string{strp("1"), strp(`O:8:"stdClass":0:{}`), nil},
		},
		{
			name:  "backslash escapes",
			input: `('line\nbreak','tab\there','quote\'s','back\\slash')`,
			want:  []*string{strp("line\nbreak"), strp("tab\there"), strp("quote's"), strp(`back\slash`)},
		},
		{
			name:  "double quoted string keeps single quotes",
			input: `("it's",'say "hi"')`,
			want:  []*string{strp("it's"), strp(`say "hi"`)},
		},
		{
			name:  "quoted NULL is a string",
			input: `('NULL',null)`,
			want:  []*string{strp("NULL"), nil},
		},
		{
			name:  "empty string is present",
			input: `('',5)`,
			want:  []*string{strp(""), strp("5")},
		},
		{
			name:  "nested parens outside strings",
			input: `(1,(2,3),4)`,
			want:  []*string{strp("1"), strp("(2,3)"), strp("4")},
		},
		{
			name:  "closing paren inside string",
			input: `(1,'smile :)',2)`,
			want:  []*string{strp("1"), strp("smile :)"), strp("2")},
		},
		{
			name:  "whitespace between fields",
			input: `( 1 , 'x' , NULL )`,
			want:  []*string{strp("1"), strp("x"), nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, end, err := ParseTuple([]byte(tt.input), 0)
			require.NoError(t, err)
			assert.Equal(t, len(tt.input)-1, end)
			assert.Equal(t, tt.want, fields)
		})
	}
}

func TestParseTuple_Offset(t *testing.T) {
	buf := []byte(`VALUES (1,'a'),(2,'b');`)

	fields, end, err := ParseTuple(buf, 7)
	require.NoError(t, err)
	assert.Equal(t, []*string{strp("1"), strp("a")}, fields)
	assert.Equal(t, byte(')'), buf[end])

	fields, _, err = ParseTuple(buf, end+2)
	require.NoError(t, err)
	assert.Equal(t, []*string{strp("2"), strp("b")}, fields)
}

func TestParseTuple_Incomplete(t *testing.T) {
	inputs := []string{
		`(1,'unterminated`,
		`(1,2`,
		`(1,'a\`,
		`(1,(2,3)`,
		``,
		`1,2)`,
	}
	for _, in := range inputs {
		_, _, err := ParseTuple([]byte(in), 0)
		assert.ErrorIs(t, err, ErrIncompleteTuple, "input %q", in)
	}
}
