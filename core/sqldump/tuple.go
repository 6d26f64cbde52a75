package sqldump

import (
	"bytes"
	"errors"
)

// ErrIncompleteTuple is returned when a tuple has no matching closing parenthesis
// within the buffer. Callers drop the row; it is never fatal.
var ErrIncompleteTuple = errors.New("incomplete tuple")

// ParseTuple extracts the fields of the value tuple whose opening parenthesis is at
// buf[start]. It returns the raw field values in order and the index of the matching
// closing parenthesis.
//
// A nil field means the bare token NULL. Quoted values are returned without their
// quotes, with backslash escapes and doubled quotes resolved. Parentheses outside
// strings are depth-tracked so only the outermost ')' ends the tuple.
func ParseTuple(buf []byte, start int) ([]*string, int, error) {
	if start < 0 || start >= len(buf) || buf[start] != '(' {
		return nil, 0, ErrIncompleteTuple
	}

	var (
		fields []*string
		cur    = make([]byte, 0, 64)
		quoted bool
		inStr  bool
		quote  byte
		depth  int
	)

	flush := func() {
		fields = append(fields, finishField(cur, quoted))
		cur = cur[:0]
		quoted = false
	}

	for i := start + 1; i < len(buf); i++ {
		c := buf[i]

		if inStr {
			switch c {
			case '\\':
				if i+1 >= len(buf) {
					return nil, 0, ErrIncompleteTuple
				}
				i++
				cur = append(cur, unescape(buf[i]))
			case quote:
				if i+1 < len(buf) && buf[i+1] == quote {
					cur = append(cur, quote)
					i++
					continue
				}
				inStr = false
			default:
				cur = append(cur, c)
			}
			continue
		}

		switch c {
		case '\'', '"':
			inStr = true
			quote = c
			quoted = true
		case '(':
			depth++
			cur = append(cur, c)
		case ')':
			if depth == 0 {
				flush()
				return fields, i, nil
			}
			depth--
			cur = append(cur, c)
		case ',':
			if depth == 0 {
				flush()
				continue
			}
			cur = append(cur, c)
		case ' ', '\t', '\r', '\n':
			if depth > 0 {
				cur = append(cur, c)
			}
		default:
			cur = append(cur, c)
		}
	}

	return nil, 0, ErrIncompleteTuple
}

func finishField(cur []byte, quoted bool) *string {
	if !quoted && len(cur) == 4 && bytes.EqualFold(cur, []byte("NULL")) {
		return nil
	}
	s := string(cur)
	return &s
}

// unescape resolves the character following a backslash inside a quoted value.
// Anything that is not a known MySQL escape is kept literally.
func unescape(c byte) byte {
	switch c {
	case '0':
		return 0
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'b':
		return '\b'
	case 'Z':
		return 0x1a
	default:
		return c
	}
}
