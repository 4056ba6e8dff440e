// Package encodedword implements the encoded-word decoder: a five-state
// byte scanner that folds a header value containing RFC 2047
// "=?charset?enc?text?=" tokens into UTF-8. Adjacent tokens of the same
// charset are concatenated before transcoding, per RFC 2047 6.2, with
// iso-2022-jp exempted because the encoding is stateful.
package encodedword

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// Transcoder converts bytes from a named charset to UTF-8. The charset
// package implements this; the decoder never fails when a Transcoder
// returns an error, it substitutes U+FFFD for the affected run.
type Transcoder func(b []byte, charset string) ([]byte, error)

const (
	stNormal = iota
	stGotEq
	stEncodedStart
	stMoreQ
	stSkipSpaces
)

// Decode scans input for encoded words, returning the UTF-8 decoded string
// and whether any invalid UTF-8 or undecodable payload was encountered.
// Decode never returns an error: malformed input degrades gracefully.
func Decode(input []byte, transcode Transcoder) (string, bool) {
	d := &decoder{input: input, transcode: transcode}
	d.run()
	out := d.out.String()
	if !utf8.ValidString(out) {
		out = strings.ToValidUTF8(out, string(utf8.RuneError))
		d.invalidUTF8 = true
	}
	return sanityCheck(out), d.invalidUTF8
}

type decoder struct {
	input     []byte
	transcode Transcoder

	out         bytes.Buffer
	invalidUTF8 bool

	tokenBuf     []byte
	tokenCharset string
}

func (d *decoder) flush() {
	if len(d.tokenBuf) == 0 {
		return
	}
	wrote := false
	if d.transcode != nil {
		if u, err := d.transcode(d.tokenBuf, d.tokenCharset); err == nil {
			d.out.Write(u)
			wrote = true
		}
	} else {
		d.out.Write(d.tokenBuf)
		wrote = true
	}
	if !wrote {
		d.out.WriteRune(utf8.RuneError)
		d.invalidUTF8 = true
	}
	d.tokenBuf = nil
}

// maybeSaveToken decides, given the charset of a newly parsed token,
// whether the pending buffer can be concatenated with it (same charset,
// and not iso-2022-jp, which is never concatenated even with itself) or
// must be flushed first.
func (d *decoder) maybeSaveToken(newCharset string) {
	if len(d.tokenBuf) == 0 {
		return
	}
	if strings.EqualFold(newCharset, d.tokenCharset) && !strings.EqualFold(newCharset, "iso-2022-jp") {
		return
	}
	d.flush()
}

func (d *decoder) run() {
	input := d.input
	n := len(input)
	state := stNormal
	c := 0
	p := 0
	qmarks := 0

	for p < n {
		switch state {
		case stNormal:
			ch := input[p]
			switch {
			case ch == '=':
				d.out.Write(input[c:p])
				c = p
				state = stGotEq
				p++
			case ch >= 0x80:
				d.out.Write(input[c:p])
				r, size := utf8.DecodeRune(input[p:])
				if r == utf8.RuneError && size <= 1 {
					c = p + 1
					d.out.WriteRune(utf8.RuneError)
					d.invalidUTF8 = true
					p++
				} else {
					c = p
					p += size
				}
			default:
				p++
			}

		case stGotEq:
			if input[p] == '?' {
				state = stEncodedStart
				qmarks = 0
				p++
			} else {
				// flush the lone "=" and rescan this byte, it may open
				// another "=?" boundary
				d.out.WriteByte('=')
				c = p
				state = stNormal
			}

		case stEncodedStart:
			if input[p] == '?' {
				state = stMoreQ
				qmarks++
			}
			p++

		case stMoreQ:
			if input[p] == '=' {
				if qmarks < 3 {
					state = stEncodedStart
				} else {
					tok := input[c : p+1]
					if charset, enc, payload, ok := parseToken(tok); ok {
						d.maybeSaveToken(charset)
						decoded, _ := decodePayload(enc, payload)
						d.tokenBuf = append(d.tokenBuf, decoded...)
						d.tokenCharset = charset
						c = p + 1
						state = stSkipSpaces
					} else {
						if len(d.tokenBuf) > 0 {
							d.flush()
						}
						d.out.Write(input[c:p])
						c = p
						state = stNormal
					}
				}
			} else {
				state = stEncodedStart
			}
			p++

		case stSkipSpaces:
			switch {
			case isHeaderSpace(input[p]):
				p++
			case input[p] == '=' && p < n-1 && input[p+1] == '?':
				c = p
				p += 2
				qmarks = 0
				state = stEncodedStart
			default:
				if len(d.tokenBuf) > 0 {
					d.flush()
				}
				d.out.Write(input[c:p])
				c = p
				state = stNormal
			}
		}
	}

	switch state {
	case stSkipSpaces:
		if len(d.tokenBuf) > 0 {
			d.flush()
		}
	default:
		// a token cut off by end of input flushes whatever complete tokens
		// preceded it, then falls back to the raw bytes
		if len(d.tokenBuf) > 0 {
			d.flush()
		}
		if p > c {
			d.out.Write(input[c:p])
		}
	}
}

func isHeaderSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// sanityCheck replaces any non-graphic, non-space, non-high-bit byte with
// '?' and normalizes control whitespace to a plain space, operating
// byte-wise since every UTF-8 continuation/lead byte has the high bit set.
func sanityCheck(s string) string {
	b := []byte(s)
	for i, t := range b {
		if t&0x80 != 0 {
			continue
		}
		if t > 0x20 && t < 0x7f {
			continue
		}
		if t == ' ' || t == '\t' || t == '\n' || t == '\v' || t == '\f' || t == '\r' {
			b[i] = ' '
		} else {
			b[i] = '?'
		}
	}
	return string(b)
}
