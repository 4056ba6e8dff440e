package encodedword

import (
	"bytes"
	"encoding/base64"
)

// parseToken splits a "=?charset?enc?payload?=" span (the exact bytes
// matched by the scanner, guaranteed to start with "=?" and end with "?=")
// into its charset, encoding letter (Q or B, upper-cased) and payload.
func parseToken(tok []byte) (charset string, enc byte, payload []byte, ok bool) {
	if len(tok) < 6 || tok[0] != '=' || tok[1] != '?' || tok[len(tok)-2] != '?' || tok[len(tok)-1] != '=' {
		return "", 0, nil, false
	}
	mid := tok[2 : len(tok)-2]
	i := bytes.IndexByte(mid, '?')
	if i < 0 {
		return "", 0, nil, false
	}
	charsetBytes := mid[:i]
	rest := mid[i+1:]
	j := bytes.IndexByte(rest, '?')
	if j < 0 {
		return "", 0, nil, false
	}
	encBytes := rest[:j]
	payload = rest[j+1:]
	if len(encBytes) != 1 {
		return "", 0, nil, false
	}
	enc = encBytes[0]
	if enc >= 'a' && enc <= 'z' {
		enc -= 'a' - 'A'
	}
	if enc != 'Q' && enc != 'B' {
		return "", 0, nil, false
	}
	// strip an optional RFC 2231 language subtag (charset*lang)
	if k := bytes.IndexByte(charsetBytes, '*'); k >= 0 {
		charsetBytes = charsetBytes[:k]
	}
	return string(charsetBytes), enc, payload, true
}

// decodePayload decodes a token's payload per its encoding letter. Decode
// failures return ok=false; the caller drops the payload silently, per the
// EWD contract that malformed tokens never fail the whole header.
func decodePayload(enc byte, payload []byte) (decoded []byte, ok bool) {
	switch enc {
	case 'Q':
		return decodeQ(payload), true
	case 'B':
		return decodeB(payload)
	}
	return nil, false
}

// decodeQ decodes RFC 2047 "Q" encoding: underscore maps to space, and
// "=HH" introduces a hex-escaped byte; otherwise bytes pass through.
func decodeQ(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		switch {
		case b[i] == '_':
			out = append(out, ' ')
		case b[i] == '=' && i+2 < len(b) && isHex(b[i+1]) && isHex(b[i+2]):
			out = append(out, hexVal(b[i+1])<<4|hexVal(b[i+2]))
			i += 2
		default:
			out = append(out, b[i])
		}
	}
	return out
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return c - 'a' + 10
	}
}

// decodeB decodes RFC 2047 "B" encoding (base64), tolerating missing
// padding the way real-world MUAs emit it.
func decodeB(b []byte) ([]byte, bool) {
	if out, err := base64.StdEncoding.DecodeString(string(b)); err == nil {
		return out, true
	}
	if out, err := base64.RawStdEncoding.DecodeString(string(b)); err == nil {
		return out, true
	}
	return nil, false
}
