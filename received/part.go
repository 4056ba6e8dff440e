package received

import "strings"

// Splits the decoded value of a Received header into a sequence of parts
// (from/by/with/for/unknown), each with its data bytes and any
// parenthesized comments.

type partKind int

const (
	partFrom partKind = iota
	partBy
	partFor
	partWith
	partUnknown
)

// part carries one clause of a Received value: type tag, accumulated
// lower-cased/trimmed data, and an ordered list of comments. Unknown parts
// never accumulate data or comments; their content (SMTP "id" values and
// other unrecognized keywords) is consumed only to find the next part
// boundary.
type part struct {
	typ      partKind
	data     []byte
	comments [][]byte
}

const (
	stSkipSpaces = iota
	stInComment
	stReadData
	stReadTCPInfo
	stAllDone
)

// spill splits value into its from/by/with/for/unknown parts, returning
// the byte offset just past the ";" date separator (or -1 if none was seen) and
// whether the value could be interpreted at all (a leading "from" token
// is mandatory; its absence is an unrecoverable structural failure).
func spill(value []byte) (parts []*part, datePos int, ok bool) {
	n := len(value)
	i := 0
	for i < n && isSMTPSpace(value[i]) {
		i++
	}

	if n-i <= 4 || !strings.EqualFold(string(value[i:i+4]), "from") {
		return nil, -1, false
	}
	i += 4

	pt, consumed, good := processPart(value[i:], partFrom)
	if !good {
		return nil, -1, false
	}
	parts = append(parts, pt)
	i += consumed

	if n-i > 2 && strings.EqualFold(string(value[i:i+2]), "by") {
		i += 2
		pt, consumed, good = processPart(value[i:], partBy)
		if !good {
			return nil, -1, false
		}
		parts = append(parts, pt)
		i += consumed
	}

	datePos = -1
loop:
	for i < n {
		if value[i] == ';' {
			datePos = i + 1
			break
		}

		var kind partKind
		switch {
		case n-i >= 4 && strings.EqualFold(string(value[i:i+4]), "with"):
			i += 4
			kind = partWith
		case n-i >= 3 && strings.EqualFold(string(value[i:i+3]), "for"):
			i += 3
			kind = partFor
		default:
			j := i
			for j < n && !isSMTPSpace(value[j]) && value[j] != '(' && value[j] != ';' {
				j++
			}
			if j == n {
				// trailing bare keyword, nothing left to scan
				break loop
			}
			if value[j] == ';' {
				datePos = j + 1
				break loop
			}
			i = j
			kind = partUnknown
		}

		pt, consumed, good = processPart(value[i:], kind)
		if !good {
			return nil, -1, false
		}
		parts = append(parts, pt)
		i += consumed
	}

	return parts, datePos, true
}

// processPart scans one part's data starting at the head of data
// (immediately after its keyword, e.g. right after "from"/"by"), stopping
// at the next keyword boundary, a ";" date separator, or end of input.
// Returns the part, how many bytes of data were consumed, and whether the
// scan reached a recognized stopping state.
func processPart(data []byte, typ partKind) (*part, int, bool) {
	n := len(data)
	p := &part{typ: typ}
	var obraces, ebraces int
	seenTCPInfo := false
	seenData := false
	state := stSkipSpaces
	nextState := stReadData
	pos, c := 0, 0

	appendData := func(b []byte) {
		seenData = true
		if typ == partUnknown {
			return
		}
		p.data = append(p.data, lowerBytes(b)...)
	}
	appendComment := func(b []byte) {
		if typ == partUnknown || len(b) == 0 {
			return
		}
		p.comments = append(p.comments, trimSMTPSpace(lowerBytes(b)))
	}

	for pos < n {
		switch state {
		case stSkipSpaces:
			if !isSMTPSpace(data[pos]) {
				c = pos
				state = nextState
			} else {
				pos++
			}
		case stInComment:
			switch data[pos] {
			case '(':
				obraces++
			case ')':
				ebraces++
				if ebraces >= obraces {
					if pos > c {
						appendComment(data[c:pos])
					}
					pos++
					c = pos
					state = stSkipSpaces
					nextState = stReadData
					continue
				}
			}
			pos++
		case stReadData:
			switch {
			case data[pos] == '(':
				if pos > c {
					appendData(data[c:pos])
				}
				state = stInComment
				obraces, ebraces = 1, 0
				pos++
				c = pos
			case isSMTPSpace(data[pos]):
				if pos > c {
					appendData(data[c:pos])
				}
				state = stSkipSpaces
				nextState = stReadData
				c = pos
			case data[pos] == ';':
				if pos > c {
					appendData(data[c:pos])
				}
				state = stAllDone
			case seenData:
				if !seenTCPInfo && typ == partFrom && data[c] == '[' {
					state = stReadTCPInfo
					pos++
				} else {
					state = stAllDone
				}
			default:
				pos++
			}
		case stReadTCPInfo:
			if data[pos] == ']' {
				appendData(data[c : pos+1])
				seenTCPInfo = true
				state = stSkipSpaces
				nextState = stReadData
				c = pos
			}
			pos++
		case stAllDone:
			p.data = trimSMTPSpace(p.data)
			return p, pos, true
		}
	}

	switch state {
	case stReadData:
		if pos > c {
			appendData(data[c:pos])
		}
		p.data = trimSMTPSpace(p.data)
		return p, pos, true
	case stSkipSpaces:
		p.data = trimSMTPSpace(p.data)
		return p, pos, true
	default:
		return nil, 0, false
	}
}

func isSMTPSpace(c byte) bool { return c == ' ' || c == '\t' }

func lowerBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}

func trimSMTPSpace(b []byte) []byte {
	i := 0
	for i < len(b) && isSMTPSpace(b[i]) {
		i++
	}
	j := len(b)
	for j > i && isSMTPSpace(b[j-1]) {
		j--
	}
	return b[i:j]
}
