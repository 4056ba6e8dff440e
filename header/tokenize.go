package header

// Tokenize implements the header tokenizer: a byte-state machine over raw
// header-block bytes. States: 0 start-of-line; 1 reading name; 2 past ':',
// reading separator whitespace; 3 reading value; 4 flush-value; 5
// flush-name-only; 99 folding; 100 skip-to-newline error recovery.

// Options configures a Tokenize run. Decode, OnBroken, OnBadUnicode and
// OnHeader are the hooks through which the caller wires in encoded-word
// decoding, task flag bookkeeping and special-field recognition, keeping
// this package free of any dependency on the rest of the engine.
type Options struct {
	// CountNewlines enables the newline-majority counting pass.
	CountNewlines bool
	// Decode runs the Encoded-Word Decoder over an unfolded raw value,
	// returning the UTF-8 decoded string and whether invalid UTF-8/encoding
	// was encountered. If nil, the unfolded raw bytes are used verbatim.
	Decode func(raw []byte) (decoded string, invalidUTF8 bool)
	// OnBroken is invoked the first and every time BROKEN_HEADERS would be
	// raised; the caller decides whether to latch it.
	OnBroken func()
	// OnBadUnicode is invoked whenever Decode reports invalid UTF-8.
	OnBadUnicode func()
	// OnHeader is invoked immediately after a Header is inserted into the
	// Table; the engine hooks its special-field recognition here.
	OnHeader func(h *Header)
}

const (
	idxLF = iota
	idxCR
	idxCRLF
)

// Tokenize walks buf and returns the populated Table plus the dominant
// newline style observed (NewlineUnknown if CountNewlines was false or no
// line endings were seen).
func Tokenize(buf []byte, opts Options) (*Table, NewlineStyle) {
	table := NewTable()
	n := len(buf)

	state := 0
	nextState := 100
	errState := 100
	validFolding := false
	var nlines [3]int
	norder := 0

	var h *Header
	var headerStart, c int

	p := 0
	for p < n {
		switch state {
		case 0:
			if !isAlpha(buf[p]) {
				if opts.OnBroken != nil {
					opts.OnBroken()
				}
				state = 100
				nextState = 0
			} else {
				state = 1
				c = p
				headerStart = p
			}
		case 1:
			if buf[p] == ':' {
				h = &Header{
					OriginalName:   string(buf[c:p]),
					EmptySeparator: true,
				}
				h.Name = lower(h.OriginalName)
				p++
				state = 2
				c = p
			} else if isSpace(buf[p]) {
				if opts.OnBroken != nil {
					opts.OnBroken()
				}
				state = 100
				nextState = 0
			} else {
				p++
			}
		case 2:
			switch {
			case buf[p] == '\t':
				h.TabSeparated = true
				h.EmptySeparator = false
				p++
			case buf[p] == ' ':
				h.EmptySeparator = false
				p++
			case buf[p] == '\n' || buf[p] == '\r':
				if opts.CountNewlines {
					countNewline(buf, p, &nlines)
				}
				if p > c {
					h.Separator = cloneBytes(buf[c:p])
				}
				state = 99
				nextState = 3
				errState = 5
				c = p
			default:
				if p > c {
					h.Separator = cloneBytes(buf[c:p])
				}
				c = p
				state = 3
			}
		case 3:
			if buf[p] == '\r' || buf[p] == '\n' {
				if opts.CountNewlines {
					countNewline(buf, p, &nlines)
				}
				state = 99
				nextState = 3
				errState = 4
			} else if p+1 == n {
				state = 4
			} else {
				p++
			}
		case 4:
			rawEnd := p
			if p+1 >= n {
				rawEnd = n
			}
			h.RawValue = cloneBytes(trimEOL(buf[headerStart:rawEnd]))
			h.RawLen = len(h.RawValue)

			value := unfoldValue(buf[c:rawEnd])
			var decoded string
			var invalidUTF8 bool
			if opts.Decode != nil {
				decoded, invalidUTF8 = opts.Decode(value)
			} else {
				decoded = string(value)
			}
			if invalidUTF8 && opts.OnBadUnicode != nil {
				opts.OnBadUnicode()
			}
			h.Decoded = decoded
			h.Order = norder
			norder++
			table.Insert(h)
			if opts.OnHeader != nil {
				opts.OnHeader(h)
			}
			h = nil
			state = 0
			if rawEnd == n {
				p = n
			}
		case 5:
			rawEnd := p
			h.RawValue = cloneBytes(trimEOL(buf[headerStart:rawEnd]))
			h.RawLen = len(h.RawValue)
			h.Decoded = ""
			h.Order = norder
			norder++
			table.Insert(h)
			if opts.OnHeader != nil {
				opts.OnHeader(h)
			}
			h = nil
			state = 0
			if p+1 >= n {
				p = n
			}
		case 99:
			if p+1 == n {
				state = errState
			} else if buf[p] == '\r' || buf[p] == '\n' {
				p++
				validFolding = false
			} else if buf[p] == '\t' || buf[p] == ' ' {
				p++
				validFolding = true
			} else if validFolding {
				state = nextState
			} else {
				state = errState
			}
		case 100:
			switch {
			case buf[p] == '\r':
				if p+1 < n && buf[p+1] == '\n' {
					p++
				}
				p++
				state = nextState
			case buf[p] == '\n':
				if p+1 < n && buf[p+1] == '\r' {
					p++
				}
				p++
				state = nextState
			case p+1 == n:
				state = nextState
				p++
			default:
				p++
			}
		}
	}

	if !opts.CountNewlines {
		return table, NewlineUnknown
	}
	maxCnt := 0
	sel := -1
	styles := [3]NewlineStyle{idxLF: NewlineLF, idxCR: NewlineCR, idxCRLF: NewlineCRLF}
	for i, cnt := range nlines {
		if cnt > maxCnt {
			maxCnt = cnt
			sel = i
		}
	}
	if sel == -1 {
		return table, NewlineUnknown
	}
	return table, styles[sel]
}

// unfoldValue collapses RFC 5322 folding: on any CR/LF byte, emit a single
// space and skip all following linear whitespace (including further fold
// boundaries), then strip leading/trailing spaces and elide embedded NULs.
func unfoldValue(b []byte) []byte {
	out := make([]byte, 0, len(b))
	folding := false
	for _, ch := range b {
		if !folding {
			switch {
			case ch == '\n' || ch == '\r':
				folding = true
				out = append(out, ' ')
			case ch == 0:
				// elided
			default:
				out = append(out, ch)
			}
			continue
		}
		if isFoldSpace(ch) {
			continue
		}
		folding = false
		if ch != 0 {
			out = append(out, ch)
		}
	}
	for len(out) > 0 && out[len(out)-1] == ' ' {
		out = out[:len(out)-1]
	}
	i := 0
	for i < len(out) && out[i] == ' ' {
		i++
	}
	return out[i:]
}

func countNewline(buf []byte, p int, nlines *[3]int) {
	switch {
	case buf[p] == '\n':
		nlines[idxLF]++
	case p+1 < len(buf) && buf[p+1] == '\n':
		nlines[idxCRLF]++
	default:
		nlines[idxCR]++
	}
}

// trimEOL drops the line ending terminating the last physical line; raw
// header bytes run from the name through the end of the value only.
func trimEOL(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func isAlpha(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

// isFoldSpace matches the whitespace class skipped inside a fold: space,
// tab, and any stray CR/LF from a blank folded continuation line.
func isFoldSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
