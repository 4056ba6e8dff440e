// Package received parses the decoded value of a Received: header into a
// structured Header describing one SMTP/ESMTP/LMTP/IMAP/HTTP hop: the
// announced HELO name, the rDNS hostname and IP the receiving MTA
// recorded, the relay that accepted the message, the transport variant,
// and the handoff timestamp. Decades of MTAs disagree on the format, so
// the parser is a tolerant byte-state machine rather than a grammar.
package received

import (
	"errors"
	"net"
	"net/mail"
	"strings"
	"time"

	"github.com/flashmob/go-mailheader/header"
)

// ErrNoFrom is returned when the value does not begin with a leading
// "from" token; the value is too malformed to interpret as a trace header.
var ErrNoFrom = errors.New("received: value does not begin with \"from\"")

// Type classifies the transport announced by a Received header's "with"
// part.
type Type int

const (
	Unknown Type = iota
	SMTP
	ESMTP
	ESMTPA
	ESMTPS
	ESMTPSA
	LMTP
	IMAP
	HTTP
	Local
)

var typeNames = [...]string{
	"UNKNOWN", "SMTP", "ESMTP", "ESMTPA", "ESMTPS", "ESMTPSA",
	"LMTP", "IMAP", "HTTP", "LOCAL",
}

func (t Type) String() string {
	if int(t) < 0 || int(t) >= len(typeNames) {
		return "UNKNOWN"
	}
	return typeNames[t]
}

// Flag is a bitmask of the attributes a "with" transport token can imply.
type Flag uint8

const (
	Authenticated Flag = 1 << iota
	SSL
)

func (f Flag) Has(flag Flag) bool { return f&flag != 0 }

// NoTimestamp is the sentinel Timestamp value for "no date part observed,
// or the date parser failed."
const NoTimestamp int64 = -1

// Header is the structured result of parsing one Received: header value.
type Header struct {
	// Source back-points to the raw Header this trace was parsed from; the
	// caller sets this after Parse succeeds.
	Source *header.Header

	Type  Type
	Flags Flag

	RealIP       string
	FromIP       string
	Addr         net.IP
	RealHostname string
	FromHostname string
	ByHostname   string
	ForMbox      string

	// Timestamp is seconds since epoch, or NoTimestamp.
	Timestamp int64
}

// DateParser parses the bytes following a Received value's ";" date
// separator into a time.Time. The default wraps net/mail.ParseDate.
type DateParser func(b []byte) (time.Time, error)

func defaultParseDate(b []byte) (time.Time, error) {
	return mail.ParseDate(strings.TrimSpace(string(b)))
}

// Options configures a Parse run.
type Options struct {
	// ParseDate overrides the date-parsing collaborator. Nil uses the
	// default net/mail-backed parser.
	ParseDate DateParser
}

// Parse interprets a decoded Received-header value. It returns ErrNoFrom
// when the value has no leading "from" token; any other structural failure
// inside a part scan is reported the same way. The caller keeps the raw
// header either way and simply skips recording a trace entry.
func Parse(value []byte, opts Options) (*Header, error) {
	parts, datePos, ok := spill(value)
	if !ok {
		return nil, ErrNoFrom
	}

	rh := &Header{Type: Unknown, Timestamp: NoTimestamp}
	for _, pt := range parts {
		switch pt.typ {
		case partFrom:
			processFrom(pt, rh)
		case partBy:
			if host, ok := extractRDNS(pt.data); ok {
				rh.ByHostname = host
			}
		case partWith:
			determineTransport(rh, string(pt.data))
		case partFor:
			rh.ForMbox = string(pt.data)
		}
	}

	if rh.RealIP != "" && rh.FromIP == "" {
		rh.FromIP = rh.RealIP
	}
	if rh.RealHostname != "" && rh.FromHostname == "" {
		rh.FromHostname = rh.RealHostname
	}

	if datePos >= 0 && datePos < len(value) {
		parseDate := opts.ParseDate
		if parseDate == nil {
			parseDate = defaultParseDate
		}
		if t, err := parseDate(value[datePos:]); err == nil {
			rh.Timestamp = t.Unix()
		}
	}

	return rh, nil
}

// determineTransport maps a lower-cased "with" token to a Type and its
// implied Flags.
func determineTransport(rh *Header, data string) {
	switch data {
	case "smtp":
		rh.Type = SMTP
	case "esmtp":
		rh.Type = ESMTP
	case "esmtpa":
		rh.Type = ESMTPA
		rh.Flags |= Authenticated
	case "esmtps":
		rh.Type = ESMTPS
		rh.Flags |= SSL
	case "esmtpsa":
		rh.Type = ESMTPSA
		rh.Flags |= SSL | Authenticated
	case "lmtp":
		rh.Type = LMTP
	case "imap":
		rh.Type = IMAP
	case "http":
		rh.Type = HTTP
	case "https":
		rh.Type = HTTP
		rh.Flags |= SSL
	case "local":
		rh.Type = Local
	default:
		rh.Type = Unknown
	}
}
