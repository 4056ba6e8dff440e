// Package mailheader is a mail-processing engine core: it turns a raw byte
// stream of RFC 5322 header lines into a structured, ordered header table
// with semantic extraction of recipients, senders, message identifiers and
// mail-hop metadata. It tolerates adversarial input, reconstructs folded
// header values, decodes RFC 2047 encoded words, and recovers structured
// addresses and Received-header trace chains from notoriously irregular
// wire formats, without ever failing the parse.
//
// ProcessHeaders is the single entry point; everything else (header,
// encodedword, addr, received, charset, hash) is a narrow collaborator
// wired in here.
package mailheader

import (
	"github.com/flashmob/go-mailheader/addr"
	"github.com/flashmob/go-mailheader/charset"
	"github.com/flashmob/go-mailheader/config"
	"github.com/flashmob/go-mailheader/encodedword"
	"github.com/flashmob/go-mailheader/event"
	"github.com/flashmob/go-mailheader/hash"
	"github.com/flashmob/go-mailheader/header"
	"github.com/flashmob/go-mailheader/log"
	"github.com/flashmob/go-mailheader/received"
)

// Flags is the task-level error bitmask, the only error signal the core
// ever raises.
type Flags uint8

const (
	// BrokenHeaders is raised the first time a header name/colon pair
	// cannot be found at the start of a line; the Tokenizer recovers by
	// skipping to the next line.
	BrokenHeaders Flags = 1 << iota
	// BadUnicode is raised the first time the Encoded-Word Decoder has to
	// substitute U+FFFD for invalid UTF-8 or an undecodable charset.
	BadUnicode
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// Task owns one header block's parse results for its lifetime. Parsing is
// single-threaded and synchronous per task; separate tasks may run on
// separate goroutines with no shared state. Every string/slice field here
// is a copy the caller may keep after ProcessHeaders returns — the input
// buffer is only borrowed for the duration of the call.
type Task struct {
	*event.Handler

	// Header is the two-view header table populated by the tokenizer.
	Header *header.Table

	// Received holds one entry per Received: header RTP could parse
	// successfully, in arrival order. A Received: header RTP could not
	// interpret is still present in Header, just absent here.
	Received []*received.Header

	// Subject, MessageID, FromEnvelope and DeliverTo follow the "first
	// occurrence wins" contract for fields RFC 5322 permits at most once.
	Subject      string
	MessageID    string
	FromMIME     []addr.Address
	RcptMIME     []addr.Address
	FromEnvelope *addr.Address
	DeliverTo    string

	// NlinesType is the dominant newline style observed, when counting
	// was enabled (config.EngineConfig.CountNewlines).
	NlinesType header.NewlineStyle

	// HeadersHash is the hex-encoded 256-bit digest HHF computes over
	// every non-Received header name, in wire order.
	HeadersHash string

	Flags Flags

	cfg *config.EngineConfig
	log log.Logger
}

// ProcessHeaders is the core's sole entry point. It never returns an
// error: malformed input degrades and is reported only through Task.Flags
// and the per-header Type tags recorded in Task.Header.
//
// cfg may be nil (config.DefaultConfig() is used); logger may be nil (a
// discard logger is used).
func ProcessHeaders(buf []byte, cfg *config.EngineConfig, logger log.Logger) *Task {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger, _ = log.GetLogger(log.OutputOff.String())
	}

	t := &Task{
		Handler: &event.Handler{},
		cfg:     cfg,
		log:     logger,
	}

	if cfg.MaxHeaderBytes > 0 && len(buf) > cfg.MaxHeaderBytes {
		buf = buf[:cfg.MaxHeaderBytes]
	}

	opts := header.Options{
		CountNewlines: cfg.CountNewlines,
		Decode:        t.decode,
		OnBroken:      t.onBroken,
		OnBadUnicode:  t.onBadUnicode,
		OnHeader:      t.recognize,
	}
	table, nlines := header.Tokenize(buf, opts)
	t.Header = table
	t.NlinesType = nlines

	t.HeadersHash = hash.ComputeHeadersHash(table)
	t.Publish(event.HeadersHashReady, t.HeadersHash)

	return t
}

// decode wires encoded-word decoding to the charset package, falling back
// to cfg.DefaultCharset when a token's charset is empty.
func (t *Task) decode(raw []byte) (string, bool) {
	return encodedword.Decode(raw, func(b []byte, cs string) ([]byte, error) {
		name := cs
		if name == "" {
			name = t.cfg.DefaultCharset
		}
		out, err := charset.Transcode(b, name)
		if err != nil && t.log != nil {
			level := "debug"
			if t.cfg.UnknownCharsetIsFatal {
				level = "warn"
			}
			entry := t.log.WithField("charset", name)
			if level == "warn" {
				entry.Warn("could not transcode encoded-word payload")
			} else {
				entry.Debug("could not transcode encoded-word payload")
			}
		}
		return out, err
	})
}

func (t *Task) onBroken() {
	first := !t.Flags.Has(BrokenHeaders)
	t.Flags |= BrokenHeaders
	if first {
		if t.log != nil {
			t.log.Warn("broken header line recovered by skipping to next line")
		}
		t.Publish(event.BrokenHeaders)
	}
}

func (t *Task) onBadUnicode() {
	first := !t.Flags.Has(BadUnicode)
	t.Flags |= BadUnicode
	if first {
		t.Publish(event.BadUnicode)
	}
}
