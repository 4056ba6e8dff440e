package mailheader

import (
	"github.com/flashmob/go-mailheader/addr"
	"github.com/flashmob/go-mailheader/event"
	"github.com/flashmob/go-mailheader/header"
	"github.com/flashmob/go-mailheader/received"
)

// recognize dispatches on the header's canonical lower-case name,
// extracting task-level attributes and tagging the Header's Type bitmask.
// It is invoked as the tokenizer's OnHeader hook, immediately after the
// Header is already visible in the table.
func (t *Task) recognize(h *header.Header) {
	switch h.Name {
	case "received":
		h.Type |= header.Received
		rh, err := received.Parse([]byte(h.Decoded), received.Options{})
		if err != nil {
			if t.log != nil {
				t.log.WithHeader(h.OriginalName, h.Order).Debug("received: could not interpret trace header")
			}
		} else {
			rh.Source = h
			t.Received = append(t.Received, rh)
			t.Publish(event.ReceivedParsed, rh)
		}

	case "to":
		t.RcptMIME = addr.ParseAddressList([]byte(h.Decoded), t.RcptMIME)
		h.Type |= header.To | header.Rcpt | header.Unique

	case "cc":
		t.RcptMIME = addr.ParseAddressList([]byte(h.Decoded), t.RcptMIME)
		h.Type |= header.Cc | header.Rcpt | header.Unique

	case "bcc":
		t.RcptMIME = addr.ParseAddressList([]byte(h.Decoded), t.RcptMIME)
		h.Type |= header.Bcc | header.Rcpt | header.Unique

	case "from":
		t.FromMIME = addr.ParseAddressList([]byte(h.Decoded), t.FromMIME)
		h.Type |= header.From | header.Sender | header.Unique

	case "message-id":
		if t.MessageID == "" {
			t.MessageID = cleanMessageID(h.Decoded)
		}
		h.Type |= header.MessageID | header.Unique

	case "subject":
		if t.Subject == "" {
			t.Subject = h.Decoded
		}
		h.Type |= header.Subject | header.Unique

	case "return-path":
		h.Type |= header.ReturnPath | header.Unique
		if t.FromEnvelope == nil {
			if a, ok := addr.ParsePath([]byte(h.Decoded)); ok {
				t.FromEnvelope = &a
			}
		}

	case "delivered-to":
		if t.DeliverTo == "" {
			t.DeliverTo = h.Decoded
		}
		h.Type |= header.DeliveredTo

	case "date", "sender", "in-reply-to", "content-type", "content-transfer-encoding", "references":
		h.Type |= header.Unique
	}

	t.Publish(event.HeaderParsed, h)
}

// cleanMessageID strips one leading "<" and one trailing ">" and replaces
// any non-graphic byte inside with "?".
func cleanMessageID(s string) string {
	b := []byte(s)
	if len(b) > 0 && b[0] == '<' {
		b = b[1:]
	}
	if len(b) > 0 && b[len(b)-1] == '>' {
		b = b[:len(b)-1]
	}
	for i, c := range b {
		if c < 0x21 || c == 0x7f {
			b[i] = '?'
		}
	}
	return string(b)
}
