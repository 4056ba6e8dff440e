package mailheader

import (
	"strings"
	"testing"

	"github.com/flashmob/go-mailheader/header"
	"github.com/flashmob/go-mailheader/received"
)

func TestProcessHeadersSimpleLF(t *testing.T) {
	task := ProcessHeaders([]byte("From: a@b\nTo: c@d\nSubject: hi\n\n"), nil, nil)

	if task.Header.Count() != 3 {
		t.Fatalf("Header.Count() = %d, want 3", task.Header.Count())
	}
	wantOrder := []string{"from", "to", "subject"}
	for i, h := range task.Header.All() {
		if h.Name != wantOrder[i] {
			t.Errorf("All()[%d].Name = %q, want %q", i, h.Name, wantOrder[i])
		}
	}
	if task.Subject != "hi" {
		t.Errorf("Subject = %q, want %q", task.Subject, "hi")
	}
	if task.NlinesType != header.NewlineLF {
		t.Errorf("NlinesType = %v, want LF", task.NlinesType)
	}
	if len(task.HeadersHash) != 64 {
		t.Errorf("len(HeadersHash) = %d, want 64 (hex blake2b-256)", len(task.HeadersHash))
	}
}

func TestProcessHeadersFoldedSubjectCRLF(t *testing.T) {
	task := ProcessHeaders([]byte("Subject: hello\r\n world\r\n\r\n"), nil, nil)

	if task.Header.Count() != 1 {
		t.Fatalf("Header.Count() = %d, want 1", task.Header.Count())
	}
	if task.Subject != "hello world" {
		t.Errorf("Subject = %q, want %q", task.Subject, "hello world")
	}
	if task.NlinesType != header.NewlineCRLF {
		t.Errorf("NlinesType = %v, want CRLF", task.NlinesType)
	}
}

func TestProcessHeadersMixedCharsetEncodedWords(t *testing.T) {
	task := ProcessHeaders([]byte("Subject: =?utf-8?B?SMOpbGxv?= =?utf-8?Q?_world?=\r\n\r\n"), nil, nil)

	if task.Subject != "Héllo world" {
		t.Errorf("Subject = %q, want %q", task.Subject, "Héllo world")
	}
}

func TestProcessHeadersISO2022JPNeverMerges(t *testing.T) {
	task := ProcessHeaders([]byte("Subject: =?iso-2022-jp?B?GyRCJCIbKEI=?= =?iso-2022-jp?B?GyRCJCQbKEI=?=\r\n\r\n"), nil, nil)

	if !strings.Contains(task.Subject, "あ") || !strings.Contains(task.Subject, "い") {
		t.Errorf("Subject = %q, want it to contain both あ and い", task.Subject)
	}
}

func TestProcessHeadersReceivedPostfixStyle(t *testing.T) {
	input := []byte("Received: from mail.example.com (mail.example.com [192.0.2.1])\r\n" +
		" by relay.example.org with ESMTPS id ABC;\r\n" +
		" Tue, 1 Jan 2020 00:00:00 +0000\r\n\r\n")
	task := ProcessHeaders(input, nil, nil)

	if len(task.Received) != 1 {
		t.Fatalf("len(Received) = %d, want 1", len(task.Received))
	}
	rh := task.Received[0]
	if rh.FromHostname != "mail.example.com" {
		t.Errorf("FromHostname = %q, want mail.example.com", rh.FromHostname)
	}
	if rh.RealHostname != "mail.example.com" {
		t.Errorf("RealHostname = %q, want mail.example.com", rh.RealHostname)
	}
	if rh.RealIP != "192.0.2.1" || rh.FromIP != "192.0.2.1" {
		t.Errorf("RealIP/FromIP = %q/%q, want 192.0.2.1", rh.RealIP, rh.FromIP)
	}
	if rh.ByHostname != "relay.example.org" {
		t.Errorf("ByHostname = %q, want relay.example.org", rh.ByHostname)
	}
	if rh.Type != received.ESMTPS {
		t.Errorf("Type = %v, want ESMTPS", rh.Type)
	}
	if !rh.Flags.Has(received.SSL) {
		t.Error("expecting SSL flag set")
	}
	if rh.Timestamp != 1577836800 {
		t.Errorf("Timestamp = %d, want 1577836800", rh.Timestamp)
	}
}

func TestProcessHeadersMalformedLeadingBytes(t *testing.T) {
	task := ProcessHeaders([]byte("!!garbage\r\nSubject: real\r\n\r\n"), nil, nil)

	if !task.Flags.Has(BrokenHeaders) {
		t.Error("expected BrokenHeaders flag set")
	}
	if task.Header.Count() != 1 {
		t.Fatalf("Header.Count() = %d, want 1", task.Header.Count())
	}
	if task.Subject != "real" {
		t.Errorf("Subject = %q, want %q", task.Subject, "real")
	}
}

func TestProcessHeadersReceivedNoFromKeepsRawHeaderOnly(t *testing.T) {
	task := ProcessHeaders([]byte("Received: by relay.example.org with SMTP;\r\n\r\n"), nil, nil)

	if len(task.Received) != 0 {
		t.Errorf("len(Received) = %d, want 0", len(task.Received))
	}
	if _, ok := task.Header.First("received"); !ok {
		t.Error("raw Received header should still be stored in the table")
	}
}

func TestProcessHeadersOrderIsDenseAndUnique(t *testing.T) {
	task := ProcessHeaders([]byte("A: 1\nB: 2\nC: 3\nD: 4\n\n"), nil, nil)

	seen := make(map[int]bool)
	for _, h := range task.Header.All() {
		if seen[h.Order] {
			t.Errorf("duplicate Order %d", h.Order)
		}
		seen[h.Order] = true
	}
	if len(seen) != task.Header.Count() {
		t.Errorf("distinct orders = %d, want %d", len(seen), task.Header.Count())
	}
	for i := 0; i < task.Header.Count(); i++ {
		if !seen[i] {
			t.Errorf("Order sequence not dense: missing %d", i)
		}
	}
}
