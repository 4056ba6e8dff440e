package header

import "testing"

func TestTokenizeSimple(t *testing.T) {
	buf := []byte("From: a@b\nTo: c@d\nSubject: hi\n\n")
	table, _ := Tokenize(buf, Options{})

	if table.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", table.Count())
	}
	names := []string{"from", "to", "subject"}
	for i, h := range table.All() {
		if h.Name != names[i] {
			t.Errorf("All()[%d].Name = %q, want %q", i, h.Name, names[i])
		}
		if h.Order != i {
			t.Errorf("All()[%d].Order = %d, want %d", i, h.Order, i)
		}
	}
	if subj, ok := table.First("Subject"); !ok || subj.Decoded != "hi" {
		t.Errorf("First(Subject) = %v, %v, want \"hi\", true", subj, ok)
	}
}

func TestTokenizeFoldedCRLF(t *testing.T) {
	buf := []byte("Subject: hello\r\n world\r\n\r\n")
	table, nl := Tokenize(buf, Options{CountNewlines: true})

	if table.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", table.Count())
	}
	h, _ := table.First("subject")
	if h.Decoded != "hello world" {
		t.Errorf("Decoded = %q, want %q", h.Decoded, "hello world")
	}
	if nl != NewlineCRLF {
		t.Errorf("newline style = %v, want CRLF", nl)
	}
}

func TestTokenizeLFMajority(t *testing.T) {
	buf := []byte("From: a@b\nTo: c@d\nSubject: hi\n\n")
	_, nl := Tokenize(buf, Options{CountNewlines: true})
	if nl != NewlineLF {
		t.Errorf("newline style = %v, want LF", nl)
	}
}

func TestTokenizeNoTerminalNewline(t *testing.T) {
	buf := []byte("X-Test: value")
	table, _ := Tokenize(buf, Options{})
	if table.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", table.Count())
	}
	h, _ := table.First("x-test")
	if h.Decoded != "value" {
		t.Errorf("Decoded = %q, want %q", h.Decoded, "value")
	}
}

func TestTokenizeEmptyValue(t *testing.T) {
	buf := []byte("X-Flag:\n\n")
	var broken bool
	table, _ := Tokenize(buf, Options{OnBroken: func() { broken = true }})
	if table.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", table.Count())
	}
	h, _ := table.First("x-flag")
	if h.Decoded != "" {
		t.Errorf("Decoded = %q, want empty", h.Decoded)
	}
	if broken {
		t.Error("OnBroken fired, want not fired")
	}
}

func TestTokenizeBrokenLeadingBytes(t *testing.T) {
	buf := []byte("!!garbage\r\nSubject: real\r\n\r\n")
	var broken bool
	table, _ := Tokenize(buf, Options{OnBroken: func() { broken = true }})

	if !broken {
		t.Error("expected OnBroken to fire")
	}
	if table.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", table.Count())
	}
	h, _ := table.First("subject")
	if h.Decoded != "real" {
		t.Errorf("Decoded = %q, want %q", h.Decoded, "real")
	}
}

func TestTokenizeRawValueExcludesTerminatingNewline(t *testing.T) {
	buf := []byte("Subject: hi\r\nTo: x\r\n\r\n")
	table, _ := Tokenize(buf, Options{})
	h, _ := table.First("subject")
	if string(h.RawValue) != "Subject: hi" {
		t.Errorf("RawValue = %q, want %q", h.RawValue, "Subject: hi")
	}
	if h.RawLen != len("Subject: hi") {
		t.Errorf("RawLen = %d, want %d", h.RawLen, len("Subject: hi"))
	}
	h2, _ := table.First("to")
	if string(h2.RawValue) != "To: x" {
		t.Errorf("RawValue = %q, want %q", h2.RawValue, "To: x")
	}
}

func TestTokenizeMultiValuedPreservesOrder(t *testing.T) {
	buf := []byte("Received: one\nReceived: two\nReceived: three\n\n")
	table, _ := Tokenize(buf, Options{})
	rs := table.ByName("received")
	if len(rs) != 3 {
		t.Fatalf("len(ByName(received)) = %d, want 3", len(rs))
	}
	want := []string{"one", "two", "three"}
	for i, h := range rs {
		if h.Decoded != want[i] {
			t.Errorf("ByName(received)[%d].Decoded = %q, want %q", i, h.Decoded, want[i])
		}
	}
}

func TestTokenizeTabSeparated(t *testing.T) {
	buf := []byte("X-Tab:\tvalue\n\n")
	table, _ := Tokenize(buf, Options{})
	h, _ := table.First("x-tab")
	if !h.TabSeparated {
		t.Error("expected TabSeparated true")
	}
	if h.Decoded != "value" {
		t.Errorf("Decoded = %q, want %q", h.Decoded, "value")
	}
}
