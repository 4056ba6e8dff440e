package received

import "testing"

func TestParsePostfixHostAndIP(t *testing.T) {
	value := []byte("from mail.example.com (mail.example.com [192.0.2.1]) " +
		"by relay.example.org with ESMTPS id ABC; Tue, 1 Jan 2020 00:00:00 +0000")

	rh, err := Parse(value, Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
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
	if rh.Type != ESMTPS {
		t.Errorf("Type = %v, want ESMTPS", rh.Type)
	}
	if !rh.Flags.Has(SSL) {
		t.Error("expecting SSL flag set")
	}
	if rh.Timestamp != 1577836800 {
		t.Errorf("Timestamp = %d, want 1577836800", rh.Timestamp)
	}
}

func TestParseNoFrom(t *testing.T) {
	if _, err := Parse([]byte("by relay.example.org with SMTP;"), Options{}); err != ErrNoFrom {
		t.Errorf("err = %v, want ErrNoFrom", err)
	}
}

func TestParseBracketedIPNoComment(t *testing.T) {
	rh, err := Parse([]byte("from [198.51.100.7] by mx.example.net with esmtpa;"), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rh.RealIP != "198.51.100.7" {
		t.Errorf("RealIP = %q, want 198.51.100.7", rh.RealIP)
	}
	if rh.Addr == nil || rh.Addr.String() != "198.51.100.7" {
		t.Errorf("Addr = %v, want 198.51.100.7", rh.Addr)
	}
	if rh.Type != ESMTPA {
		t.Errorf("Type = %v, want ESMTPA", rh.Type)
	}
	if !rh.Flags.Has(Authenticated) {
		t.Error("expecting Authenticated flag set")
	}
}

func TestParseEximHostTCPInfo(t *testing.T) {
	// Exim concatenates "host [ip]" directly into the FROM part's data,
	// with no intervening comment.
	rh, err := Parse([]byte("from mail.example.com [203.0.113.9] by mx.local with esmtp;"), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rh.RealIP != "203.0.113.9" {
		t.Errorf("RealIP = %q, want 203.0.113.9", rh.RealIP)
	}
	if rh.Type != ESMTP {
		t.Errorf("Type = %v, want ESMTP", rh.Type)
	}
}

func TestParseForPart(t *testing.T) {
	rh, err := Parse([]byte("from a.example (a.example [10.0.0.1]) by b.example with SMTP for <bob@example.com>;"), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rh.ForMbox != "<bob@example.com>" {
		t.Errorf("ForMbox = %q, want <bob@example.com>", rh.ForMbox)
	}
}

func TestParseUnrecognizedTransport(t *testing.T) {
	rh, err := Parse([]byte("from a.example by b.example with FANCYPROTO;"), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rh.Type != Unknown {
		t.Errorf("Type = %v, want Unknown", rh.Type)
	}
}

func TestExtractRDNS(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"mail.example.com", "mail.example.com", true},
		{"mail.example.com ", "mail.example.com", true},
		{"mail.example.com[1.2.3.4]", "mail.example.com", true},
		{"nohostnamechars!!!", "", false},
		{"localhost", "localhost", true},
	}
	for _, c := range cases {
		got, ok := extractRDNS([]byte(c.in))
		if ok != c.ok || got != c.want {
			t.Errorf("extractRDNS(%q) = %q, %v, want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}
