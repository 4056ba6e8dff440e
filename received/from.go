package received

// From-part extraction and the shared rDNS/IP helpers the BY part also
// relies on. MTA conventions vary the most here: Postfix writes
// "helo (rdns [ip])", Exim concatenates "host [ip]" with no comment, some
// relays record only a bare IP or only a hostname.

import (
	"bytes"
	"net"
)

// processFrom fills in rh.RealIP/FromIP/Addr/RealHostname/FromHostname
// from a FROM part, trying in order: an IP/hostname pair in the part's
// head comment, an IP literal in the part's data, a raw IP in the part's
// data, then falling back to the data as an announced HELO hostname.
func processFrom(pt *part, rh *Header) {
	if len(pt.data) == 0 {
		if len(pt.comments) > 0 && len(pt.comments[0]) > 0 {
			processHostTCPInfo(rh, pt.comments[0])
		}
		return
	}

	seenIPInData := false
	if len(pt.comments) > 0 && len(pt.comments[0]) > 0 {
		processHostTCPInfo(rh, pt.comments[0])
	}

	if rh.RealIP == "" {
		switch {
		case pt.data[0] == '[':
			if idx := bytes.IndexByte(pt.data, ']'); idx >= 0 {
				if ip := net.ParseIP(string(pt.data[1:idx])); ip != nil {
					seenIPInData = true
					setRealIP(rh, ip)
				}
			}
		case isHexDigit(pt.data[0]):
			if ip := net.ParseIP(string(pt.data)); ip != nil {
				seenIPInData = true
				setRealIP(rh, ip)
			}
		}
	}

	if !seenIPInData {
		if rh.RealIP != "" {
			if host, ok := extractRDNS(pt.data); ok {
				rh.FromHostname = host
			}
		} else {
			processHostTCPInfo(rh, pt.data)
		}
	}
}

// processHostTCPInfo covers the "host [ip]"/"[ip]"/bare-ip/bare-hostname
// shapes that turn up in both a FROM part's head comment and a BY part's
// rDNS-only data (Exim and Postfix vary here).
func processHostTCPInfo(rh *Header, data []byte) {
	if len(data) == 0 {
		return
	}
	if data[0] == '[' {
		if idx := bytes.IndexByte(data, ']'); idx >= 0 {
			if ip := net.ParseIP(string(data[1:idx])); ip != nil {
				setRealIP(rh, ip)
			}
		}
		return
	}
	if isHexDigit(data[0]) {
		if ip := net.ParseIP(string(data)); ip != nil {
			setRealIP(rh, ip)
			return
		}
	}
	if ob := bytes.IndexByte(data, '['); ob >= 0 {
		rest := data[ob:]
		if eb := bytes.IndexByte(rest, ']'); eb >= 0 {
			if ip := net.ParseIP(string(rest[1:eb])); ip != nil {
				setRealIP(rh, ip)
				if host, ok := extractRDNS(data[:ob]); ok {
					rh.RealHostname = host
				}
			}
		}
		return
	}
	if host, ok := extractRDNS(data); ok {
		rh.RealHostname = host
	}
}

func setRealIP(rh *Header, ip net.IP) {
	rh.Addr = ip
	rh.RealIP = ip.String()
	rh.FromIP = rh.RealIP
}

// extractRDNS accepts a leading run of hostname characters (letters,
// digits, "-", "."), requiring at least one "." unless the entire span is
// hostname characters, terminating at whitespace, "[" or "(".
func extractRDNS(data []byte) (string, bool) {
	n := len(data)
	i := 0
	seenDot := false
	for i < n && isHostnameChar(data[i]) {
		if data[i] == '.' {
			seenDot = true
		}
		i++
	}
	if i == 0 {
		return "", false
	}
	if i == n {
		return string(data[:i]), true
	}
	if seenDot && (isSMTPSpace(data[i]) || data[i] == '[' || data[i] == '(') {
		return string(data[:i]), true
	}
	return "", false
}

func isHostnameChar(c byte) bool {
	switch {
	case c == '-' || c == '.':
		return true
	case '0' <= c && c <= '9':
		return true
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z':
		return true
	}
	return false
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
