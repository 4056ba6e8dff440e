// Package addr implements the two address-extraction collaborators the
// header-parsing core delegates to: RFC 5322 address-list parsing for MIME
// header fields (To/Cc/Bcc/From) and RFC 5321 angle-bracketed path parsing
// for envelope-style fields (Return-Path). Both are byte-oriented
// state-machine scanners, no regex.
package addr

import "net"

// Address is the parsed result of one mailbox: a display name plus either a
// local-part/domain pair or an address-literal IP.
type Address struct {
	DisplayName       string
	DisplayNameQuoted bool
	LocalPart         string
	LocalPartQuoted   bool
	Domain            string
	IP                net.IP
	NullPath          bool
}
