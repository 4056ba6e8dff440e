package addr

// Scan the RFC5322 "address-list" production (mailbox-list / group), no
// regex.

import (
	"errors"
)

var (
	errNotAtom               = errors.New("addr: not atom")
	errExpectingAngleAddress = errors.New("addr: not angle address")
	errNotAWord              = errors.New("addr: not a word")
	errExpectingColon        = errors.New("addr: expecting :")
	errExpectingSemicolon    = errors.New("addr: expecting ;")
	errExpectingAngleClose   = errors.New("addr: expecting >")
	errExpectingAngleOpen    = errors.New("addr: < expected")
)

// mimeScanner scans an RFC 5322 address-list, collecting each mailbox found
// along the way (group members included, group name itself discarded
// except as an address-list separator, matching common MUA behavior).
type mimeScanner struct {
	pathScanner
	list      []Address
	groupName string
	addr      Address
}

// ParseAddressList extracts every mailbox from an RFC 5322 address-list
// field (To/Cc/Bcc/From), appending to existing and returning the combined
// list. Malformed trailing content is ignored; whatever mailboxes were
// successfully scanned before the error are still returned.
func ParseAddressList(input []byte, existing []Address) []Address {
	s := &mimeScanner{}
	s.buf = input
	s.pos = -1
	s.next()
	if err := s.mailbox(); err != nil {
		if s.ch == ':' {
			_ = s.group()
		}
		return append(existing, s.list...)
	}
	// mailbox-list = mailbox *("," mailbox)
	for {
		s.next()
		s.skipSpace()
		if s.ch != ',' {
			break
		}
		s.next()
		s.skipSpace()
		if err := s.mailbox(); err != nil {
			break
		}
	}
	return append(existing, s.list...)
}

// group  =  display-name ":" [group-list] ";" [CFWS]
func (s *mimeScanner) group() error {
	if s.addr.DisplayName == "" {
		if err := s.displayName(); err != nil {
			return err
		}
	} else {
		s.groupName = s.addr.DisplayName
		s.addr.DisplayName = ""
	}
	if s.ch != ':' {
		return errExpectingColon
	}
	s.next()
	_ = s.groupList()
	s.skipSpace()
	if s.ch != ';' {
		return errExpectingSemicolon
	}
	return nil
}

// mailbox  =   name-addr / addr-spec
func (s *mimeScanner) mailbox() error {
	pos := s.pos
	if err := s.nameAddr(); err != nil {
		if err == errExpectingAngleAddress && s.ch != ':' {
			s.addr.DisplayName = ""
			s.addr.DisplayNameQuoted = false
			s.pos = pos - 1
			if s.pos > -1 {
				s.ch = s.buf[s.pos]
			}
			if err = s.pathScanner.mailbox(); err != nil {
				return err
			}
			s.addAddress()
		} else {
			return err
		}
	}
	return nil
}

func (s *mimeScanner) addAddress() {
	s.addr.LocalPart = s.LocalPart
	s.addr.LocalPartQuoted = s.localQuoted
	s.addr.Domain = s.Domain
	s.addr.IP = parseLiteralIP(s.Domain)
	s.list = append(s.list, s.addr)
	s.addr = Address{}
}

// name-addr =  [display-name] angle-addr
func (s *mimeScanner) nameAddr() error {
	_ = s.displayName()
	if s.ch == '<' {
		if err := s.angleAddr(); err != nil {
			return err
		}
		s.next()
		if s.ch != '>' {
			return errExpectingAngleClose
		}
		s.addAddress()
		return nil
	}
	return errExpectingAngleAddress
}

// angle-addr      =   [CFWS] "<" addr-spec ">" [CFWS] / obs-angle-addr
func (s *mimeScanner) angleAddr() error {
	s.skipSpace()
	if s.ch != '<' {
		return errExpectingAngleOpen
	}
	if err := s.pathScanner.mailbox(); err != nil {
		return err
	}
	s.skipSpace()
	return nil
}

// display-name    =   phrase =  1*word / obs-phrase
func (s *mimeScanner) displayName() error {
	defer func() {
		if s.accept.Len() > 0 {
			s.addr.DisplayName = s.accept.String()
			s.accept.Reset()
		}
	}()
	if err := s.word(); err != nil {
		return err
	}
	for {
		if err := s.word(); err != nil {
			return nil
		}
	}
}

func (s *mimeScanner) quotedString() error {
	if s.ch == '"' {
		if err := s.qcontentSMTP(); err != nil {
			return err
		}
		if s.ch != '"' {
			return errQuotedUnclosed
		}
		s.next()
	}
	return nil
}

// word = atom / quoted-string
func (s *mimeScanner) word() error {
	if s.ch == '"' {
		s.addr.DisplayNameQuoted = true
		return s.quotedString()
	} else if isAtext(s.ch) || s.ch == ' ' || s.ch == '\t' {
		return s.atom()
	}
	return errNotAWord
}

// atom = [CFWS] 1*atext [CFWS], folding internal whitespace to a single space
func (s *mimeScanner) atom() error {
	s.skipSpace()
	if !isAtext(s.ch) {
		return errNotAtom
	}
	for {
		if isAtext(s.ch) {
			s.accept.WriteByte(s.ch)
			s.next()
			continue
		}
		skipped := s.skipSpace()
		if !isAtext(s.ch) {
			return nil
		}
		if skipped > 0 {
			s.accept.WriteByte(' ')
		}
		s.accept.WriteByte(s.ch)
		s.next()
	}
}

// group-list      =   mailbox-list / CFWS / obs-group-list
func (s *mimeScanner) groupList() error {
	if err := s.mailbox(); err != nil {
		return err
	}
	s.next()
	for {
		s.skipSpace()
		if s.ch != ',' {
			return nil
		}
		s.next()
		s.skipSpace()
		if err := s.mailbox(); err != nil {
			return err
		}
		s.next()
	}
}

func (s *mimeScanner) skipSpace() int {
	var skipped int
	for {
		if s.ch != ' ' && s.ch != '\t' {
			return skipped
		}
		s.next()
		skipped++
	}
}
