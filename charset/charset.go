// Package charset converts bytes from a named mail charset to UTF-8. It
// resolves charset names through golang.org/x/text's encoding registries
// instead of cgo iconv, with an alias-normalization pass for the
// misspellings old MUAs put in encoded-word tokens, and explicit
// iso-2022-jp handling since the encoded-word decoder treats it specially.
package charset

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
)

// aliases normalizes the squirrelmail/sendmail-era spellings real-world
// mail carries in =?charset?..?= tokens before handing the name to
// x/text's indexes.
var aliases = map[string]string{
	"unicode-1-1-utf-7": "utf-7",
	"x-unknown":         "us-ascii",
	"unknown-8bit":      "us-ascii",
	"ks_c_5601-1987":    "euc-kr",
	"gb2312":            "gbk",
	"iso-2022-jp-ms":    "iso-2022-jp",
	"windows-31j":       "shift_jis",
	"ms_kanji":          "shift_jis",
	"us-ascii":          "utf-8",
	"ascii":             "utf-8",
	"utf8":              "utf-8",
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "utf-8"
	}
	if a, ok := aliases[name]; ok {
		return a
	}
	return name
}

// Transcode converts b from the named charset to UTF-8. name is matched
// case-insensitively. Unrecognized or failing charsets return an error;
// the caller (the encoded-word decoder) treats that as silent degradation,
// never a hard parse failure.
func Transcode(b []byte, name string) ([]byte, error) {
	norm := normalize(name)
	if norm == "utf-8" {
		return b, nil
	}
	if norm == "iso-2022-jp" {
		return decodeWith(japanese.ISO2022JP, b)
	}

	enc, err := ianaindex.MIME.Encoding(norm)
	if err != nil || enc == nil {
		enc, err = htmlindex.Get(norm)
	}
	if err != nil || enc == nil {
		return nil, fmt.Errorf("charset: unrecognized charset %q", name)
	}
	return decodeWith(enc, b)
}

func decodeWith(enc encoding.Encoding, b []byte) ([]byte, error) {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return nil, fmt.Errorf("charset: decode failed: %w", err)
	}
	return out, nil
}

// Name reports the canonical IANA/MIME name x/text resolves name to, for
// diagnostics; "" if unrecognized.
func Name(name string) string {
	norm := normalize(name)
	if enc, err := ianaindex.MIME.Encoding(norm); err == nil && enc != nil {
		if n, err := ianaindex.MIME.Name(enc); err == nil {
			return n
		}
	}
	return ""
}
