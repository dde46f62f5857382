// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Signature constants expected by the remote API.
const (
	SigKey        = "4f8732eb9ba7d1c8e8897a75d6474d4eb3f5279137431b2aafb71fafe2abe178"
	SigKeyVersion = "4"
)

// Field is one key/value pair of an ordered payload.
type Field struct {
	Key   string
	Value any
}

// Fields is an ordered payload. Order is significant: it is preserved
// both in signed bodies and in URL-encoded bodies and queries.
type Fields []Field

// F is shorthand for a Field literal.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Get returns the value stored under key.
func (fs Fields) Get(key string) (any, bool) {
	for _, f := range fs {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Encode URL-encodes fs in order, as form bodies and query strings.
func (fs Fields) Encode() string {
	var b strings.Builder
	for i, f := range fs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(f.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(formatPlain(f.Value)))
	}
	return b.String()
}

// Signer produces signed request bodies.
type Signer struct {
	Key     string
	Version string
}

// DefaultSigner signs with the fixed key and version of the API.
var DefaultSigner = Signer{Key: SigKey, Version: SigKeyVersion}

// Sign signs fields with DefaultSigner.
func Sign(fields Fields) string {
	return DefaultSigner.Sign(fields)
}

// Sign returns "ig_sig_key_version=<v>&signed_body=<hmac>.<json>" with the
// signed part percent-encoded. The JSON text is produced in field order and
// is byte-stable: the same fields always yield the same body.
func (s Signer) Sign(fields Fields) string {
	text := encodeObject(fields)
	mac := hmac.New(sha256.New, []byte(s.Key))
	mac.Write([]byte(text))
	signed := hex.EncodeToString(mac.Sum(nil)) + "." + text
	return "ig_sig_key_version=" + s.Version + "&signed_body=" + quote(signed)
}

// DeviceID derives the android device identifier from credentials.
func DeviceID(username, password string) string {
	a := md5.Sum([]byte(username + password))
	b := md5.Sum([]byte(hex.EncodeToString(a[:]) + "yoba"))
	return "android-" + hex.EncodeToString(b[:])[:16]
}

// encodeObject writes fields as a JSON object using ", " and ": "
// separators with non-ASCII runes escaped, the layout the API signs.
func encodeObject(fields Fields) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		writeString(&b, f.Key)
		b.WriteString(": ")
		writeValue(&b, f.Value)
	}
	b.WriteByte('}')
	return b.String()
}

func writeValue(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteString("null")
	case string:
		writeString(b, x)
	case bool:
		b.WriteString(strconv.FormatBool(x))
	case int:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case int32:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case uint:
		b.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint32:
		b.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint64:
		b.WriteString(strconv.FormatUint(x, 10))
	case float64:
		b.WriteString(formatFloat(x))
	case json.Number:
		b.WriteString(x.String())
	case Fields:
		b.WriteString(encodeObject(x))
	case []string:
		b.WriteByte('[')
		for i, s := range x {
			if i > 0 {
				b.WriteString(", ")
			}
			writeString(b, s)
		}
		b.WriteByte(']')
	default:
		writeString(b, fmt.Sprint(x))
	}
}

// formatFloat keeps a fractional part on integral values so 1.0 stays a float.
func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "null"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

const hexDigits = "0123456789abcdef"

func writeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r < 0x20 || (r >= 0x7f && r <= 0xffff) || r == utf8.RuneError:
				writeUnicode(b, r)
			case r > 0xffff:
				hi, lo := utf16.EncodeRune(r)
				writeUnicode(b, hi)
				writeUnicode(b, lo)
			default:
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}

func writeUnicode(b *strings.Builder, r rune) {
	b.WriteString(`\u`)
	b.WriteByte(hexDigits[r>>12&0xf])
	b.WriteByte(hexDigits[r>>8&0xf])
	b.WriteByte(hexDigits[r>>4&0xf])
	b.WriteByte(hexDigits[r&0xf])
}

// quote percent-encodes s keeping unreserved characters and '/'.
func quote(s string) string {
	const upper = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') ||
			c == '_' || c == '.' || c == '-' || c == '~' || c == '/' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upper[c>>4])
		b.WriteByte(upper[c&0xf])
	}
	return b.String()
}

func formatPlain(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}
