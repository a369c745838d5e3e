package id3

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// ID3v2 text encoding bytes.
const (
	encLatin1  = 0
	encUTF16   = 1 // with BOM
	encUTF16BE = 2
	encUTF8    = 3
)

// decodeTextFrame decodes the payload of a text frame: one encoding byte
// followed by the text. Unknown encodings are read as latin-1, which at
// least keeps the ASCII subset intact.
func decodeTextFrame(data []byte) string {
	if len(data) < 1 {
		return ""
	}

	encoding := data[0]
	raw := data[1:]

	var text string
	switch encoding {
	case encUTF16:
		text = decodeUTF16(trimUTF16NUL(raw), unicode.LittleEndian, unicode.UseBOM)
	case encUTF16BE:
		text = decodeUTF16(trimUTF16NUL(raw), unicode.BigEndian, unicode.IgnoreBOM)
	case encUTF8:
		text = string(bytes.TrimRight(raw, "\x00"))
	default:
		text = decodeLatin1(bytes.TrimRight(raw, "\x00"))
	}

	return trimPadding(text)
}

func decodeLatin1(raw []byte) string {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

func decodeUTF16(raw []byte, endianness unicode.Endianness, bom unicode.BOMPolicy) string {
	decoded, err := unicode.UTF16(endianness, bom).NewDecoder().Bytes(raw)
	if err != nil {
		return ""
	}
	return string(decoded)
}

// trimUTF16NUL removes trailing NUL terminators without breaking the two
// byte code units apart.
func trimUTF16NUL(raw []byte) []byte {
	for len(raw) >= 2 && raw[len(raw)-1] == 0 && raw[len(raw)-2] == 0 {
		raw = raw[:len(raw)-2]
	}
	return raw
}

// trimPadding strips the NUL and space padding fixed-width tag fields carry.
func trimPadding(s string) string {
	return strings.Trim(s, "\x00 ")
}
