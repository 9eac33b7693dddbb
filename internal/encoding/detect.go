// Package encoding turns chat exports of unknown encoding into UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names the encoding input was decoded from.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF8BOM     Charset = "UTF-8-BOM"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO88599    Charset = "ISO-8859-9"
)

const sampleSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Detect guesses the charset of sample: byte order marks first, then UTF-8
// validity, then chardet heuristics. Anything unrecognized is Windows-1252.
func Detect(sample []byte) Charset {
	switch {
	case bytes.HasPrefix(sample, bomUTF8):
		return UTF8BOM
	case bytes.HasPrefix(sample, bomUTF16LE):
		return UTF16LE
	case bytes.HasPrefix(sample, bomUTF16BE):
		return UTF16BE
	case utf8.Valid(trimPartialRune(sample)):
		return UTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil {
		return Windows1252
	}

	switch result.Charset {
	case "UTF-8":
		return UTF8
	case "ISO-8859-9":
		return ISO88599
	default:
		return Windows1252
	}
}

// NewUTF8Reader detects the encoding of r and returns a reader producing UTF-8.
func NewUTF8Reader(r io.Reader) (io.Reader, Charset, error) {
	br := bufio.NewReaderSize(r, sampleSize)

	sample, err := br.Peek(sampleSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	charset := Detect(sample)

	var dec *encoding.Decoder

	switch charset {
	case UTF8:
		return br, charset, nil
	case UTF8BOM:
		_, _ = br.Discard(len(bomUTF8))
		return br, charset, nil
	case UTF16LE:
		dec = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case UTF16BE:
		dec = unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	case ISO88599:
		dec = charmap.ISO8859_9.NewDecoder()
	default:
		dec = charmap.Windows1252.NewDecoder()
	}

	return transform.NewReader(br, dec), charset, nil
}

// trimPartialRune drops a multi-byte sequence cut off at the end of b.
func trimPartialRune(b []byte) []byte {
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		if !utf8.RuneStart(b[len(b)-i]) {
			continue
		}

		if !utf8.FullRune(b[len(b)-i:]) {
			return b[:len(b)-i]
		}

		break
	}

	return b
}
