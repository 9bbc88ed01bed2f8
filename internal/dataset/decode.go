package dataset

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText converts raw file bytes to UTF-8 text. UTF-8 is tried first;
// otherwise the fallback Korean encoding is used. A fallback decode that
// yields replacement characters is a failure.
func decodeText(path string, raw []byte, fallback string) (string, string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), "utf-8", nil
	}

	switch fallback {
	case "cp949", "euc-kr":
	default:
		return "", "", &DecodeError{Path: path, Fallback: fallback}
	}

	// x/text implements EUC-KR as the CP949 superset
	decoded, err := korean.EUCKR.NewDecoder().Bytes(raw)
	if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", "", &DecodeError{Path: path, Fallback: fallback}
	}
	return string(decoded), fallback, nil
}
