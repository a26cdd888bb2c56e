package ingestion

import (
	"strings"

	"github.com/saintfish/chardet"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/retail-lens/backend/internal/dataset"
	"github.com/retail-lens/backend/pkg/logger"
)

// fallbackCharset is the single-byte Western encoding malformed legacy
// exports are read as when detection comes back empty, unknown or ASCII.
const fallbackCharset = "ISO-8859-1"

// DetectEncoding inspects at most sampleSize bytes and returns a best-guess
// charset name. It never fails: anything inconclusive degrades to Latin-1.
func DetectEncoding(raw []byte, sampleSize int) string {
	if sampleSize <= 0 || sampleSize > len(raw) {
		sampleSize = len(raw)
	}
	sample := raw[:sampleSize]
	if len(sample) == 0 {
		return fallbackCharset
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || result == nil || result.Charset == "" {
		return fallbackCharset
	}

	charset := result.Charset
	switch strings.ToLower(charset) {
	case "ascii", "us-ascii", "unknown":
		return fallbackCharset
	}
	return charset
}

func decodeBytes(raw []byte, charset string) ([]byte, error) {
	enc := lookupEncoding(charset)
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return nil, &dataset.EncodingError{Charset: charset, Err: err}
	}
	return out, nil
}

func lookupEncoding(charset string) encoding.Encoding {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		// Detector names a charset the decoder table lacks; degrade the
		// same way unknown detection does.
		logger.Warn("unrecognized charset, falling back to Latin-1",
			zap.String("charset", charset))
		return charmap.ISO8859_1
	}
	return enc
}
