package db

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// Compression selects how document bodies are stored.
type Compression string

const (
	CompressionNone   Compression = "none"
	CompressionZstd   Compression = "zstd"
	CompressionBrotli Compression = "brotli"
)

// ParseCompression validates a compression name. The empty string means none.
func ParseCompression(name string) (Compression, error) {
	switch c := Compression(name); c {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionZstd, CompressionBrotli:
		return c, nil
	default:
		return "", fmt.Errorf("unknown compression %q", name)
	}
}

// bodyCodec compresses new bodies with one algorithm and reads bodies written with any.
type bodyCodec struct {
	write   Compression
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newBodyCodec(c Compression) (*bodyCodec, error) {
	c, err := ParseCompression(string(c))
	if err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder : %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("creating zstd decoder : %w", err)
	}
	return &bodyCodec{write: c, encoder: enc, decoder: dec}, nil
}

// encode returns the stored form of body and the encoding it was written with.
func (c *bodyCodec) encode(body []byte) ([]byte, Compression, error) {
	switch c.write {
	case CompressionZstd:
		return c.encoder.EncodeAll(body, make([]byte, 0, len(body)/2)), CompressionZstd, nil
	case CompressionBrotli:
		var buf bytes.Buffer
		w := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
		if _, err := w.Write(body); err != nil {
			return nil, "", fmt.Errorf("writing brotli content : %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, "", fmt.Errorf("closing brotli writer : %w", err)
		}
		return buf.Bytes(), CompressionBrotli, nil
	default:
		return body, CompressionNone, nil
	}
}

// decode reverses encode for a body stored with encoding.
func (c *bodyCodec) decode(body []byte, encoding Compression) ([]byte, error) {
	switch encoding {
	case CompressionNone, "":
		return body, nil
	case CompressionZstd:
		out, err := c.decoder.DecodeAll(body, nil)
		if err != nil {
			return nil, fmt.Errorf("reading zstd content : %w", err)
		}
		return out, nil
	case CompressionBrotli:
		out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
		if err != nil {
			return nil, fmt.Errorf("reading brotli content : %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown body encoding %q", encoding)
	}
}

func (c *bodyCodec) close() {
	c.encoder.Close()
	c.decoder.Close()
}
