package reports

import (
	"context"
	"io"
)

// TextExtractor port (OCR)
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// Archive port (penyimpanan upload dan hasil)
type Archive interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}
