package services

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/pquerna/otp"

	"github.com/dmitrijs2005/otpkeeper/internal/filex"
)

// DefaultQRSize is the edge length in pixels of exported QR codes.
const DefaultQRSize = 256

// WriteQR renders key as a square PNG QR code at path.
func WriteQR(key *otp.Key, path string, size int) error {
	if size <= 0 {
		size = DefaultQRSize
	}
	img, err := key.Image(size, size)
	if err != nil {
		return fmt.Errorf("render qr: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return filex.WriteFileAtomic(path, buf.Bytes(), filex.FilePerm)
}
