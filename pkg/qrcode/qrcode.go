package qrcode

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// QRService renders member badge codes as printable QR codes for the
// front-desk scanner.
type QRService struct{}

func NewQRService() *QRService {
	return &QRService{}
}

// GenerateBadge returns a PNG QR code encoding the badge code. The scanner at
// the desk reads the code back and the check-in endpoint resolves it to a
// customer.
func (s *QRService) GenerateBadge(badgeCode string, size int) ([]byte, error) {
	png, err := qrcode.Encode(badgeCode, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate badge QR code: %w", err)
	}
	return png, nil
}
