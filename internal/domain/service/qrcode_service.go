package service

// QRCodeService defines the interface for QR code generation.
type QRCodeService interface {
	// Generate renders content as a PNG QR code.
	Generate(content string) ([]byte, error)
}
