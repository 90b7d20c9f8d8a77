// services/qrcode_service.go
package services

import (
	"fmt"
	"os"

	"github.com/skip2/go-qrcode"
)

// GenerateMeetingQRCode creates a QR code PNG pointing at the meeting-room
// page for the given meeting, sized to the given pixel width.
func GenerateMeetingQRCode(meetingID int64, size int) ([]byte, error) {
	applicationURL := os.Getenv("APPLICATION_URL")
	if applicationURL == "" {
		applicationURL = "http://localhost:8080" // Default for local testing
	}

	url := fmt.Sprintf("%s/meeting-room/%d", applicationURL, meetingID)
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}
