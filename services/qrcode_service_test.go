// file: services/qrcode_service_test.go
package services_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-meet-stake/services"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G'}

func TestGenerateMeetingQRCode(t *testing.T) {
	png, err := services.GenerateMeetingQRCode(0, 256)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngHeader), "output should be a PNG image")
}

func TestGenerateMeetingQRCodeUsesApplicationURL(t *testing.T) {
	t.Setenv("APPLICATION_URL", "https://meetstake.example.com")

	png, err := services.GenerateMeetingQRCode(7, 128)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}
