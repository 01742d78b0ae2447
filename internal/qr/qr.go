// Package qr renders the scannable codes that link a physical machine to
// its technician intake form.
package qr

import (
	"encoding/base64"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// FormURL builds the technician form URL embedded in a machine's QR code.
func FormURL(baseURL, assetTag string) string {
	return strings.TrimRight(baseURL, "/") + "/qr/" + url.PathEscape(assetTag)
}

// DataURI encodes the given URL as a QR code and returns it as a PNG data
// URI suitable for an <img src> attribute.
func DataURI(u string) (string, error) {
	png, err := qrcode.Encode(u, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
