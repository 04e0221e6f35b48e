package utils

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ExportFilename builds the deterministic document filename
// "<Prefix>_<ClientName>_<Plate>.pdf" with all whitespace replaced by
// underscores so the name survives every filesystem and share target.
func ExportFilename(prefix, clientName, plateNumber string) string {
	name := fmt.Sprintf("%s_%s_%s.pdf", prefix, clientName, plateNumber)
	return strings.Join(strings.Fields(name), "_")
}

// DataURI embeds binary content as a data URI usable as an image source
func DataURI(contentType string, data []byte) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}
