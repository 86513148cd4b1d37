package http

import (
	"strconv"

	"github.com/minio/crc64nvme"
)

// ETag returns a strong entity tag for body, the quoted hex CRC-64/NVME checksum.
func ETag(body []byte) string {
	h := crc64nvme.New()
	h.Write(body)
	return strconv.Quote(strconv.FormatUint(h.Sum64(), 16))
}
