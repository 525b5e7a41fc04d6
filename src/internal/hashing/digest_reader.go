package hashing

import (
	"crypto/md5"
	"encoding/hex"
	"hash"
	"io"
	"os"

	"github.com/zyrohq/zyro/src/internal/utils"
)

// DigestReader computes the MD5 digest of everything read through it.
type DigestReader struct {
	reader io.Reader
	digest hash.Hash
	read   int64
}

// NewDigestReader wraps reader.
func NewDigestReader(reader io.Reader) *DigestReader {
	return &DigestReader{
		reader: reader,
		digest: md5.New(),
	}
}

func (d *DigestReader) Read(buf []byte) (int, error) {
	n, err := d.reader.Read(buf)
	if n > 0 {
		d.digest.Write(buf[:n])
		d.read += int64(n)
	}
	return n, err
}

// Checksum returns the hex digest of the bytes read so far.
func (d *DigestReader) Checksum() string {
	return hex.EncodeToString(d.digest.Sum(nil))
}

// BytesRead returns how many bytes passed through the reader.
func (d *DigestReader) BytesRead() int64 {
	return d.read
}

// ReadFile returns the content of path together with its MD5 checksum.
func ReadFile(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer utils.CloseOrWarn(f)

	dr := NewDigestReader(f)
	content, err := io.ReadAll(dr)
	if err != nil {
		return nil, "", err
	}

	return content, dr.Checksum(), nil
}
