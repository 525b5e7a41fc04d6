package utils

import (
	"io"

	"github.com/zyrohq/zyro/src/internal/log"
)

// CloseOrWarn closes file and logs a warning instead of failing.
func CloseOrWarn(file io.Closer) {
	if err := file.Close(); err != nil {
		log.Warnf("Failed to close file: %v", err)
	}
}
