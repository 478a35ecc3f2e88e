package approval

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

const hashPrefix = "blake3:"

// HashFile returns the content hash used as the registry key for a file entry
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hashPrefix + hex.EncodeToString(hasher.Sum(nil)), nil
}
