package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

func GetRandomUserAgent() string {
	return userAgents[time.Now().UnixNano()%int64(len(userAgents))]
}

func ParseHeaderArgs(headers []string) map[string]string {
	result := make(map[string]string)
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			result[key] = value
		}
	}
	return result
}

// TempRunName is deterministic per (url, outputPath) pair.
func TempRunName(link, outputPath string) string {
	if abs, err := filepath.Abs(outputPath); err == nil {
		outputPath = abs
	}
	sum := sha256.Sum256([]byte(link + "|" + outputPath))
	return hex.EncodeToString(sum[:16])
}

// NewRunTempDir returns the per-run temp directory path next to the output
// file. The uuid suffix keeps concurrent runs on the same pair apart.
func NewRunTempDir(link, outputPath string) string {
	nonce := strings.SplitN(uuid.NewString(), "-", 2)[0]
	name := fmt.Sprintf("%s-%s", TempRunName(link, outputPath), nonce)
	return filepath.Join(filepath.Dir(outputPath), TempDirName, name)
}

func SegmentFileName(outputPath string, index int) string {
	return fmt.Sprintf("%s.part%d", filepath.Base(outputPath), index)
}

// RemoveIfEmpty deletes dir only when it has no entries left.
func RemoveIfEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(entries) > 0 {
		return nil
	}
	return os.Remove(dir)
}

// CleanTempRoot removes leftover run directories under dir/.splitfetch-temp.
func CleanTempRoot(dir string) (int, error) {
	tempRoot := filepath.Join(dir, TempDirName)
	entries, err := os.ReadDir(tempRoot)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(tempRoot, entry.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	if err := os.Remove(tempRoot); err != nil {
		return removed, err
	}
	return removed, nil
}
