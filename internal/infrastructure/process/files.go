package process

import (
	"os"

	"github.com/jessica-dev/jessica/internal/application/ports"
)

var _ ports.FileChecker = FileChecker{}

// FileChecker answers path questions against the local filesystem.
type FileChecker struct{}

func (FileChecker) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (FileChecker) IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
