package dotfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// BackupSuffix is appended to a file name to form its backup name.
const BackupSuffix = ".back"

// BackupPath returns the backup location for path.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// Backup copies each named file inside dir to "<name>.back", overwriting any
// previous backup. Names that do not exist in dir are skipped; that is not
// an error. Directories with a matching name are skipped as well.
//
// It returns the backup paths that were written, in the order of names.
func Backup(dir string, names []string) ([]string, error) {
	written := make([]string, 0, len(names))

	for _, name := range names {
		src := filepath.Join(dir, name)

		info, err := os.Stat(src)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return written, fmt.Errorf("failed to stat %s: %w", src, err)
		}
		if !info.Mode().IsRegular() {
			continue
		}

		dst := BackupPath(src)
		if err := copyFile(src, dst, info.Mode().Perm()); err != nil {
			return written, err
		}
		written = append(written, dst)
	}

	return written, nil
}
