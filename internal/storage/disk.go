package storage

import "os"

// DatabaseSize returns the bytes used by the SQLite database at path, including
// its write-ahead log and shared-memory files. Missing files count as zero.
func DatabaseSize(path string) (int64, error) {
	if path == "" {
		return 0, nil
	}
	var total int64
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}
