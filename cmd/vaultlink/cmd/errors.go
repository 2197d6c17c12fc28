package cmd

import (
	"fmt"
	"strings"
)

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt returns the string "timeout" when it cannot acquire the file lock
// within the configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "timeout")
}

// diagnoseDBLock returns actionable guidance when the snapshot database is
// held by another process.
func diagnoseDBLock(dbPath string) string {
	return fmt.Sprintf("snapshot database is locked by another vaultlink process\n"+
		"  → a running `vaultlink snapshot` or `--from-snapshot` command holds %s\n"+
		"  → wait for it to finish, then retry", dbPath)
}
