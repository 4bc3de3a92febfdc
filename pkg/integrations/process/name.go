package process

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// procRoot is the procfs mount point
var procRoot = "/proc"

// Name returns the executable name of pid as recorded in /proc/<pid>/stat
func Name(pid int64) (string, error) {
	statPath := filepath.Join(procRoot, strconv.FormatInt(pid, 10), "stat")
	data, err := os.ReadFile(statPath)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read process %d", pid)
	}

	return parseStatName(string(data))
}

// parseStatName extracts the comm field, which is wrapped in parentheses and
// may itself contain spaces or parentheses
func parseStatName(stat string) (string, error) {
	startIdx := strings.Index(stat, "(")
	endIdx := strings.LastIndex(stat, ")")
	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx+1 {
		return "", errors.Errorf("malformed stat line: %q", stat)
	}
	return stat[startIdx+1 : endIdx], nil
}
