package domain

import "path/filepath"

const (
	// ConfigFileName is the name of the project description file.
	ConfigFileName = "facades.yaml"

	// StateDirName is the name of the directory holding local state such as debug logs.
	StateDirName = ".facades"

	// DebugLogFile is the name of the debug log file.
	DebugLogFile = "debug.log"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultDebugLogPath returns the default path for the debug log.
// It joins .facades and debug.log.
func DefaultDebugLogPath() string {
	return filepath.Join(StateDirName, DebugLogFile)
}
