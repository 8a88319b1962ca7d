package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DataPath is the base directory fs2 stores its disk image and its path
// override marker under. Overridable at build time (-ldflags -X
// main.DataPath=...), matching config.h's DATA_PATH build macro.
var DataPath = "."

func pathOverrideFile() string {
	return filepath.Join(DataPath, ".path")
}

// dataDir returns the directory disk images live in: the path last
// recorded by -p, or DataPath if -p was never run.
func dataDir() string {
	b, err := os.ReadFile(pathOverrideFile())
	if err != nil {
		return DataPath
	}
	return strings.TrimSpace(string(b))
}

func defaultDiskPath() string {
	return filepath.Join(dataDir(), "data", "test.disk")
}

// setDataPath validates dir as a usable directory and persists it as the
// new data path, matching main.c's 'p' case.
func setDataPath(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("failed to set path (%q)", dir)
	}
	return os.WriteFile(pathOverrideFile(), []byte(dir+"\n"), 0o644)
}
