// Package sysinfo reports the host platform and the disk usage of the
// assistant's base directory.
package sysinfo

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

type Disk struct {
	Total uint64
	Used  uint64
	Free  uint64
}

type Info struct {
	OS      string
	Release string
	Arch    string
	CPUs    int
	Cwd     string
	BaseDir string
	Disk    *Disk
}

// Collect gathers the report. Fields that cannot be read stay empty.
func Collect(baseDir string) Info {
	info := Info{
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
		CPUs:    runtime.NumCPU(),
		BaseDir: baseDir,
	}
	if cwd, err := os.Getwd(); err == nil {
		info.Cwd = cwd
	}
	info.Release = release()
	if baseDir != "" {
		if d, err := usage(baseDir); err == nil {
			info.Disk = &d
		}
	}
	return info
}

const gb = 1 << 30

func (i Info) String() string {
	var b strings.Builder
	b.WriteString("System information:\n")
	fmt.Fprintf(&b, "  OS: %s", i.OS)
	if i.Release != "" {
		fmt.Fprintf(&b, " %s", i.Release)
	}
	fmt.Fprintf(&b, "\n  Architecture: %s\n", i.Arch)
	fmt.Fprintf(&b, "  CPUs: %d\n", i.CPUs)
	if i.Cwd != "" {
		fmt.Fprintf(&b, "  Working directory: %s\n", i.Cwd)
	}
	if i.BaseDir != "" {
		fmt.Fprintf(&b, "  Base directory: %s\n", i.BaseDir)
	}
	if i.Disk != nil {
		fmt.Fprintf(&b, "  Disk: %.1f GB total, %.1f GB used, %.1f GB free\n",
			float64(i.Disk.Total)/gb, float64(i.Disk.Used)/gb, float64(i.Disk.Free)/gb)
	}
	return strings.TrimRight(b.String(), "\n")
}
