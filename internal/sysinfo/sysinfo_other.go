//go:build !linux && !darwin && !freebsd

package sysinfo

import "errors"

func release() string { return "" }

func usage(string) (Disk, error) {
	return Disk{}, errors.New("disk usage not supported on this platform")
}
