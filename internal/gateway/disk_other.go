//go:build !unix

package gateway

// diskUsage is unavailable on this platform.
func diskUsage(string) (total, free uint64, ok bool) {
	return 0, 0, false
}
