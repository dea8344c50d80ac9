//go:build !(linux || darwin || windows || openbsd || netbsd || freebsd)
// +build !linux,!darwin,!windows,!openbsd,!netbsd,!freebsd

package cmd

func selectCandidate(_ string, _ []string, def string) string {
	return def
}
