package cmd

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

var (
	// CacheHomeDir holds the result store unless --cache-dir says otherwise
	CacheHomeDir string
	// ConfigHomeDir holds the user wide stvrc
	ConfigHomeDir string
)

func init() {
	CacheHomeDir = filepath.Join(xdg.CacheHome, "stv")
	ConfigHomeDir = filepath.Join(xdg.ConfigHome, "stv")
}
