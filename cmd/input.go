package cmd

import (
	"path/filepath"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nektos/stv/pkg/stv"
)

// Input contains the input for the root command. Exported fields may also come from
// the --config file; flags always win over it.
type Input struct {
	ProfilePath  string `yaml:"file"`
	Format       string `yaml:"format"`
	NamesFile    string `yaml:"names-file"`
	Convention   string `yaml:"convention"`
	MetricsFile  string `yaml:"metrics-file"`
	CacheDir     string `yaml:"cache-dir"`
	Workers      int    `yaml:"workers"`
	Bound        int    `yaml:"bound"`
	BallotLength int    `yaml:"ballot-length"`
	Progress     int    `yaml:"progress"`

	workdir    string
	configFile string
	verbose    bool
	jsonOutput bool
	noCache    bool
	timeout    time.Duration

	// tally
	chart bool
	watch bool

	// tree
	treeTarget             string
	allowWinnerElimination bool

	// coalition
	disfavored       string
	target           string
	interactive      bool
	requireTargetWin bool
}

func (i *Input) resolve(path string) string {
	basedir, err := filepath.Abs(i.workdir)
	if err != nil {
		log.Fatal(err)
	}
	if path == "" {
		return path
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(basedir, path)
	}
	return path
}

// Workdir returns path to workdir
func (i *Input) Workdir() string {
	return i.resolve(".")
}

// Profile returns the path to the ballot file
func (i *Input) Profile() string {
	return i.resolve(i.ProfilePath)
}

// Names returns the path to the candidate names file
func (i *Input) Names() string {
	return i.resolve(i.NamesFile)
}

// Cache returns the result store directory
func (i *Input) Cache() string {
	if i.CacheDir == "" {
		return CacheHomeDir
	}
	return i.resolve(i.CacheDir)
}

// ProfileFormat returns the requested ballot file format
func (i *Input) ProfileFormat() string {
	if i.Format == "" {
		return "auto"
	}
	return i.Format
}

// Parallel returns how many targets a coalition search runs at once
func (i *Input) Parallel() int {
	if i.Workers <= 0 {
		return runtime.NumCPU()
	}
	return i.Workers
}

// EngineConfig returns the STV settings every command tallies with
func (i *Input) EngineConfig() (stv.Config, error) {
	convention, err := stv.ParseConvention(i.Convention)
	if err != nil {
		return stv.Config{}, err
	}
	return stv.Config{Convention: convention}, nil
}
