package cmd

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/nektos/stv/pkg/common"
	"github.com/nektos/stv/pkg/common/logger"
)

// Execute is the entry point to running the CLI
func Execute(ctx context.Context, version string) {
	input := new(Input)
	rootCmd := createRootCommand(ctx, input, version)
	rootCmd.SetArgs(args())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func createRootCommand(ctx context.Context, input *Input, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "stv",
		Short:             "Tally Single Transferable Vote elections and search them for manipulations",
		Args:              cobra.NoArgs,
		PersistentPreRunE: setup(input),
		Version:           version,
		SilenceUsage:      true,
	}

	rootCmd.PersistentFlags().StringVarP(&input.ProfilePath, "file", "f", "", "path to the ballot file (.toi or .yml)")
	rootCmd.PersistentFlags().StringVar(&input.Format, "format", "", "ballot file format: toi, yaml or auto")
	rootCmd.PersistentFlags().StringVar(&input.NamesFile, "names-file", "", "file with candidate names as NUMBER=NAME lines")
	rootCmd.PersistentFlags().StringVar(&input.configFile, "config", "", "YAML file with defaults for these flags")
	rootCmd.PersistentFlags().StringVar(&input.Convention, "convention", "", "final tie convention: co-winners or sole-survivor")
	rootCmd.PersistentFlags().StringVar(&input.MetricsFile, "metrics-file", "", "write search metrics to this file in the Prometheus text format")
	rootCmd.PersistentFlags().StringVar(&input.CacheDir, "cache-dir", "", "directory of the result store")
	rootCmd.PersistentFlags().BoolVar(&input.noCache, "no-cache", false, "neither read nor write the result store")
	rootCmd.PersistentFlags().IntVar(&input.Workers, "workers", 0, "targets searched concurrently, 0 uses every CPU")
	rootCmd.PersistentFlags().IntVar(&input.Progress, "progress", 0, "log a progress line every n search steps")
	rootCmd.PersistentFlags().DurationVar(&input.timeout, "timeout", 0, "give up on a search after this long")
	rootCmd.PersistentFlags().StringVarP(&input.workdir, "directory", "C", ".", "working directory")
	rootCmd.PersistentFlags().BoolVarP(&input.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&input.jsonOutput, "json", false, "output logs and results in json format")

	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)
	rootCmd.AddCommand(
		newTallyCommand(ctx, input),
		newTreeCommand(ctx, input),
		newCoalitionCommand(ctx, input),
		newResultsCommand(ctx, input),
	)
	return rootCmd
}

// normalizeFlagName accepts ballot_length for ballot-length, the spelling YAML configs use
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func setup(input *Input) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if input.verbose {
			log.SetLevel(log.DebugLevel)
		}
		if input.jsonOutput {
			log.SetFormatter(&log.JSONFormatter{})
		}
		log.SetOutput(cmd.ErrOrStderr())

		if input.configFile != "" {
			if err := mergeConfigFile(input, input.resolve(input.configFile)); err != nil {
				return err
			}
		}
		if input.ProfilePath == "" {
			return errors.New("no ballot file given, use --file")
		}
		return nil
	}
}

// commandContext attaches the command logger and the --timeout deadline. The returned
// context also ends on the first interrupt, leaving the caller time to flush what it has.
func commandContext(ctx context.Context, cmd *cobra.Command, input *Input) (context.Context, context.CancelFunc) {
	stop := common.SearchCancelContext(ctx)
	ctx = logger.WithCommandLogger(ctx, cmd.Name(), logger.Options{
		JSON:   input.jsonOutput,
		Level:  log.GetLevel(),
		Output: cmd.ErrOrStderr(),
	})

	var cancel context.CancelFunc
	if input.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, input.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	go func() {
		select {
		case <-stop.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// mergeConfigFile fills every field the flags left empty from a YAML file
func mergeConfigFile(input *Input, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "unable to read config '%s'", path)
	}
	defaults := Input{}
	if err := yaml.Unmarshal(content, &defaults); err != nil {
		return errors.Wrapf(err, "unable to parse config '%s'", path)
	}
	log.Debugf("Loading defaults from %s", path)
	if err := mergo.Merge(input, defaults); err != nil {
		return errors.Wrapf(err, "unable to merge config '%s'", path)
	}
	return nil
}

func args() []string {
	rcFiles := []string{
		filepath.Join(ConfigHomeDir, "stvrc"),
		filepath.Join(UserHomeDir(), ".stvrc"),
		".stvrc",
	}

	args := make([]string, 0)
	for _, f := range rcFiles {
		args = append(args, readArgsFile(f)...)
	}

	args = append(args, os.Args[1:]...)
	return args
}

// UserHomeDir returns the home directory, or "" when it cannot be found
func UserHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

func readArgsFile(file string) []string {
	args := make([]string, 0)
	f, err := os.Open(file)
	if err != nil {
		return args
	}
	defer func() {
		err := f.Close()
		if err != nil {
			log.Errorf("Failed to close args file: %v", err)
		}
	}()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words, err := shellquote.Split(os.ExpandEnv(line))
		if err != nil {
			log.Warnf("Ignoring line of %s: %v", file, err)
			continue
		}
		args = append(args, words...)
	}
	return args
}
