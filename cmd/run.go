package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/nektos/stv/pkg/common"
	"github.com/nektos/stv/pkg/common/utils"
	"github.com/nektos/stv/pkg/metrics"
	"github.com/nektos/stv/pkg/model"
	"github.com/nektos/stv/pkg/resultstore"
	"github.com/nektos/stv/pkg/stv"
)

// run is the state one command invocation threads through its executors
type run struct {
	input    *Input
	cmd      *cobra.Command
	profile  *model.Profile
	config   stv.Config
	sincere  *stv.Result
	recorder *metrics.Recorder
	store    *resultstore.Store
}

func newRun(cmd *cobra.Command, input *Input) *run {
	r := &run{
		input: input,
		cmd:   cmd,
	}
	r.recorder = metrics.NewRecorder(func(c model.Candidate) string {
		return r.profile.Name(c)
	})
	return r
}

func (r *run) loadProfile() common.Executor {
	return func(ctx context.Context) error {
		config, err := r.input.EngineConfig()
		if err != nil {
			return err
		}
		p, err := loadProfile(ctx, r.input)
		if err != nil {
			return err
		}
		r.config = config
		r.profile = p
		return nil
	}
}

// tallySincere runs STV on the profile as cast
func (r *run) tallySincere() common.Executor {
	return func(ctx context.Context) error {
		defer r.recorder.TimeSince("tally", time.Now())
		result, err := stv.New(r.config).Run(ctx, r.profile)
		if err != nil {
			return err
		}
		r.sincere = result
		r.recorder.SetRounds(len(result.Rounds))
		common.Logger(ctx).Infof("Sincere winners: %v", candidateNames(r.profile, result.Winners))
		return nil
	}
}

func (r *run) openStore() common.Executor {
	return func(ctx context.Context) error {
		store, err := resultstore.Open(r.input.Cache(), common.Logger(ctx))
		if err != nil {
			return err
		}
		r.store = store
		return nil
	}
}

func (r *run) writeMetrics() common.Executor {
	return func(ctx context.Context) error {
		if r.input.MetricsFile == "" {
			return nil
		}
		path := r.input.resolve(r.input.MetricsFile)
		common.Logger(ctx).Debugf("Writing metrics to %s", path)
		return r.recorder.WriteToTextfile(path)
	}
}

func (r *run) colored() bool {
	return !r.input.jsonOutput && utils.CheckIfColorable(r.cmd.OutOrStdout())
}
