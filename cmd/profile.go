package cmd

import (
	"context"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/nektos/stv/pkg/common"
	"github.com/nektos/stv/pkg/model"
)

// loadProfile reads the ballot file and applies the names file on top of it
func loadProfile(ctx context.Context, input *Input) (*model.Profile, error) {
	p, err := model.ReadProfileFile(input.Profile(), input.ProfileFormat())
	if err != nil {
		return nil, err
	}
	if input.NamesFile != "" {
		if err := readNames(ctx, input.Names(), p); err != nil {
			return nil, err
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	common.Logger(ctx).Debugf("Loaded %d ballots over %d candidates", p.Voters(), p.Candidates)
	return p, nil
}

// readNames parses NUMBER=NAME lines, numbers being 1-based like the ballot files
func readNames(ctx context.Context, path string, p *model.Profile) error {
	names, err := godotenv.Read(path)
	if err != nil {
		return errors.Wrapf(err, "unable to read names file '%s'", path)
	}
	for key, name := range names {
		k, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || k < 1 || k > p.Candidates {
			common.Logger(ctx).Warnf("Ignoring name '%s' for unknown candidate '%s'", name, key)
			continue
		}
		p.Names[model.Candidate(k-1)] = name
	}
	return nil
}

// resolveCandidate accepts a display name or a 1-based number
func resolveCandidate(p *model.Profile, value string) (model.Candidate, error) {
	value = strings.TrimSpace(value)
	for _, c := range p.All() {
		if strings.EqualFold(p.Name(c), value) {
			return c, nil
		}
	}
	if k, err := strconv.Atoi(value); err == nil && k >= 1 && k <= p.Candidates {
		return model.Candidate(k - 1), nil
	}
	return 0, errors.Errorf("unknown candidate '%s'", value)
}

func candidateNames(p *model.Profile, cs []model.Candidate) []string {
	names := make([]string, 0, len(cs))
	for _, c := range cs {
		names = append(names, p.Name(c))
	}
	return names
}
