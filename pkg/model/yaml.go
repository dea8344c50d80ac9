package model

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// yamlProfile is the on-disk YAML layout of a profile
type yamlProfile struct {
	Candidates []string     `yaml:"candidates"`
	Ballots    []yamlBallot `yaml:"ballots"`
}

type yamlBallot struct {
	Count   int         `yaml:"count"`
	Ranking []yaml.Node `yaml:"ranking"`
}

// ReadYAMLProfile parses a profile written as
//
//	candidates: [Alice, Bob, Carol]
//	ballots:
//	  - count: 2
//	    ranking: [1, [2, 3]]
//
// A nested list inside ranking is a declared tie. Numbers are 1-based. Rankings may be
// shared through YAML anchors.
func ReadYAMLProfile(in io.Reader) (*Profile, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(in).Decode(&node); err != nil {
		if err == io.EOF {
			return nil, errors.Wrap(err, "file is empty")
		}
		return nil, err
	}
	// rankings are kept as nodes, so anchors must be expanded before decoding
	if err := resolveAliases(&node); err != nil {
		return nil, err
	}
	var raw yamlProfile
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}

	p := NewProfile(len(raw.Candidates))
	for i, name := range raw.Candidates {
		p.Names[Candidate(i)] = name
	}

	for i, rb := range raw.Ballots {
		ballot := Ballot{}
		for _, node := range rb.Ranking {
			item, err := decodeYAMLItem(&node)
			if err != nil {
				return nil, errors.Wrapf(err, "ballot %d", i)
			}
			ballot = append(ballot, item)
		}
		if err := p.ValidateBallot(p.Voters(), ballot); err != nil {
			return nil, errors.Wrapf(err, "ballot %d", i)
		}
		count := rb.Count
		if count == 0 {
			count = 1
		}
		p.AddBallot(count, ballot)
	}
	return p, nil
}

func decodeYAMLItem(node *yaml.Node) (Item, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		var k int
		if err := node.Decode(&k); err != nil {
			return Item{}, err
		}
		return Single(Candidate(k - 1)), nil
	case yaml.SequenceNode:
		var ks []int
		if err := node.Decode(&ks); err != nil {
			return Item{}, err
		}
		if len(ks) != 2 {
			var c Candidate
			if len(ks) > 0 {
				c = Candidate(ks[0] - 1)
			}
			return Item{}, &ConfigurationError{Ballot: -1, Candidate: c, Reason: "tie group must have exactly two entries"}
		}
		return Tie(Candidate(ks[0]-1), Candidate(ks[1]-1)), nil
	default:
		return Item{}, errors.Errorf("line %d: ranking entries must be numbers or pairs", node.Line)
	}
}
