package model

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	alternativeHeader = "# ALTERNATIVE NAME"
	legacyHeader      = "# ALTERNATIVE"
	countHeader       = "# NUMBER ALTERNATIVES"
)

// ReadProfileFile loads a profile from disk, picking the parser from the extension
// unless format is "toi" or "yaml"
func ReadProfileFile(path string, format string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if format == "" || format == "auto" {
		format = FormatForPath(path)
	}
	log.Debugf("Reading %s profile from '%s'", format, path)

	var p *Profile
	switch format {
	case "yaml":
		p, err = ReadYAMLProfile(f)
	case "toi":
		p, err = ReadTOIProfile(f)
	default:
		return nil, errors.Errorf("unknown profile format '%s'", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read profile '%s'", path)
	}
	return p, nil
}

// FormatForPath guesses the profile format from a file name
func FormatForPath(path string) string {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".yaml") {
		return "yaml"
	}
	return "toi"
}

// ReadTOIProfile parses the PrefLib "orders with ties, incomplete" text format.
//
//	# ALTERNATIVE NAME 1: Alice
//	3: 1,{2,3},4
//
// Candidate numbers are 1-based in the file and 0-based in the profile.
func ReadTOIProfile(in io.Reader) (*Profile, error) {
	type line struct {
		no     int
		weight int
		ballot Ballot
	}

	names := map[Candidate]string{}
	declared := 0
	highest := Candidate(-1)
	lines := make([]line, 0)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	no := 0
	for scanner.Scan() {
		no++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "#") {
			if err := readTOIHeader(text, names, &declared); err != nil {
				return nil, errors.Wrapf(err, "line %d", no)
			}
			continue
		}

		weight, ballot, err := parseTOILine(text)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", no)
		}
		for _, c := range ballot.Candidates() {
			if c > highest {
				highest = c
			}
		}
		lines = append(lines, line{no: no, weight: weight, ballot: ballot})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	n := declared
	if n == 0 {
		for c := range names {
			if int(c)+1 > n {
				n = int(c) + 1
			}
		}
		if int(highest)+1 > n {
			n = int(highest) + 1
		}
	}

	p := NewProfile(n)
	p.Names = names
	for _, l := range lines {
		if err := p.ValidateBallot(p.Voters(), l.ballot); err != nil {
			return nil, errors.Wrapf(err, "line %d", l.no)
		}
		p.AddBallot(l.weight, l.ballot)
	}
	return p, nil
}

func readTOIHeader(text string, names map[Candidate]string, declared *int) error {
	key, value, found := strings.Cut(text, ":")
	if !found {
		return nil
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	switch {
	case strings.HasPrefix(key, countHeader):
		n, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrap(err, "invalid number of alternatives")
		}
		*declared = n
	case strings.HasPrefix(key, alternativeHeader), strings.HasPrefix(key, legacyHeader):
		fields := strings.Fields(key)
		k, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			// other "# ALTERNATIVE..." metadata lines are not names
			return nil
		}
		if k < 1 {
			return &ConfigurationError{Ballot: -1, Candidate: Candidate(k - 1), Reason: "alternative numbers start at 1"}
		}
		names[Candidate(k-1)] = value
	}
	return nil
}

func parseTOILine(text string) (int, Ballot, error) {
	count, ranking, found := strings.Cut(text, ":")
	if !found {
		return 0, nil, errors.Errorf("missing ':' in '%s'", text)
	}
	weight, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil {
		return 0, nil, errors.Wrapf(err, "invalid voter count '%s'", count)
	}
	if weight < 0 {
		return 0, nil, errors.Errorf("negative voter count %d", weight)
	}

	ballot := Ballot{}
	var group []Candidate
	inGroup := false
	for _, token := range splitTOIRanking(strings.TrimSpace(ranking)) {
		switch token {
		case "{":
			if inGroup {
				return 0, nil, errors.New("nested tie group")
			}
			inGroup = true
			group = group[:0]
		case "}":
			if !inGroup {
				return 0, nil, errors.New("unbalanced '}'")
			}
			inGroup = false
			if len(group) != 2 {
				var c Candidate
				if len(group) > 0 {
					c = group[0]
				}
				return 0, nil, &ConfigurationError{Ballot: -1, Candidate: c, Reason: "tie group must have exactly two entries"}
			}
			ballot = append(ballot, Tie(group[0], group[1]))
		default:
			k, err := strconv.Atoi(token)
			if err != nil {
				return 0, nil, errors.Wrapf(err, "invalid candidate '%s'", token)
			}
			c := Candidate(k - 1)
			if inGroup {
				group = append(group, c)
			} else {
				ballot = append(ballot, Single(c))
			}
		}
	}
	if inGroup {
		return 0, nil, errors.New("unterminated tie group")
	}
	return weight, ballot, nil
}

// splitTOIRanking turns "1,{2,3},4" into 1 { 2 3 } 4
func splitTOIRanking(ranking string) []string {
	tokens := make([]string, 0)
	current := strings.Builder{}
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, r := range ranking {
		switch r {
		case '{', '}':
			flush()
			tokens = append(tokens, string(r))
		case ',', ' ', '\t':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}
