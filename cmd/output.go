package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nektos/stv/pkg/common/utils"
	"github.com/nektos/stv/pkg/manipulation"
	"github.com/nektos/stv/pkg/model"
	"github.com/nektos/stv/pkg/stv"
)

type roundView struct {
	Number int                `json:"number"`
	Scores map[string]float64 `json:"scores"`
	Losers []string           `json:"losers"`
}

type tallyView struct {
	Convention string      `json:"convention"`
	Winners    []string    `json:"winners"`
	Eliminated []string    `json:"eliminated"`
	Rounds     []roundView `json:"rounds"`
}

type constraintView struct {
	Add        []string `json:"add"`
	Subtract   []string `json:"subtract"`
	Difference float64  `json:"difference"`
}

type scenarioView struct {
	Winner           string           `json:"winner"`
	Remaining        []string         `json:"remaining"`
	EliminationOrder []string         `json:"eliminationOrder"`
	Ballot           []string         `json:"ballot"`
	Constraints      []constraintView `json:"constraints"`
}

type treeView struct {
	OriginalWinners []string       `json:"originalWinners"`
	Count           int            `json:"count"`
	Pruned          int            `json:"pruned"`
	Scenarios       []scenarioView `json:"scenarios"`
}

type witnessView struct {
	Size     int      `json:"size"`
	Ballot   []string `json:"ballot"`
	Voters   []int    `json:"voters"`
	Winners  []string `json:"winners"`
	Verified bool     `json:"verified"`
}

type outcomeView struct {
	Disfavored string        `json:"disfavored"`
	Target     string        `json:"target"`
	Pool       []int         `json:"pool"`
	Trials     int           `json:"trials"`
	Witnesses  []witnessView `json:"witnesses"`
	Best       *witnessView  `json:"best,omitempty"`
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTallyView(p *model.Profile, config stv.Config, result *stv.Result) tallyView {
	view := tallyView{
		Convention: config.Convention.String(),
		Winners:    candidateNames(p, result.Winners),
		Eliminated: candidateNames(p, result.Eliminated),
		Rounds:     make([]roundView, 0, len(result.Rounds)),
	}
	for _, r := range result.Rounds {
		scores := map[string]float64{}
		for _, c := range p.All() {
			scores[p.Name(c)] = r.Scores.Of(c).Float64()
		}
		view.Rounds = append(view.Rounds, roundView{
			Number: r.Number,
			Scores: scores,
			Losers: candidateNames(p, r.Losers),
		})
	}
	return view
}

// printRounds writes one row per round with the score of every candidate still standing
func printRounds(w io.Writer, p *model.Profile, result *stv.Result) {
	header := append([]string{"Round"}, candidateNames(p, p.All())...)
	header = append(header, "Eliminated")
	rows := [][]string{header}

	eliminated := model.NewEliminationSet()
	for _, r := range result.Rounds {
		row := []string{fmt.Sprint(r.Number)}
		for _, c := range p.All() {
			if eliminated.Has(c) {
				row = append(row, "-")
			} else {
				row = append(row, r.Scores.Of(c).String())
			}
		}
		if r.Number < len(result.Rounds) {
			row = append(row, strings.Join(candidateNames(p, r.Losers), ", "))
		}
		rows = append(rows, row)
		eliminated.Add(r.Losers...)
	}
	printTable(w, rows)
	fmt.Fprintf(w, "\nWinners: %s\n", strings.Join(candidateNames(p, result.Winners), ", "))
}

func printTable(w io.Writer, rows [][]string) {
	widths := []int{}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], len(cell))
		}
	}
	for _, row := range rows {
		line := ""
		for i, cell := range row {
			line += fmt.Sprintf("%*s", -(widths[i] + 2), cell)
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

// drawRounds draws every round as a bar chart, the eliminated group hatched
func drawRounds(w io.Writer, p *model.Profile, result *stv.Result, color bool, width int) {
	barColor, arrowColor, winnerColor := 96, 97, 91
	if !color {
		barColor, arrowColor, winnerColor = 0, 0, 0
	}
	barPen := utils.NewPen(utils.StyleSingleLine, barColor)
	arrowPen := utils.NewPen(utils.StyleNoLine, arrowColor)
	winnerPen := utils.NewPen(utils.StyleDoubleLine, winnerColor)

	drawings := make([]*utils.Drawing, 0)
	eliminated := model.NewEliminationSet()
	for i, r := range result.Rounds {
		if i > 0 {
			drawings = append(drawings, arrowPen.DrawArrow())
		}
		losers := model.NewEliminationSet(r.Losers...)
		bars := make([]utils.Bar, 0, p.Candidates)
		for _, c := range eliminated.Active(p.Candidates) {
			score := r.Scores.Of(c)
			bars = append(bars, utils.Bar{
				Label:  p.Name(c),
				Value:  score.Float64(),
				Text:   score.String(),
				Marked: losers.Has(c) && !result.Wins(c),
			})
		}
		drawings = append(drawings, barPen.DrawBars(width, bars...))
		eliminated.Add(r.Losers...)
	}
	drawings = append(drawings, arrowPen.DrawArrow())
	drawings = append(drawings, winnerPen.DrawBoxes(candidateNames(p, result.Winners)...))

	maxWidth := 0
	for _, d := range drawings {
		if d.GetWidth() > maxWidth {
			maxWidth = d.GetWidth()
		}
	}
	for _, d := range drawings {
		d.Draw(w, maxWidth)
	}
}

func newConstraintView(p *model.Profile, c manipulation.Constraint) constraintView {
	return constraintView{
		Add:        candidateNames(p, c.Add),
		Subtract:   candidateNames(p, c.Subtract),
		Difference: c.Difference.Float64(),
	}
}

func newTreeView(p *model.Profile, winners []model.Candidate, result *manipulation.TreeResult) treeView {
	view := treeView{
		OriginalWinners: candidateNames(p, winners),
		Count:           result.Count,
		Pruned:          result.Pruned,
		Scenarios:       make([]scenarioView, 0, len(result.Scenarios)),
	}
	for _, s := range result.Scenarios {
		sv := scenarioView{
			Winner:           p.Name(s.Winner),
			Remaining:        candidateNames(p, s.Remaining),
			EliminationOrder: candidateNames(p, s.EliminationOrder),
			Ballot:           candidateNames(p, s.Ballot),
			Constraints:      make([]constraintView, 0, len(s.Constraints)),
		}
		for _, c := range s.Constraints {
			sv.Constraints = append(sv.Constraints, newConstraintView(p, c))
		}
		view.Scenarios = append(view.Scenarios, sv)
	}
	return view
}

func printTree(w io.Writer, p *model.Profile, winners []model.Candidate, result *manipulation.TreeResult) {
	fmt.Fprintf(w, "Original winners: %s\n", strings.Join(candidateNames(p, winners), ", "))
	for i, s := range result.Scenarios {
		fmt.Fprintf(w, "\nScenario %d: %s wins (remaining %s)\n", i+1, p.Name(s.Winner), strings.Join(candidateNames(p, s.Remaining), ", "))
		fmt.Fprintf(w, "  elimination order: %s\n", strings.Join(candidateNames(p, s.EliminationOrder), ", "))
		fmt.Fprintf(w, "  manipulator ballot: %s\n", strings.Join(candidateNames(p, s.Ballot), " "))
		for _, c := range s.Constraints {
			fmt.Fprintf(w, "  %s\n", c.Format(p.Name))
		}
	}
	fmt.Fprintf(w, "\n%d scenarios, %d kept, %d branches pruned\n", result.Count, len(result.Scenarios), result.Pruned)
}

func newWitnessView(p *model.Profile, w manipulation.Witness, verified bool) witnessView {
	return witnessView{
		Size:     w.Size,
		Ballot:   candidateNames(p, w.Ballot),
		Voters:   w.Voters,
		Winners:  candidateNames(p, w.Winners),
		Verified: verified,
	}
}

func newOutcomeView(p *model.Profile, o *manipulation.Outcome, verified []bool) outcomeView {
	view := outcomeView{
		Disfavored: p.Name(o.Disfavored),
		Target:     p.Name(o.Target),
		Pool:       o.Pool,
		Trials:     o.Trials,
		Witnesses:  make([]witnessView, 0, len(o.Witnesses)),
	}
	for i, w := range o.Witnesses {
		view.Witnesses = append(view.Witnesses, newWitnessView(p, w, verified[i]))
	}
	if n := len(view.Witnesses); n > 0 {
		view.Best = &view.Witnesses[n-1]
	}
	return view
}

func printOutcome(w io.Writer, view outcomeView) {
	if view.Best == nil {
		fmt.Fprintf(w, "%s: no manipulation found (%d manipulators, %d trials)\n", view.Target, len(view.Pool), view.Trials)
		return
	}
	fmt.Fprintf(w, "%s: %d manipulators, %d trials\n", view.Target, len(view.Pool), view.Trials)
	for _, wv := range view.Witnesses {
		fmt.Fprintf(w, "  %d voters casting %s elect %s%s\n", wv.Size, strings.Join(wv.Ballot, " "), strings.Join(wv.Winners, ", "), unverified(wv.Verified))
	}
	fmt.Fprintf(w, "  smallest coalition: %d voters %v\n", view.Best.Size, view.Best.Voters)
}

func unverified(verified bool) string {
	if verified {
		return ""
	}
	return " (replay disagrees)"
}
