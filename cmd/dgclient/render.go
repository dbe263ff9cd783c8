package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/padraicbc/dgapp/domain"
)

const dateLayout = "2006-01-02 15:04"

func table(w io.Writer, header string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	_ = tw.Flush()
}

func printCourses(w io.Writer, courses []domain.Course) {
	if len(courses) == 0 {
		fmt.Fprintln(w, "no courses")
		return
	}
	rows := make([][]string, len(courses))
	for i, c := range courses {
		rows[i] = []string{c.ID, c.Name, c.Location, strconv.Itoa(c.NumberOfHoles), strconv.Itoa(c.TotalPar())}
	}
	table(w, "ID\tNAME\tLOCATION\tHOLES\tPAR", rows)
}

func printCourse(w io.Writer, c domain.Course) {
	fmt.Fprintf(w, "%s (%s)\n", c.Name, c.ID)
	if c.Location != "" {
		fmt.Fprintf(w, "Location: %s\n", c.Location)
	}
	if c.Description != "" {
		fmt.Fprintf(w, "%s\n", c.Description)
	}
	fmt.Fprintf(w, "Holes: %d  Par: %d\n", c.NumberOfHoles, c.TotalPar())
	printCard(w, c.ParValues, nil)
}

func printRounds(w io.Writer, rounds []domain.Round) {
	if len(rounds) == 0 {
		fmt.Fprintln(w, "no rounds")
		return
	}
	rows := make([][]string, len(rounds))
	for i, r := range rounds {
		rows[i] = []string{
			r.ID, r.Date.Local().Format(dateLayout), r.Player.Name, r.Course.Name,
			strconv.Itoa(r.TotalScore), domain.FormatParScore(r.ParScore),
		}
	}
	table(w, "ID\tDATE\tPLAYER\tCOURSE\tSCORE\t+/-", rows)
}

func printRound(w io.Writer, r domain.Round) {
	fmt.Fprintf(w, "%s on %s, %s (%s)\n", r.Player.Name, r.Course.Name, r.Date.Local().Format(dateLayout), r.ID)
	fmt.Fprintf(w, "Score: %d  Par: %d  %s\n", r.TotalScore, r.TotalPar, domain.FormatParScore(r.ParScore))
	printCard(w, r.Course.ParValues, r.Scores)
}

// printCard prints hole numbers, pars and, when given, scores.
func printCard(w io.Writer, pars, scores []int) {
	n := max(len(pars), len(scores))
	holes := []string{"HOLE"}
	parRow := []string{"PAR"}
	scoreRow := []string{"SCORE"}
	for i := range n {
		holes = append(holes, strconv.Itoa(i+1))
		parRow = append(parRow, cell(pars, i))
		scoreRow = append(scoreRow, cell(scores, i))
	}
	rows := [][]string{parRow}
	if scores != nil {
		rows = append(rows, scoreRow)
	}
	table(w, strings.Join(holes, "\t"), rows)
}

func cell(values []int, i int) string {
	if i >= len(values) {
		return "-"
	}
	return strconv.Itoa(values[i])
}

func printPlayers(w io.Writer, players []domain.Player) {
	if len(players) == 0 {
		fmt.Fprintln(w, "no players")
		return
	}
	rows := make([][]string, len(players))
	for i, p := range players {
		pdga := ""
		if p.PDGANumber != nil {
			pdga = strconv.Itoa(*p.PDGANumber)
		}
		rows[i] = []string{p.ID, p.Name, pdga, p.Email}
	}
	table(w, "ID\tNAME\tPDGA\tEMAIL", rows)
}

func warnStale(w io.Writer, stale bool) {
	if stale {
		fmt.Fprintln(w, "warning: saved on the server, but the local cache could not be updated; run `dgclient sync`")
	}
}
