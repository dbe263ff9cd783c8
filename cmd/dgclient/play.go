package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/padraicbc/dgapp/domain"
	"github.com/padraicbc/dgapp/presenter"
	"github.com/padraicbc/dgapp/repository"
	"github.com/padraicbc/dgapp/session"
)

const playHelp = `+ / -   add or remove a stroke on this hole
<n>     set this hole's score to n
n / p   next or previous hole
f       finish and save the round
q       quit without saving`

func playCmd(a *app) *cobra.Command {
	var courseID, player string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Score a round hole by hole",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			in := bufio.NewScanner(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			ng := presenter.NewNewGame(a.courses, a.log)
			if err := ng.Load(ctx); err != nil {
				return errors.New(ng.State().ErrorMessage)
			}
			if courseID == "" {
				id, err := pickCourse(in, out, ng.State().Courses)
				if err != nil {
					return err
				}
				courseID = id
			}
			if player == "" {
				player = a.cfg.Player
			}
			if strings.TrimSpace(player) == "" {
				fmt.Fprint(out, "player name: ")
				if in.Scan() {
					player = in.Text()
				}
			}

			id, err := ng.Start(presenter.NewGameForm{PlayerName: player, SelectedCourseID: courseID})
			if err != nil {
				return err
			}
			s := session.New(a.courses, a.rounds, a.players, session.WithLogger(a.log))
			if err := s.Initialize(ctx, id, ng.State().PlayerName); err != nil {
				return fmt.Errorf("start round: %w", err)
			}
			ng.ClearStart()

			fmt.Fprintln(out, playHelp)
			return runScoring(ctx, s, in, out)
		},
	}
	cmd.Flags().StringVarP(&courseID, "course", "c", "", "course id (prompted when empty)")
	cmd.Flags().StringVarP(&player, "player", "p", "", "player name (default $DGAPP_PLAYER)")
	return cmd
}

func pickCourse(in *bufio.Scanner, out io.Writer, courses []domain.Course) (string, error) {
	if len(courses) == 0 {
		return "", errors.New("no courses; add one with `dgclient add-course`")
	}
	for i, c := range courses {
		fmt.Fprintf(out, "%2d) %s, %d holes, par %d\n", i+1, c.Name, c.NumberOfHoles, c.TotalPar())
	}
	fmt.Fprint(out, "course #: ")
	if !in.Scan() {
		return "", presenter.ErrNoCourse
	}
	n, err := strconv.Atoi(strings.TrimSpace(in.Text()))
	if err != nil || n < 1 || n > len(courses) {
		return "", presenter.ErrNoCourse
	}
	return courses[n-1].ID, nil
}

// runScoring reads one command per line until the round is saved, the
// input ends or the player quits.
func runScoring(ctx context.Context, s *session.Scoring, in *bufio.Scanner, out io.Writer) error {
	printHole(out, s.State())
	for {
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return err
			}
			return errors.New("input closed, round not saved")
		}

		switch cmd := strings.TrimSpace(in.Text()); cmd {
		case "":
			continue
		case "+":
			s.UpdateCurrentHoleScore(1)
		case "-":
			s.UpdateCurrentHoleScore(-1)
		case "n":
			s.NextHole()
		case "p":
			s.PreviousHole()
		case "q":
			s.Reset()
			fmt.Fprintln(out, "round discarded")
			return nil
		case "f":
			round, err := s.FinishRound(ctx)
			if err != nil && !errors.Is(err, repository.ErrCacheStale) {
				fmt.Fprintln(out, s.State().ErrorMessage)
				continue
			}
			fmt.Fprintln(out, "Round saved.")
			printRound(out, round)
			warnStale(out, s.State().CacheStale)
			return nil
		default:
			n, err := strconv.Atoi(cmd)
			if err != nil || n < 1 {
				fmt.Fprintln(out, playHelp)
				continue
			}
			s.UpdateCurrentHoleScore(n - s.State().CurrentScore())
		}
		printHole(out, s.State())
	}
}

func printHole(w io.Writer, st session.State) {
	fmt.Fprintf(w, "hole %d/%d  par %d  score %d  total %d (%s)\n",
		st.HoleIndex+1, len(st.Scores), st.CurrentPar(), st.CurrentScore(),
		st.TotalScore(), domain.FormatParScore(st.ParScore()))
}
