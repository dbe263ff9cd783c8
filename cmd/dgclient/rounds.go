package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/padraicbc/dgapp/presenter"
	"github.com/padraicbc/dgapp/repository"
)

func roundsCmd(a *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "rounds",
		Short: "List recorded rounds, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := a.roundPresenter()
			if err := p.Load(cmd.Context(), refresh); err != nil {
				return errors.New(p.List().ErrorMessage)
			}
			st := p.List()
			printRounds(cmd.OutOrStdout(), st.Rounds)
			warnStale(cmd.ErrOrStderr(), st.CacheStale)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "ignore the cache")
	return cmd
}

func roundCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "round <id>",
		Short: "Show one round's score card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.roundPresenter()
			if err := p.Open(cmd.Context(), args[0]); err != nil {
				return errors.New(p.Detail().ErrorMessage)
			}
			printRound(cmd.OutOrStdout(), *p.Detail().Round)
			return nil
		},
	}
}

func editRoundCmd(a *app) *cobra.Command {
	var scores, date string
	cmd := &cobra.Command{
		Use:   "edit-round <id>",
		Short: "Replace a round's scores or date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.roundPresenter()
			if err := p.Open(cmd.Context(), args[0]); err != nil {
				return errors.New(p.Detail().ErrorMessage)
			}
			base := *p.Detail().Round
			form := presenter.EditRoundForm(base)
			if cmd.Flags().Changed("scores") {
				form.Scores = strings.Split(scores, ",")
			}
			if cmd.Flags().Changed("date") {
				d, err := time.ParseInLocation(dateLayout, date, time.Local)
				if err != nil {
					return fmt.Errorf("date must look like %q: %w", dateLayout, err)
				}
				form.Date = d.UTC()
			}

			updated, err := p.Update(cmd.Context(), base, form)
			if err != nil {
				return errors.New(p.List().ErrorMessage)
			}
			st := p.List()
			fmt.Fprintln(cmd.OutOrStdout(), st.SuccessMessage)
			printRound(cmd.OutOrStdout(), updated)
			warnStale(cmd.ErrOrStderr(), st.CacheStale)
			return nil
		},
	}
	cmd.Flags().StringVar(&scores, "scores", "", "comma separated scores, one per hole")
	cmd.Flags().StringVar(&date, "date", "", "round date, "+dateLayout)
	return cmd
}

func deleteRoundCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-round <id>",
		Short: "Delete a round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.roundPresenter()
			if err := p.Delete(cmd.Context(), args[0]); err != nil {
				return errors.New(p.List().ErrorMessage)
			}
			st := p.List()
			fmt.Fprintln(cmd.OutOrStdout(), st.SuccessMessage)
			warnStale(cmd.ErrOrStderr(), st.CacheStale)
			return nil
		},
	}
}

func playersCmd(a *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "players",
		Short: "List players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			players, err := a.players.GetPlayers(cmd.Context(), refresh)
			if err != nil && !errors.Is(err, repository.ErrCacheStale) {
				return err
			}
			printPlayers(cmd.OutOrStdout(), players)
			warnStale(cmd.ErrOrStderr(), a.players.Stale())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "ignore the cache")
	return cmd
}
