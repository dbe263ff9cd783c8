package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/padraicbc/dgapp/domain"
	"github.com/padraicbc/dgapp/presenter"
)

func syncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Refresh the local cache from the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := presenter.NewDashboard(a.courses, a.players, a.rounds, a.log)
			if err := d.Refresh(cmd.Context(), true); err != nil {
				return errors.New(d.State().ErrorMessage)
			}
			st := d.State()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d courses, %d players, %d rounds\n", len(st.Courses), len(st.Players), len(st.Rounds))
			if best, ok := st.Best(); ok {
				fmt.Fprintf(out, "best round: %s on %s, %s\n", best.Player.Name, best.Course.Name, domain.FormatParScore(best.ParScore))
			}
			warnStale(cmd.ErrOrStderr(), st.CacheStale)
			return nil
		},
	}
}

func signinCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Get a token for the write routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "password: ")
				in := bufio.NewScanner(cmd.InOrStdin())
				if !in.Scan() {
					return errors.New("no password given")
				}
				password = strings.TrimRight(in.Text(), "\r")
			}
			token, err := a.api.Signin(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintln(cmd.ErrOrStderr(), "export DGAPP_TOKEN=<token> to use it")
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name (required)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
