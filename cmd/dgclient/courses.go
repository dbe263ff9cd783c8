package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/padraicbc/dgapp/presenter"
)

func coursesCmd(a *app) *cobra.Command {
	var (
		search  string
		refresh bool
	)
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List courses, or search them by name and location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := a.coursePresenter()
			var err error
			switch {
			case search != "":
				err = p.Search(cmd.Context(), search)
			case refresh:
				err = p.Refresh(cmd.Context())
			default:
				err = p.Load(cmd.Context())
			}
			if err != nil {
				return errors.New(p.List().ErrorMessage)
			}
			st := p.List()
			printCourses(cmd.OutOrStdout(), st.Courses)
			warnStale(cmd.ErrOrStderr(), st.CacheStale)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "text to search for")
	cmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "ignore the cache")
	return cmd
}

func courseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "course <id>",
		Short: "Show one course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.coursePresenter()
			if err := p.Open(cmd.Context(), args[0]); err != nil {
				return errors.New(p.Detail().ErrorMessage)
			}
			printCourse(cmd.OutOrStdout(), *p.Detail().Course)
			return nil
		},
	}
}

func addCourseCmd(a *app) *cobra.Command {
	var form presenter.NewCourseForm
	cmd := &cobra.Command{
		Use:   "add-course",
		Short: "Create a course with par 3 on every hole",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := a.coursePresenter()
			created, err := p.Create(cmd.Context(), form)
			if err != nil {
				return errors.New(p.List().ErrorMessage)
			}
			st := p.List()
			fmt.Fprintln(cmd.OutOrStdout(), st.SuccessMessage)
			fmt.Fprintln(cmd.OutOrStdout(), created.ID)
			warnStale(cmd.ErrOrStderr(), st.CacheStale)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "course name (required)")
	cmd.Flags().StringVar(&form.Location, "location", "", "where the course is")
	cmd.Flags().StringVar(&form.Description, "description", "", "free text")
	cmd.Flags().IntVar(&form.NumberOfHoles, "holes", presenter.DefaultHoles, "number of holes")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func editCourseCmd(a *app) *cobra.Command {
	var (
		name, location, description string
		pars                        string
	)
	cmd := &cobra.Command{
		Use:   "edit-course <id>",
		Short: "Change a course's details or par values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.coursePresenter()
			if err := p.Open(cmd.Context(), args[0]); err != nil {
				return errors.New(p.Detail().ErrorMessage)
			}
			form := presenter.EditCourseForm(*p.Detail().Course)
			flags := cmd.Flags()
			if flags.Changed("name") {
				form.Name = name
			}
			if flags.Changed("location") {
				form.Location = location
			}
			if flags.Changed("description") {
				form.Description = description
			}
			if flags.Changed("pars") {
				form.ParValues = strings.Split(pars, ",")
				form.NumberOfHoles = len(form.ParValues)
			}

			if _, err := p.Update(cmd.Context(), form); err != nil {
				return errors.New(p.List().ErrorMessage)
			}
			st := p.List()
			fmt.Fprintln(cmd.OutOrStdout(), st.SuccessMessage)
			warnStale(cmd.ErrOrStderr(), st.CacheStale)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&location, "location", "", "new location")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&pars, "pars", "", "comma separated par values, e.g. 3,4,3")
	return cmd
}

func deleteCourseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-course <id>",
		Short: "Delete a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.coursePresenter()
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
