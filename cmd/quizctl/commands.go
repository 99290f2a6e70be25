package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quizboard/internal/adapters/http/dto"
	"github.com/jsamuelsen/quizboard/internal/domain"
	"github.com/jsamuelsen/quizboard/internal/ports"
)

func (c *cli) listCmd() *cobra.Command {
	var (
		course string
		page   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of quizzes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.board.SetFilter(course); err != nil {
				return err
			}

			if err := c.board.GoToPage(page); err != nil {
				return err
			}

			view := c.board.View()

			names := make(map[string]string, len(view.Courses))
			for _, course := range view.Courses {
				names[course.ID] = course.Name
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCourse\tTitle\tDescription")
			fmt.Fprintln(w, "--\t------\t-----\t-----------")

			for _, q := range view.Quizzes {
				courseName := names[q.CourseID]
				if courseName == "" {
					courseName = q.CourseID
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", q.ID, courseName, q.Title(), q.Description())
			}

			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d (%d quizzes)\n",
				view.Page.Page, view.Page.TotalPages, view.Page.TotalItems)

			return nil
		},
	}

	cmd.Flags().StringVar(&course, "course", "", "only show quizzes of this course id")
	cmd.Flags().IntVar(&page, "page", 1, "page to show, clamped to the available pages")

	return cmd
}

func (c *cli) coursesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tName")
			fmt.Fprintln(w, "--\t----")

			for _, course := range c.board.View().Courses {
				fmt.Fprintf(w, "%s\t%s\n", course.ID, course.Name)
			}

			return w.Flush()
		},
	}
}

func (c *cli) addCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "add --file quiz.json",
		Short: "Create a quiz from a JSON file",
		Long: `Create a quiz from a JSON document with coursequizID, title, description
and an optional fields object. Use --file - to read standard input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := readQuizRequest(cmd, file)
			if err != nil {
				return err
			}

			created, err := c.board.Create(cmd.Context(), req.ToQuiz(""))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created quiz %s.\n", created.ID)

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "quiz JSON file, - for stdin")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (c *cli) editCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "edit <id> --file quiz.json",
		Short: "Update a quiz from a JSON file",
		Long: `Update a quiz from a JSON document. Backend fields the document does not
name are sent back unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, ok := c.board.Quiz(args[0])
			if !ok {
				return domain.NewNotFoundError("quiz", args[0])
			}

			req, err := readQuizRequest(cmd, file)
			if err != nil {
				return err
			}

			updated, err := c.board.Update(cmd.Context(), current.Merge(req.ToQuiz(current.ID)))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated quiz %s.\n", updated.ID)

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "quiz JSON file, - for stdin")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var confirmer ports.Confirmer = ports.Confirmed(true)
			if !force {
				confirmer = promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			}

			deleted, err := c.board.Delete(cmd.Context(), args[0], confirmer)
			if err != nil {
				return err
			}

			if !deleted {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted quiz %s.\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")

	return cmd
}

// readQuizRequest decodes and validates a quiz document from file or stdin.
func readQuizRequest(cmd *cobra.Command, file string) (*dto.QuizRequest, error) {
	var r io.Reader

	if file == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("opening quiz file: %w", err)
		}
		defer f.Close()

		r = f
	}

	var req dto.QuizRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("decoding quiz: %w", err)
	}

	if err := dto.Validate(&req); err != nil {
		if details := dto.ValidationErrors(err); len(details) > 0 {
			return nil, fmt.Errorf("invalid quiz: %v", details)
		}

		return nil, fmt.Errorf("invalid quiz: %w", err)
	}

	return &req, nil
}
