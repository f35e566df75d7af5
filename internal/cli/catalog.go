package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"study-client/internal/domain"
	"study-client/internal/grading"
)

// NewCoursesCmd lists the courses visible to the signed-in user.
func NewCoursesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			list := rt.library.Courses(cmd.Context())
			if list.Error != "" {
				return errors.New(list.Error)
			}
			out := cmd.OutOrStdout()
			for _, c := range list.Courses {
				fmt.Fprintf(out, "%s\t%s\n", c.ID, c.Label)
			}
			return nil
		},
	}
}

// NewQuestionsCmd prints a course's questions with their resolved correct answer.
func NewQuestionsCmd(configPath *string) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "questions <course-id>",
		Short: "List a course's questions and answers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			if refresh {
				if err := rt.questions.Invalidate(cmd.Context(), args[0]); err != nil {
					return err
				}
			}
			questions, err := rt.questions.GetQuestions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for i, q := range questions {
				printQuestion(cmd.OutOrStdout(), i+1, q)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "drop the cached copy and reload from the API")
	return cmd
}

func printQuestion(out io.Writer, n int, q domain.Question) {
	fmt.Fprintf(out, "%d. %s\n", n, q.Text)
	for i, option := range q.Options {
		mark := " "
		if grading.IsCorrectOption(i, option, q.CorrectAnswer) {
			mark = "*"
		}
		fmt.Fprintf(out, "  %s %s) %s\n", mark, grading.OptionLabel(i), option)
	}
	fmt.Fprintf(out, "  answer: %s\n", grading.DisplayAnswer(q.CorrectAnswer, q.Options))
	if q.Explanation != "" {
		fmt.Fprintf(out, "  %s\n", q.Explanation)
	}
}
