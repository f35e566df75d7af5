package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVideosCmd groups management of the user's generated videos.
func NewVideosCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "videos",
		Short: "Manage generated explanation videos",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List your videos",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				rt, err := loadRuntime(cmd.Context(), *configPath)
				if err != nil {
					return err
				}
				defer rt.Close()

				videos, err := rt.library.Videos(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, v := range videos {
					visibility := "private"
					if v.IsPublic {
						visibility = "public"
					}
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", v.ID, v.QuestionID, visibility, v.VideoURL)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "share <share-token>",
			Short: "Print the share link for a video token",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rt, err := loadRuntime(cmd.Context(), *configPath)
				if err != nil {
					return err
				}
				defer rt.Close()

				fmt.Fprintln(cmd.OutOrStdout(), rt.library.ShareURL(args[0]))
				return nil
			},
		},
		visibilityCmd(configPath, "publish", true),
		visibilityCmd(configPath, "unpublish", false),
		&cobra.Command{
			Use:   "delete <video-id>",
			Short: "Delete a video",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rt, err := loadRuntime(cmd.Context(), *configPath)
				if err != nil {
					return err
				}
				defer rt.Close()
				return rt.library.Delete(cmd.Context(), args[0])
			},
		},
	)
	return cmd
}

func visibilityCmd(configPath *string, use string, public bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <video-id>",
		Short: "Change whether a video can be opened from its share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			v, err := rt.library.SetPublic(cmd.Context(), args[0], public)
			if err != nil {
				return err
			}
			if v.IsPublic {
				fmt.Fprintln(cmd.OutOrStdout(), rt.library.ShareURL(v.ShareToken))
			}
			return nil
		},
	}
}
