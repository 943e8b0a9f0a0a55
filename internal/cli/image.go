package cli

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newImageCmd(a *app) *cobra.Command {
	imageCmd := &cobra.Command{
		Use:   "image",
		Short: "Manage task images",
	}

	var name, mimeType string
	addCmd := &cobra.Command{
		Use:   "add [task] [file]",
		Short: "Attach an image file to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
			if name == "" {
				name = filepath.Base(args[1])
			}
			if mimeType == "" {
				mimeType = mime.TypeByExtension(filepath.Ext(args[1]))
			}
			if mimeType == "" {
				mimeType = http.DetectContentType(data)
			}

			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			task, err := b.ResolveTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			img, err := b.AddImage(cmd.Context(), task.ID, name, mimeType, data)
			if err != nil {
				return fmt.Errorf("failed to add image: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Attached %s (%s, %d bytes) to %q (id: %s)\n",
				img.Name, img.MimeType, img.Size, task.Title, shortID(img.ID))
			return nil
		},
	}
	addCmd.Flags().StringVarP(&name, "name", "n", "", "Image name (default: file name)")
	addCmd.Flags().StringVarP(&mimeType, "mime", "m", "", "MIME type (default: detected)")
	imageCmd.AddCommand(addCmd)

	imageCmd.AddCommand(&cobra.Command{
		Use:     "list [task]",
		Aliases: []string{"ls"},
		Short:   "List the images of a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			task, err := b.ResolveTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			images, err := b.ListImages(cmd.Context(), task.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(images) == 0 {
				fmt.Fprintln(out, "No images.")
				return nil
			}
			for _, img := range images {
				fmt.Fprintf(out, "%s  %s  %-24s %-12s %d bytes\n", img.ID, shortID(img.Digest), img.Name, img.MimeType, img.Size)
			}
			return nil
		},
	})

	var output string
	getCmd := &cobra.Command{
		Use:   "get [image-id]",
		Short: "Write an image to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			img, err := b.GetImage(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = img.Name
			}
			if err := os.WriteFile(path, img.Data, 0644); err != nil {
				return fmt.Errorf("failed to write image: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s (%d bytes)\n", path, len(img.Data))
			return nil
		},
	}
	getCmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: image name)")
	imageCmd.AddCommand(getCmd)

	imageCmd.AddCommand(&cobra.Command{
		Use:     "delete [image-id]",
		Aliases: []string{"rm"},
		Short:   "Delete an image",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			if err := b.DeleteImage(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete image: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "🗑️  Deleted image")
			return nil
		},
	})

	return imageCmd
}
