package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/mwalimu/client"
	"github.com/trezcool/mwalimu/core/course"
)

func contentCmd(cli *commandLine) *cobra.Command {
	content := &cobra.Command{
		Use:   "content",
		Short: "Read, edit and back up the course content",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current course content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := cli.client().CourseData(cmd.Context())
			if err != nil {
				return err
			}
			return cli.printJSON(snap)
		},
	}

	var dir string
	backup := &cobra.Command{
		Use:   "backup",
		Short: "Save the current course content to courseData-backup-<unix ms>.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := cli.client().CourseData(cmd.Context())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(snap.Content, "", "  ")
			if err != nil {
				return errors.Wrap(err, "encoding backup")
			}
			path := filepath.Join(dir, client.BackupFilename(nowFunc()))
			if err = os.WriteFile(path, data, 0o644); err != nil { // nolint:gosec
				return errors.Wrap(err, "writing backup")
			}
			cli.printf("%s\n", path)
			return nil
		},
	}
	backup.Flags().StringVar(&dir, "dir", ".", "directory the backup is written to")

	push := &cobra.Command{
		Use:   "push FILE",
		Short: "Replace the course content with the JSON document in FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, "reading content file")
			}
			var c course.Content
			if err = json.Unmarshal(data, &c); err != nil {
				return errors.Wrapf(err, "decoding %s", args[0])
			}

			cl, err := cli.portalClient(cmd)
			if err != nil {
				return err
			}
			saved, err := cl.SaveCourseData(cmd.Context(), c)
			if err != nil {
				return err
			}
			cli.printf("saved %d topics and %d learning objectives\n", len(saved.Topics), len(saved.LearningObjectives))
			return nil
		},
	}

	content.AddCommand(show, backup, push)
	return content
}

func slidesCmd(cli *commandLine) *cobra.Command {
	slides := &cobra.Command{
		Use:   "slides",
		Short: "Upload and inspect the lecture slides",
	}

	upload := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload FILE as the current PDF deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "opening slides")
			}
			defer f.Close()

			cl, err := cli.portalClient(cmd)
			if err != nil {
				return err
			}
			filename, err := cl.UploadSlides(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			cli.printf("%s\n", filename)
			return nil
		},
	}

	info := &cobra.Command{
		Use:   "info",
		Short: "Describe the current deck",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := cli.client().SlidesInfo(cmd.Context())
			if err != nil {
				return err
			}
			return cli.printJSON(info)
		},
	}

	download := &cobra.Command{
		Use:   "download FILE",
		Short: "Save the current deck to FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(args[0])
			if err != nil {
				return errors.Wrap(err, "creating file")
			}
			defer f.Close()

			n, err := cli.client().DownloadSlides(cmd.Context(), f)
			if err != nil {
				return err
			}
			cli.printf("%d bytes written to %s\n", n, args[0])
			return nil
		},
	}

	slides.AddCommand(upload, info, download)
	return slides
}

func (cli *commandLine) printJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "printing")
}
