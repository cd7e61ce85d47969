package cmd

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"surfapp/internal/services"

	"github.com/spf13/cobra"
)

var uploadContentType string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List your surf sessions",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if err := a.requireUser(); err != nil {
			return err
		}
		list, err := a.client.ListMySessions(ctx)
		if err != nil {
			return err
		}
		return printSessions(list)
	}),
}

var sessionCmd = &cobra.Command{
	Use:   "session <id>",
	Short: "Show a session with its media and activity",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if err := a.requireUser(); err != nil {
			return err
		}
		detail, err := services.LoadSessionDetail(ctx, a.client, args[0])
		if err != nil {
			return err
		}
		return printSessionDetail(detail)
	}),
}

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Show how much of your media storage is used",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if err := a.requireUser(); err != nil {
			return err
		}
		usage, err := a.client.GetStorageUsage(ctx)
		if err != nil {
			return err
		}
		return printStorage(usage)
	}),
}

var uploadCmd = &cobra.Command{
	Use:   "upload <session-id> <file>",
	Short: "Upload a photo or video to a session",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if err := a.requireUser(); err != nil {
			return err
		}
		sessionID, path := args[0], args[1]

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()

		contentType := uploadContentType
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(path))
		}
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		upload, err := a.client.GetPresignedUploadURL(ctx, sessionID, filepath.Base(path), contentType)
		if err != nil {
			return err
		}
		if err := a.client.UploadFile(ctx, upload.UploadURL, contentType, f); err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(upload)
		}
		fmt.Printf("Uploaded %s as media %s\n", filepath.Base(path), upload.MediaID)
		return nil
	}),
}

func init() {
	uploadCmd.Flags().StringVar(&uploadContentType, "content-type", "", "override the detected content type")

	rootCmd.AddCommand(sessionsCmd, sessionCmd, storageCmd, uploadCmd)
}
