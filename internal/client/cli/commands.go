package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/drivemirror/internal/client/config"
	"github.com/dmitrijs2005/drivemirror/internal/client/driveapi"
	"github.com/dmitrijs2005/drivemirror/internal/client/events"
	"github.com/dmitrijs2005/drivemirror/internal/client/models"
	"github.com/dmitrijs2005/drivemirror/internal/client/repositories/cursors"
	"github.com/dmitrijs2005/drivemirror/internal/client/secrets"
	"github.com/dmitrijs2005/drivemirror/internal/cryptox"
)

var ErrNoDrives = errors.New("no drives configured")

func (a *App) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Sync every configured drive once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			drives := a.targets()
			if len(drives) == 0 {
				return ErrNoDrives
			}
			if err := a.unlock(out); err != nil {
				return err
			}

			results, err := a.syncService.SyncAll(ctx, drives)
			for _, r := range results {
				if r == nil {
					continue
				}
				fmt.Fprintf(out, "%s: %d records in %d pages", r.DriveID, r.Records, r.Pages)
				if r.DecryptFailures > 0 {
					fmt.Fprintf(out, ", %d not decrypted", r.DecryptFailures)
				}
				fmt.Fprintln(out)
			}
			return err
		},
	}
}

func (a *App) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show index counts and the saved cursor per drive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printStatus(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (a *App) printStatus(ctx context.Context, out io.Writer) error {
	total, err := a.store.CountAll(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "files: %d\n", total)

	for _, st := range []models.FileState{models.FileStateActive, models.FileStateDraft, models.FileStateDeleted} {
		n, err := a.store.CountByState(ctx, st)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s: %d\n", st, n)
	}

	for _, d := range a.config.Drives {
		name := driveName(d)
		c, err := a.store.LoadCursor(ctx, cursors.StreamKey(d.IdentityID, d.DriveID))
		if err != nil {
			return fmt.Errorf("drive %s: %w", name, err)
		}
		if c == nil || c.IsEmpty() {
			fmt.Fprintf(out, "drive %s: not synced\n", name)
			continue
		}
		if c.LatestModified == 0 {
			fmt.Fprintf(out, "drive %s: synced\n", name)
			continue
		}
		fmt.Fprintf(out, "drive %s: synced up to %s\n", name,
			time.UnixMilli(c.LatestModified).UTC().Format(time.RFC3339))
	}
	return nil
}

func driveName(d config.Drive) string {
	return d.IdentityID + "/" + d.DriveID
}

func (a *App) cursorResetCmd() *cobra.Command {
	var drive, identity string
	var all bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget a drive's cursor so the next sync starts over",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if !all && drive == "" {
				return errors.New("either --drive or --all is required")
			}

			var matched []config.Drive
			for _, d := range a.config.Drives {
				if !all && d.DriveID != drive {
					continue
				}
				if identity != "" && d.IdentityID != identity {
					continue
				}
				matched = append(matched, d)
			}
			if len(matched) == 0 && drive != "" && identity != "" {
				matched = []config.Drive{{IdentityID: identity, DriveID: drive}}
			}
			if len(matched) == 0 {
				return ErrNoDrives
			}

			for _, d := range matched {
				if err := a.syncService.ResetCursor(ctx, d.IdentityID, d.DriveID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "drive %s: cursor reset\n", driveName(d))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&drive, "drive", "", "drive id to reset")
	cmd.Flags().StringVar(&identity, "identity", "", "limit the reset to one identity")
	cmd.Flags().BoolVar(&all, "all", false, "reset every configured drive")
	return cmd
}

func (a *App) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Save the bearer token and shared secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if err := a.unlock(out); err != nil {
				return err
			}

			token, err := GetSimpleText(a.reader, "-Enter access token", out)
			if err != nil {
				return err
			}
			if err := driveapi.CheckToken(token, time.Now()); err != nil {
				return err
			}

			encoded, err := GetSimpleText(a.reader, "-Enter shared secret (base64, empty to skip)", out)
			if err != nil {
				return err
			}

			var secret []byte
			if encoded != "" {
				if secret, err = base64.StdEncoding.DecodeString(encoded); err != nil {
					return fmt.Errorf("shared secret: %w", err)
				}
				defer cryptox.Wipe(secret)
			}

			if err := a.secrets.Put(secrets.KeyAccessToken, []byte(token)); err != nil {
				return err
			}
			if secret != nil {
				if err := a.secrets.Put(secrets.KeySharedSecret, secret); err != nil {
					return err
				}
			}

			fmt.Fprintln(out, "Login saved")
			return nil
		},
	}
}

func (a *App) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Sync periodically and print events until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			drives := a.targets()
			if len(drives) == 0 {
				return ErrNoDrives
			}
			if err := a.unlock(out); err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			ch, unsubscribe := a.bus.Subscribe(ctx)
			defer unsubscribe()

			printed := make(chan struct{})
			go func() {
				defer close(printed)
				for ev := range ch {
					fmt.Fprintln(out, events.Describe(ev))
				}
			}()

			var g errgroup.Group
			g.Go(func() error {
				a.connectivity.Run(ctx)
				return nil
			})
			g.Go(func() error {
				a.syncService.Watch(ctx, drives, a.config.SyncInterval)
				return nil
			})
			_ = g.Wait()

			unsubscribe()
			<-printed
			return nil
		},
	}
}
