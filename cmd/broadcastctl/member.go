package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/notifyhub/announcements/internal/app"
	"github.com/notifyhub/announcements/internal/directory"
	"github.com/notifyhub/announcements/internal/domain"
)

func memberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage the member directory",
	}
	cmd.AddCommand(memberAddCmd())
	cmd.AddCommand(memberCountCmd())
	return cmd
}

func memberAddCmd() *cobra.Command {
	var (
		segment string
		id      string
		r       domain.Recipient
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a member to a segment (postgres and redis backends)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if r.Email == "" && r.Phone == "" {
				return errors.New("at least one of --email or --phone is required")
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				switch d := a.Directory.(type) {
				case *directory.Postgres:
					if err := d.Add(ctx, segment, r); err != nil {
						return err
					}
				case *directory.Redis:
					if id == "" {
						id = uuid.NewString()
					}
					if err := d.Add(ctx, segment, id, r); err != nil {
						return err
					}
				default:
					return fmt.Errorf("directory backend %T is read-only", a.Directory)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added member to segment %q\n", segment)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&segment, "segment", "s", directory.AllSegment, "segment to join")
	cmd.Flags().StringVar(&id, "id", "", "member id (redis backend, generated when empty)")
	cmd.Flags().StringVar(&r.Email, "email", "", "member email")
	cmd.Flags().StringVar(&r.Phone, "phone", "", "member phone")
	return cmd
}

func memberCountCmd() *cobra.Command {
	var segment string

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Print the number of members in a segment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				counter, ok := a.Directory.(directory.Counter)
				if !ok {
					return fmt.Errorf("directory backend %T cannot count", a.Directory)
				}
				n, err := counter.Count(ctx, domain.Audience{Segment: segment})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&segment, "segment", "s", directory.AllSegment, "segment to count")
	return cmd
}
