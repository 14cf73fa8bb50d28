package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/notifyhub/announcements/internal/app"
	"github.com/notifyhub/announcements/internal/domain"
)

type broadcastFlags struct {
	message  string
	channels []string
	segment  string
}

func (f *broadcastFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.message, "message", "m", "", "announcement text")
	cmd.Flags().StringSliceVarP(&f.channels, "channel", "c", []string{string(domain.ChannelEmail)}, "delivery channels (EMAIL, SMS)")
	cmd.Flags().StringVarP(&f.segment, "segment", "s", "all", "audience segment")
}

func (f *broadcastFlags) request(dryRun bool) domain.BroadcastRequest {
	channels := make([]domain.Channel, 0, len(f.channels))
	for _, c := range f.channels {
		channels = append(channels, domain.Channel(c))
	}
	return domain.BroadcastRequest{
		Message:  f.message,
		Channels: channels,
		Audience: domain.Audience{Segment: f.segment},
		DryRun:   dryRun,
	}
}

func sendCmd() *cobra.Command {
	var f broadcastFlags

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Broadcast an announcement and print the totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Service.Broadcast(ctx, f.request(false))
				if err != nil {
					return err
				}
				if res.Totals == nil {
					return errors.New("broadcast returned no totals")
				}
				return printJSON(cmd.OutOrStdout(), res.Totals)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func previewCmd() *cobra.Command {
	var f broadcastFlags

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Count the audience and print a sample without sending",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Service.Broadcast(ctx, f.request(true))
				if err != nil {
					return err
				}
				if res.Preview == nil {
					return errors.New("broadcast returned no preview")
				}
				return printJSON(cmd.OutOrStdout(), res.Preview)
			})
		},
	}
	f.register(cmd)
	return cmd
}
