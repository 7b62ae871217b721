package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"kb-assistant-be/internal/config"
	"kb-assistant-be/pkg/events"
	pktNats "kb-assistant-be/pkg/nats"

	"github.com/spf13/cobra"
)

var eventsSubject string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Tail assistant events from NATS",
	RunE:  runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&eventsSubject, "subject", pktNats.SubjectPrefix+">", "subject filter")
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.App.NatsURL == "" {
		return fmt.Errorf("NATS_URL is not set")
	}

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		return err
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	stopConsume, err := sub.Subscribe(ctx, eventsSubject, "", func(_ context.Context, e events.Event) error {
		payload, _ := json.Marshal(e.Payload())
		titleColor.Printf("%s ", e.Timestamp().Format("15:04:05"))
		okColor.Printf("%-24s ", e.EventType())
		fmt.Println(string(payload))
		return nil
	})
	if err != nil {
		return err
	}
	defer stopConsume()

	dimColor.Printf("listening on %s (Ctrl-C to stop)\n", eventsSubject)
	<-ctx.Done()
	return nil
}
