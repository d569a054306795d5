package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/events"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:     "events <project>",
	Short:   "List the recent audit events of a project",
	GroupID: "system",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		evts, err := planningClient.ListEvents(context.Background(), args[0], limit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), evts)
		}
		printEvents(cmd.OutOrStdout(), evts)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:     "watch <project>",
	Short:   "Follow the audit events of a project",
	GroupID: "system",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID := args[0]
		interval, _ := cmd.Flags().GetDuration("interval")
		limit, _ := cmd.Flags().GetInt("limit")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		w := &eventWatcher{projectID: projectID, limit: limit}
		if err := w.queryAndPrint(ctx); err != nil {
			return err
		}

		natsURL, _ := cmd.Flags().GetString("nats")
		if natsURL != "" {
			return w.watchNATS(ctx, natsURL)
		}
		return w.watchPoll(ctx, interval)
	},
}

// eventWatcher prints the events of one project that it has not printed yet.
type eventWatcher struct {
	projectID string
	limit     int
	lastID    int64
}

// watchNATS re-queries on every bus message (debounced) and after a
// reconnect, so events missed while disconnected are still printed.
func (w *eventWatcher) watchNATS(ctx context.Context, natsURL string) error {
	reconnectCh := make(chan struct{}, 1)

	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats: disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats: reconnected")
			select {
			case reconnectCh <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.SubscribeProject(events.TopicAll, w.projectID)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	debounce := time.NewTimer(0)
	debounce.Stop()
	select {
	case <-debounce.C:
	default:
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			debounce.Reset(200 * time.Millisecond)
		case <-reconnectCh:
			debounce.Reset(0)
		case <-debounce.C:
			if err := w.queryAndPrint(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *eventWatcher) watchPoll(ctx context.Context, interval time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
		if err := w.queryAndPrint(ctx); err != nil {
			return err
		}
	}
}

func (w *eventWatcher) queryAndPrint(ctx context.Context) error {
	evts, err := planningClient.ListEvents(ctx, w.projectID, w.limit)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	fresh := w.diff(evts)
	if len(fresh) == 0 {
		return nil
	}
	if jsonOutput {
		for _, e := range fresh {
			if err := printJSON(os.Stdout, e); err != nil {
				return err
			}
		}
		return nil
	}
	printEvents(os.Stdout, fresh)
	return nil
}

// diff returns the events newer than the last one seen, oldest first, and
// advances lastID.
func (w *eventWatcher) diff(evts []*model.Event) []*model.Event {
	var fresh []*model.Event
	for _, e := range evts {
		if e.ID > w.lastID {
			fresh = append(fresh, e)
		}
	}
	sort.Slice(fresh, func(i, j int) bool { return fresh[i].ID < fresh[j].ID })
	if n := len(fresh); n > 0 {
		w.lastID = fresh[n-1].ID
	}
	return fresh
}

func defaultNATSURL() string {
	if s := os.Getenv("GESTOR_NATS_URL"); s != "" {
		return s
	}
	return activeRemoteNATSURL()
}

func init() {
	eventsCmd.Flags().Int("limit", 50, "maximum number of events")

	watchCmd.Flags().Int("limit", 100, "events fetched per query")
	watchCmd.Flags().Duration("interval", 5*time.Second, "poll interval when NATS is not configured")
	watchCmd.Flags().String("nats", defaultNATSURL(), "NATS URL for push notifications")
}
