package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zulandar/helpline/internal/config"
	"github.com/zulandar/helpline/internal/directory"
	"github.com/zulandar/helpline/internal/ivr"
	"github.com/zulandar/helpline/internal/notify"
	"github.com/zulandar/helpline/internal/store"
	"github.com/zulandar/helpline/internal/telephony"
	"github.com/zulandar/helpline/internal/webhook"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the call handling service",
		Long:  "Starts the webhook server, dialog engine, ticket dispatcher, and background schedules.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "helpline.yaml", "path to Helpline config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	dir, err := directory.LoadCSV(cfg.Directory.CSVPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded %d employees from %s\n", dir.Len(), cfg.Directory.CSVPath)

	db, err := store.Connect(cfg.DB)
	if err != nil {
		return err
	}
	if err := store.Migrate(db); err != nil {
		return err
	}
	st := store.New(db)

	gateway, err := telephony.NewClient(telephony.Opts{
		Endpoint:          cfg.ACS.Endpoint,
		AccessKey:         cfg.ACS.AccessKey,
		CallbackURI:       cfg.CallbackURI(),
		CognitiveEndpoint: cfg.ACS.CognitiveEndpoint,
		Voice:             cfg.Voice,
		SourceNumber:      cfg.ACS.PhoneNumber,
	})
	if err != nil {
		return err
	}

	mailer, err := notify.NewEmailSender(notify.EmailOpts{
		Endpoint:  cfg.ACS.Endpoint,
		AccessKey: cfg.ACS.AccessKey,
		Sender:    cfg.Email.Sender,
	})
	if err != nil {
		return err
	}

	sinks, err := buildSinks(cfg, out)
	if err != nil {
		return err
	}

	dispatcher, err := notify.NewDispatcher(notify.DispatcherOpts{
		Mailer:    mailer,
		Recipient: cfg.Email.Recipient,
		Store:     st,
		Sinks:     sinks,
	})
	if err != nil {
		return err
	}

	engine, err := ivr.NewEngine(ivr.EngineOpts{
		Directory:   dir,
		Gateway:     gateway,
		Dispatcher:  dispatcher,
		Recorder:    st,
		MaxRetries:  cfg.Retry.MaxAttempts,
		AgentNumber: cfg.ACS.AgentNumber,
		Out:         out,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(out, "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	// Stale-session sweeper.
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := engine.SweepIdle(ctx, cfg.IdleTimeout()); n > 0 {
					fmt.Fprintf(out, "Swept %d idle call session(s)\n", n)
				}
			}
		}
	}()

	if len(sinks) > 0 {
		digest, err := notify.NewDigest(st, sinks, cfg.Digest.Cron)
		if err != nil {
			return err
		}
		digest.Start()
		defer digest.Stop()
	}

	// Outbound dialing needs a caller ID number; without one the endpoint
	// reports itself unconfigured.
	var caller webhook.Caller
	if cfg.ACS.PhoneNumber != "" {
		caller = gateway
	}

	return webhook.Start(ctx, webhook.StartOpts{
		Engine:   engine,
		Answerer: gateway,
		Caller:   caller,
		Tickets:  &storeTickets{st: st},
		Port:     cfg.ListenPort,
		Out:      out,
	})
}

// buildSinks creates the configured side channels.
func buildSinks(cfg *config.Config, out io.Writer) ([]notify.Sink, error) {
	var sinks []notify.Sink
	if cfg.Slack.BotToken != "" {
		sink, err := notify.NewSlackSink(cfg.Slack.BotToken, cfg.Slack.ChannelID)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
		fmt.Fprintf(out, "Slack announcements enabled for channel %s\n", cfg.Slack.ChannelID)
	}
	if cfg.Discord.BotToken != "" {
		sink, err := notify.NewDiscordSink(cfg.Discord.BotToken, cfg.Discord.ChannelID)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
		fmt.Fprintf(out, "Discord announcements enabled for channel %s\n", cfg.Discord.ChannelID)
	}
	return sinks, nil
}

// storeTickets adapts the ticket store to the webhook read API.
type storeTickets struct {
	st *store.Store
}

func (s *storeTickets) RecentTickets(limit int) ([]webhook.TicketView, error) {
	rows, err := s.st.RecentTickets(limit)
	if err != nil {
		return nil, err
	}
	views := make([]webhook.TicketView, 0, len(rows))
	for _, r := range rows {
		views = append(views, webhook.TicketView{
			ID:         r.ID,
			EmployeeID: r.EmployeeID,
			Name:       r.Name,
			Urgency:    r.Urgency,
			Status:     r.Status,
			Issue:      r.Issue,
			FiledAt:    r.FiledAt.Format(time.RFC3339),
		})
	}
	return views, nil
}
