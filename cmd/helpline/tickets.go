package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zulandar/helpline/internal/config"
	"github.com/zulandar/helpline/internal/store"
)

func newTicketsCmd() *cobra.Command {
	var (
		configPath string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "List recently filed tickets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			db, err := store.Connect(cfg.DB)
			if err != nil {
				return err
			}
			rows, err := store.New(db).RecentTickets(limit)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tickets.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tFILED\tEMPLOYEE\tNAME\tURGENCY\tSTATUS\tISSUE")
			for _, t := range rows {
				issue := t.Issue
				if len(issue) > 60 {
					issue = issue[:57] + "..."
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.FiledAt.Format("2006-01-02 15:04"),
					t.EmployeeID, t.Name, t.Urgency, t.Status, issue)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "helpline.yaml", "path to Helpline config file")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max tickets to list")
	return cmd
}
