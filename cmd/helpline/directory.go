package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zulandar/helpline/internal/directory"
	"github.com/zulandar/helpline/internal/ivr"
)

func newDirectoryCmd() *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "directory",
		Short: "Inspect the employee directory",
	}
	cmd.PersistentFlags().StringVarP(&csvPath, "file", "f", "employees.csv", "path to the employee directory CSV")

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Parse the directory CSV and report row count",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := directory.LoadCSV(csvPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d employees, no errors\n", csvPath, dir.Len())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "lookup <employee-id>",
		Short: "Look up one employee the way the dialog does",
		Long:  "Normalizes the argument as a spoken identifier and resolves it against the directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := directory.LoadCSV(csvPath)
			if err != nil {
				return err
			}
			id := ivr.NormalizeIdentifier(args[0])
			emp, err := dir.ByID(id)
			if err != nil {
				return fmt.Errorf("lookup %q: %w", id, err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:    %s\n", emp.ID)
			fmt.Fprintf(out, "Name:  %s\n", emp.DisplayName)
			fmt.Fprintf(out, "Phone: %s\n", emp.Phone)
			fmt.Fprintf(out, "Email: %s\n", emp.Email)
			return nil
		},
	})

	return cmd
}
