package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the Helpline configuration file",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "helpline.yaml", "path to Helpline config file")

	cmd.AddCommand(&cobra.Command{
		Use:   "set-key",
		Short: "Store the ACS access key in the config file",
		Long:  "Prompts for the Azure Communication Services access key without echoing it and writes it into the config file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetKey(cmd, configPath)
		},
	})

	return cmd
}

func runSetKey(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	fmt.Fprint(out, "ACS access key: ")
	keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("read access key: %w", err)
	}
	key := strings.TrimSpace(string(keyBytes))
	if key == "" {
		return fmt.Errorf("access key is empty")
	}

	// Rewrite only the one key, keeping the rest of the file as-is.
	doc := map[string]any{}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", configPath, err)
	}

	acs, _ := doc["acs"].(map[string]any)
	if acs == nil {
		acs = map[string]any{}
	}
	acs["access_key"] = key
	doc["acs"] = acs

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", configPath, err)
	}
	fmt.Fprintf(out, "Access key saved to %s\n", configPath)
	return nil
}
