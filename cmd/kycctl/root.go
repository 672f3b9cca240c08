package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"kycgate/internal/kycclient"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

type rootOptions struct {
	server  string
	token   string
	output  string
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "kycctl",
		Short:         "Command line client for the kycgate verification service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load %s: %w", opts.envFile, err)
			}
			if !cmd.Flags().Changed("server") {
				if v := os.Getenv("KYC_SERVER"); v != "" {
					opts.server = v
				}
			}
			if !cmd.Flags().Changed("token") {
				opts.token = os.Getenv("KYC_TOKEN")
			}
			switch opts.output {
			case outputTable, outputJSON, outputYAML:
				return nil
			default:
				return fmt.Errorf("--output must be one of table, json, yaml")
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.server, "server", "http://localhost:8080", "server base URL (env KYC_SERVER)")
	flags.StringVar(&opts.token, "token", "", "bearer token (env KYC_TOKEN)")
	flags.StringVarP(&opts.output, "output", "o", outputTable, "output format: table, json or yaml")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	cmd.AddCommand(
		newVerifyCmd(opts),
		newHealthCmd(opts),
		newTokenCmd(opts),
		newAuditCmd(opts),
	)
	return cmd
}

func (o *rootOptions) client() *kycclient.Client {
	return kycclient.New(o.server, kycclient.WithToken(o.token))
}

// encode writes v as JSON or YAML. Table output is handled per command.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case outputYAML:
		// Round-trip through JSON so field names follow the API's json tags.
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out, err := yaml.JSONToYAML(data)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}
