package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yaknet/monkeysync/internal/counterparty"
	"github.com/yaknet/monkeysync/internal/directory"
	"github.com/yaknet/monkeysync/internal/id"
	"github.com/yaknet/monkeysync/internal/model"
	"github.com/yaknet/monkeysync/internal/stripe"
)

type entityOptions struct {
	api   string
	token string
}

func newEntityCommand(a *app) *cobra.Command {
	var opts entityOptions

	entityCmd := &cobra.Command{
		Use:   "entity",
		Short: "Manage MonkeyPod entities",
		Long: `Manage MonkeyPod entities.

Recognized environment variables:
  MONKEYPOD_API="https://[institution].monkeypod.io/api/v2"
  MONKEYPOD_TOKEN="..."`,
	}
	entityCmd.PersistentFlags().StringVarP(&opts.api, "api", "a", "", "URL in form https://[institution].monkeypod.io/api/v2")
	entityCmd.PersistentFlags().StringVarP(&opts.token, "token", "t", "", "authorization token")

	entityCmd.AddCommand(newEntityCreateCommand(a, &opts))
	entityCmd.AddCommand(newEntityMatchCommand(a, &opts))
	entityCmd.AddCommand(newEntityDeleteCommand(a, &opts))
	entityCmd.AddCommand(newEntityImportCommand(a, &opts))
	return entityCmd
}

// client builds a directory client; flags win over secrets.
func (o *entityOptions) client(a *app) (*directory.Client, error) {
	s, err := a.secrets()
	if err != nil {
		return nil, err
	}
	if o.api != "" {
		s.MonkeyPodAPI = o.api
	}
	if o.token != "" {
		s.MonkeyPodToken = o.token
	}
	return a.directoryClient(s)
}

func newEntityCreateCommand(a *app, opts *entityOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an entity from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading entity file: %w", err)
			}
			var e model.Entity
			if err := yaml.Unmarshal(data, &e); err != nil {
				return fmt.Errorf("parsing entity file: %w", err)
			}

			client, err := opts.client(a)
			if err != nil {
				return err
			}
			created, err := client.Create(cmd.Context(), e)
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), created)
		},
	}

	cmd.Flags().StringVarP(&file, "yaml-filename", "f", "", "entity YAML file (required)")
	_ = cmd.MarkFlagRequired("yaml-filename")
	return cmd
}

func newEntityMatchCommand(a *app, opts *entityOptions) *cobra.Command {
	var q model.MatchQuery

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Search for matching entities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if q.Empty() {
				return errors.New("at least one of --id, --name, --email or --metadata is required")
			}
			client, err := opts.client(a)
			if err != nil {
				return err
			}
			entities, err := client.Match(cmd.Context(), q)
			if err != nil {
				return err
			}
			if entities == nil {
				entities = []model.Entity{}
			}
			return writeYAML(cmd.OutOrStdout(), entities)
		},
	}

	cmd.Flags().StringVarP(&q.ID, "id", "i", "", "entity id")
	cmd.Flags().StringVarP(&q.Name, "name", "n", "", "entity name")
	cmd.Flags().StringVarP(&q.Email, "email", "e", "", "entity email")
	cmd.Flags().StringVarP(&q.Metadata, "metadata", "m", "", "extra attribute value")
	return cmd
}

func newEntityDeleteCommand(a *app, opts *entityOptions) *cobra.Command {
	var req directory.DeleteRequest

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an entity by id or matching email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := req.Validate(); err != nil {
				return err
			}
			client, err := opts.client(a)
			if err != nil {
				return err
			}
			if err := client.Delete(cmd.Context(), req); err != nil {
				return err
			}
			target := req.ID
			if target == "" {
				target = req.Email
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.ID, "id", "i", "", "entity id")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "entity email")
	return cmd
}

func newEntityImportCommand(a *app, opts *entityOptions) *cobra.Command {
	var window string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create entities for Stripe customers missing from MonkeyPod",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if window == "" {
				window = a.cfg.Stripe.Window
			}
			w, err := stripe.ParseWindow(window, now)
			if err != nil {
				return err
			}

			s, err := a.secrets()
			if err != nil {
				return err
			}
			customers, err := a.stripeClient(s)
			if err != nil {
				return err
			}
			client, err := opts.client(a)
			if err != nil {
				return err
			}

			im := &counterparty.Importer{
				Extractor: counterparty.Customer,
				Dedup:     counterparty.NewDeduplicator(client),
				Creator:   client,
				Source:    a.cfg.Directory.Source,
				Tag:       id.FormatBatchTag(now),
				Log:       a.log,
			}
			added, err := im.Import(cmd.Context(), customers.Customers(cmd.Context(), w))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d entities\n", added)
			return nil
		},
	}

	cmd.Flags().StringVarP(&window, "window", "w", "", `customer creation window "start:end" (default from config)`)
	return cmd
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return enc.Close()
}
