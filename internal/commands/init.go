package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaknet/monkeysync/internal/config"
	"github.com/yaknet/monkeysync/internal/fieldspec"
	"github.com/yaknet/monkeysync/internal/gitops"
	"github.com/yaknet/monkeysync/internal/importer"
)

func newInitCommand() *cobra.Command {
	var name string
	var git bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new MonkeySync project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, name, git)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "organization name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().BoolVar(&git, "git", true, "initialize a git repository and commit the project")

	return cmd
}

func runInit(out io.Writer, dir, name string, git bool) error {
	cfg := config.Default(name)

	dirs := []string{
		"logs",
		importer.ImportDir,
		filepath.Join(importer.ImportDir, "processed"),
		cfg.Import.OutputDir,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	configPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}
	if err := config.Save(configPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, cfg.Import.FieldSpecs), fieldspec.DefaultYAML(), 0o644); err != nil {
		return fmt.Errorf("writing field specs: %w", err)
	}

	gitignore := ".env\n*.db\n" + filepath.ToSlash(filepath.Join(importer.ImportDir, "processed")) + "/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, importer.ImportDir, ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if !git {
		fmt.Fprintf(out, "Initialized MonkeySync project at %s\n", dir)
		return nil
	}

	if err := gitops.Init(dir); err != nil {
		return err
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.Commit(dir, "init: Initialize "+name, author)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized MonkeySync project at %s (%s)\n", dir, hash)
	return nil
}
