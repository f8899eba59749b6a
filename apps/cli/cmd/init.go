package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitcore/packages/core/config"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Create a starter hitcore config",
	Long: `Initialize hitcore in the current directory, or in the given one.

This creates:
  - .hitcore.yaml   - Client defaults (timeouts, headers, variables)
  - .env            - Variables for {{name}} and ${NAME} interpolation

Examples:
  hitcore init
  hitcore init ./api --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

func initCommand(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	configFile := filepath.Join(dir, config.ConfigFilenames[0])
	envFile := filepath.Join(dir, ".env")

	if !forceInit {
		for _, f := range []string{configFile, envFile} {
			if _, err := os.Stat(f); err == nil {
				return &usageError{err: fmt.Errorf("file already exists: %s (use --force to overwrite)", f)}
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.EnvFile = ".env"
	cfg.Headers = map[string]string{
		"User-Agent": "hitcore/" + version,
	}
	cfg.Variables = map[string]string{
		"baseUrl": "http://localhost:3000",
	}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	envContent := `# Values here are available as {{NAME}} and ${NAME}.
API_TOKEN=change-me

# Multi-line values use triple quotes.
SAMPLE_BODY="""
{"name": "hitcore"}
"""
`
	if err := os.WriteFile(envFile, []byte(envContent), 0600); err != nil {
		return fmt.Errorf("failed to create env file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", envFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nhitcore initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Try 'hitcore request GET {{baseUrl}}/health -H \"Authorization: Bearer {{API_TOKEN}}\"'.\n")

	return nil
}
