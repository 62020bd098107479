package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/clientcli"
)

var (
	version = "dev"

	cfgFile    string
	profile    string
	server     string
	token      string
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:     "folio-cli",
	Version: version,
	Short:   "Admin client for a folio gallery server",
	Long: `folio-cli manages photos on a folio gallery server over its HTTP API.

Authenticate with a session token issued by 'folio token <identity>' on the
server host. The identity must hold the admin role for upload, delete and
feature. Connection settings resolve in this order, later wins:
  1. profile from the config file (~/.folio/config.yaml)
  2. FOLIO_SERVER / FOLIO_TOKEN
  3. --server / --token`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "client config file (default: ~/.folio/config.yaml, env: FOLIO_CLIENT_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile name (env: FOLIO_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&server, "server", "s", "", "server URL (default: http://localhost:5708, env: FOLIO_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "session token (env: FOLIO_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(featureCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges the selected profile, env vars and flags.
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	name := profile
	if name == "" {
		name = clientcli.ProfileFromEnv()
	}

	configPath := getConfigPath()
	if configPath != "" {
		file, err := clientcli.LoadConfigFile(configPath)
		switch {
		case err == nil:
			p, profileErr := file.GetProfile(name)
			if profileErr != nil && (name != "" || !errors.Is(profileErr, clientcli.ErrNoProfiles)) {
				return nil, profileErr
			}
			configs = append(configs, clientcli.ConfigFromProfile(p))
		case name != "" || cfgFile != "":
			// A missing file only matters when the user asked for it.
			return nil, err
		}
	}

	configs = append(configs,
		clientcli.ConfigFromEnv(),
		&clientcli.Config{Server: server, Token: token},
	)

	return clientcli.MergeConfig(configs...), nil
}

func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient builds a client; admin commands pass requireToken.
func getClient(requireToken bool) (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	if requireToken {
		if err := cfg.ValidateWithAuth(); err != nil {
			return nil, err
		}
	}

	return clientcli.New(cfg)
}

// reportError prints err through the formatter and returns it for cobra.
func reportError(err error) error {
	_ = getFormatter().FormatError(os.Stderr, err)
	return err
}

// exitError exits non-zero without cobra printing a message; the formatter
// already reported the per-item failures.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}
