package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ErlanBelekov/portfolio/internal/client"
	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/session"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultServerURL = "http://localhost:8080"

var (
	cfgFile    string
	jsonOutput bool
	verbose    bool
)

// Execute creates the root command tree and runs it.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "portfolioctl",
		Short:   "Administer the portfolio site",
		Long:    "portfolioctl signs in to the portfolio server and manages invite codes and contact messages.",
		Version: version,

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.portfolioctl.yaml)")
	cmd.PersistentFlags().String("server", defaultServerURL, "portfolio server base URL")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests and session changes")
	viper.BindPFlag("server", cmd.PersistentFlags().Lookup("server"))

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newSignupCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newResetPasswordCmd())
	cmd.AddCommand(newInvitesCmd())
	cmd.AddCommand(newMessagesCmd())

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".portfolioctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("PORTFOLIO")
	viper.AutomaticEnv()
	viper.ReadInConfig() // Ignore error - config file is optional
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

func newClient() *client.Client {
	return client.New(viper.GetString("server"), nil, &viperStore{}, newLogger())
}

// startResolver loads the stored session and resolves the admin role.
func startResolver(ctx context.Context, c *client.Client) (*session.Resolver, error) {
	r := session.NewResolver(c, newLogger())
	if err := r.Start(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

// Describe renders err for a person at a terminal.
func Describe(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		keys := make([]string, 0, len(ve.Fields))
		for k := range ve.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var b strings.Builder
		b.WriteString("Error: invalid input")
		for _, k := range keys {
			fmt.Fprintf(&b, "\n  %s: %s", k, ve.Fields[k])
		}
		return b.String()
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return "Error: " + apiErr.Message
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		return "Error: not signed in, run 'portfolioctl login'"
	}
	return "Error: " + err.Error()
}
