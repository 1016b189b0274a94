// Package commands implements portfolioctl, the admin command line for the
// portfolio API.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devfolio/portfolio-backend/internal/client"
	"github.com/devfolio/portfolio-backend/internal/logging"
)

var (
	apiURL      string
	sessionPath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "portfolioctl",
	Short: "Administer a portfolio backend",
	Long: `portfolioctl signs in as the portfolio admin, keeps the session fresh and
reads contact submissions. The seed command talks to the database directly.`,
	SilenceUsage: true,
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("PORTFOLIO_API_URL", "http://localhost:8080"), "base URL of the portfolio API")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session-file", "", "where the session is saved (default: user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log HTTP and refresh activity")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(contactsCmd)
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := logging.New("debug", "development")
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func tokenFile() (client.TokenFile, error) {
	if sessionPath != "" {
		return client.TokenFile{Path: sessionPath}, nil
	}
	return client.DefaultTokenFile()
}

// restore loads the saved session into a new API client.
func restore() (*client.Client, *client.State, client.TokenFile, error) {
	tf, err := tokenFile()
	if err != nil {
		return nil, nil, tf, err
	}
	state, err := tf.Load()
	if err != nil {
		if errors.Is(err, client.ErrNoSession) {
			return nil, nil, tf, fmt.Errorf("not logged in, run portfolioctl login first")
		}
		return nil, nil, tf, err
	}

	base := state.BaseURL
	if rootCmd.PersistentFlags().Changed("api") {
		base = apiURL
	}
	c, err := client.New(base, newLogger())
	if err != nil {
		return nil, nil, tf, err
	}
	c.SetAuthCookie(state.Token, time.Until(state.ExpiresAt))
	return c, state, tf, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
