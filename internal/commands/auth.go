package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/charmbracelet/x/term"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/devfolio/portfolio-backend/internal/client"
)

const (
	providerLocal    = "local"
	providerFirebase = "firebase"
)

var (
	loginProvider string
	loginUser     string
	webAPIKey     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in as the portfolio admin",
	Long: `Sign in with the local admin account or a Firebase email/password user and
save the session for later commands. The password is read from
PORTFOLIO_PASSWORD when set, otherwise from the terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tf, err := tokenFile()
		if err != nil {
			return err
		}
		c, err := client.New(apiURL, newLogger())
		if err != nil {
			return err
		}

		user := loginUser
		if user == "" {
			label := "Username"
			if loginProvider == providerFirebase {
				label = "Email"
			}
			if user, err = prompt(label); err != nil {
				return err
			}
		}
		password, err := readPassword()
		if err != nil {
			return err
		}

		state := client.State{BaseURL: apiURL, Provider: loginProvider}
		switch loginProvider {
		case providerLocal:
			sess, err := c.LoginLocal(ctx, user, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			state.Email, state.Token, state.ExpiresAt = sess.Email, sess.Token, sess.ExpiresAt

		case providerFirebase:
			if webAPIKey == "" {
				return fmt.Errorf("--api-key or FIREBASE_WEB_API_KEY is required for firebase sign-in")
			}
			fa := client.NewFirebaseAuth(webAPIKey, nil)
			sess, err := c.LoginFirebase(ctx, fa, user, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			state.Email, state.Token, state.ExpiresAt = sess.Email, sess.Token, sess.ExpiresAt
			state.RefreshToken = fa.RefreshToken()

		default:
			return fmt.Errorf("unknown provider %q (want %s or %s)", loginProvider, providerLocal, providerFirebase)
		}

		if err := tf.Save(state); err != nil {
			return fmt.Errorf("error saving session: %w", err)
		}
		color.Green("Logged in as %s", state.Email)
		fmt.Printf("Session expires %s\n", state.ExpiresAt.Local().Format("Jan 2, 2006, 3:04 PM"))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke and forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, tf, err := restore()
		if err != nil {
			return err
		}

		// the local copy goes even when the server call fails
		logoutErr := c.Logout(cmd.Context())
		if err := tf.Remove(); err != nil {
			return err
		}
		if logoutErr != nil {
			color.Yellow("Session removed locally, server sign-out failed: %v", logoutErr)
			return nil
		}
		fmt.Println("Successfully logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity of the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, state, _, err := restore()
		if err != nil {
			return err
		}
		me, err := c.Me(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Email:    %s\n", me.Email)
		fmt.Printf("UID:      %s\n", me.UID)
		fmt.Printf("Provider: %s\n", state.Provider)
		if me.Admin {
			color.Green("Admin:    yes")
		} else {
			color.Red("Admin:    no")
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginProvider, "provider", providerLocal, "identity provider: local or firebase")
	loginCmd.Flags().StringVarP(&loginUser, "user", "u", "", "username (local) or email (firebase)")
	loginCmd.Flags().StringVar(&webAPIKey, "api-key", os.Getenv("FIREBASE_WEB_API_KEY"), "Firebase web API key")
}

func prompt(label string) (string, error) {
	fmt.Printf("%s: ", label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("error reading %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func readPassword() (string, error) {
	if pw := os.Getenv("PORTFOLIO_PASSWORD"); pw != "" {
		return pw, nil
	}
	fmt.Print("Password: ")
	pw, err := term.ReadPassword(uintptr(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("error reading password: %w", err)
	}
	return string(pw), nil
}
