package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/devfolio/portfolio-backend/internal/client"
	"github.com/devfolio/portfolio-backend/internal/session"
)

var (
	watch        bool
	pollEvery    time.Duration
	refreshEvery time.Duration
	tokenTTL     time.Duration
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List contact form submissions",
	Long: `List contact form submissions, newest first. With --watch the command keeps
polling for new submissions and refreshes the session token on a schedule
until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, state, tf, err := restore()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		list, err := c.Contacts(ctx)
		if err != nil {
			return err
		}
		printContacts(list)
		if !watch {
			return nil
		}

		provider, err := refreshProvider(c, state)
		if err != nil {
			return err
		}
		var mu sync.Mutex
		cancel, err := c.KeepFresh(ctx, session.NewIdentity(provider, session.DefaultEarlyExpiry), refreshEvery, tokenTTL, func(token string) {
			mu.Lock()
			defer mu.Unlock()
			state.Token = token
			state.ExpiresAt = time.Now().Add(tokenTTL)
			if fa, ok := provider.(*client.FirebaseAuth); ok {
				state.RefreshToken = fa.RefreshToken()
			}
			if err := tf.Save(*state); err != nil {
				color.Yellow("could not save refreshed session: %v", err)
			}
		})
		if err != nil {
			return err
		}
		defer cancel()

		return watchContacts(ctx, c, list)
	},
}

func init() {
	contactsCmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep polling for new submissions")
	contactsCmd.Flags().DurationVar(&pollEvery, "poll", 30*time.Second, "poll interval in watch mode")
	contactsCmd.Flags().DurationVar(&refreshEvery, "refresh-every", 50*time.Minute, "token refresh interval in watch mode")
	contactsCmd.Flags().DurationVar(&tokenTTL, "token-ttl", time.Hour, "lifetime of a refreshed token")
}

func refreshProvider(c *client.Client, state *client.State) (session.Provider, error) {
	switch state.Provider {
	case providerFirebase:
		key := webAPIKey
		if key == "" {
			key = os.Getenv("FIREBASE_WEB_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("FIREBASE_WEB_API_KEY is required to refresh a firebase session")
		}
		fa := client.NewFirebaseAuth(key, nil)
		fa.Resume(state.RefreshToken)
		return fa, nil
	default:
		return c.LocalProvider(), nil
	}
}

func watchContacts(ctx context.Context, c *client.Client, initial []client.Contact) error {
	seen := make(map[string]bool, len(initial))
	for _, ct := range initial {
		seen[ct.ID] = true
	}

	color.Cyan("Watching for new submissions every %s (Ctrl-C to stop)", pollEvery)
	ticker := time.NewTicker(pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		list, err := c.Contacts(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			color.Yellow("poll failed: %v", err)
			continue
		}
		// newest first from the API, printed oldest first
		for i := len(list) - 1; i >= 0; i-- {
			ct := list[i]
			if seen[ct.ID] {
				continue
			}
			seen[ct.ID] = true
			printContact(ct)
		}
	}
}

func printContacts(list []client.Contact) {
	if len(list) == 0 {
		fmt.Println("No contact submissions")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SUBMITTED\tNAME\tEMAIL\tSTATUS\tMESSAGE")
	for _, ct := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			ct.SubmittedAt.Local().Format("2006-01-02 15:04"),
			ct.Name, ct.Email, ct.Status, preview(ct.Message, 48))
	}
	w.Flush()
}

func printContact(ct client.Contact) {
	color.New(color.FgGreen, color.Bold).Printf("New message from %s <%s>\n", ct.Name, ct.Email)
	fmt.Printf("  %s\n", ct.SubmittedAt.Local().Format("Jan 2, 2006, 3:04 PM"))
	fmt.Printf("  %s\n\n", strings.ReplaceAll(ct.Message, "\n", "\n  "))
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
