package commands

import (
	"fmt"

	"github.com/samber/do"
	"github.com/spf13/cobra"

	"github.com/devfolio/portfolio-backend/config"
	"github.com/devfolio/portfolio-backend/internal/bootstrap"
	"github.com/devfolio/portfolio-backend/internal/logging"
	"github.com/devfolio/portfolio-backend/internal/store"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write default portfolio content",
	Long: `Seed reads the server configuration from the environment (and .env) and
writes the default skills and technologies, or the content of a YAML seed
file, into empty collections. Collections that already hold documents are not
touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log, err := logging.New(cfg.App.LogLevel, cfg.App.Environment)
		if err != nil {
			return err
		}
		defer log.Sync()

		inj := bootstrap.BuildContainer(cfg, log)
		st, err := do.Invoke[store.Store](inj)
		if err != nil {
			return err
		}
		defer st.Close()

		if seedFile != "" {
			cfg.Defaults.SeedFile = seedFile
		}
		content, err := bootstrap.ResolveSeedContent(cfg.Defaults)
		if err != nil {
			return err
		}
		seeder, err := do.Invoke[*bootstrap.Seeder](inj)
		if err != nil {
			return err
		}
		res, err := seeder.Seed(cmd.Context(), content)
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d skills, %d technologies and %d projects\n", res.Skills, res.Technologies, res.Projects)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML seed file (overrides SEED_FILE)")
}
