package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ChivatosDeveloper/noir-tienda/config"
	"github.com/ChivatosDeveloper/noir-tienda/internal/bootstrap"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

const (
	flagConfig      = "config"
	configKeyConfig = "config_path"
	defaultConfig   = "config.yaml"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "noir-api: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "noir-api",
		Short:         "Apartados HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	cmd.Flags().String(flagConfig, defaultConfig, "path to the YAML config file")
	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := viper.BindEnv(configKeyConfig, "CONFIG_PATH"); err != nil {
		return nil, err
	}
	if err := viper.BindPFlag(configKeyConfig, cmd.Flags().Lookup(flagConfig)); err != nil {
		return nil, err
	}

	path := viper.GetString(configKeyConfig)
	if path == "" {
		path = defaultConfig
	}
	return config.LoadConfig(path)
}

func run(cfg *config.Config) error {
	gin.SetMode(gin.ReleaseMode)
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}

	app := fx.New(
		fx.Supply(cfg),
		bootstrap.Module,
	)
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}
