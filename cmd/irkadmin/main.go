// Command irkadmin manages portfolio projects from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/irkinnovations/portfolio/internal/adminclient"
	"github.com/irkinnovations/portfolio/internal/domain"
	"github.com/irkinnovations/portfolio/internal/storage"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, adminclient.ErrNotLoggedIn) || errors.Is(err, domain.ErrUnauthorized) {
			fmt.Fprintln(os.Stderr, "Session missing or expired. Run `irkadmin login` first.")
		}
		stop()
		os.Exit(1)
	}
}

type app struct {
	v      *viper.Viper
	client *adminclient.Client
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "irkadmin",
		Short:         "Manage IRK Innovations portfolio projects",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().String("api-url", "http://localhost:8080/api", "base URL of the project API")
	root.PersistentFlags().String("config", "", "config file (default $XDG_CONFIG_HOME/irkadmin/config.yaml)")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.listCmd(),
		a.showCmd(),
		a.createCmd(),
		a.editCmd(),
		a.deleteCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	v := a.v
	v.SetEnvPrefix("IRKADMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "images")

	if err := v.BindPFlag("api_url", cmd.Flags().Lookup("api-url")); err != nil {
		return err
	}

	if file, _ := cmd.Flags().GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "irkadmin"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	tokens, err := adminclient.DefaultTokenStore()
	if err != nil {
		return err
	}
	a.client = adminclient.NewClient(v.GetString("api_url"), tokens)
	return nil
}

// bucket connects to the image bucket configured under storage.*.
func (a *app) bucket(ctx context.Context) (*storage.Bucket, error) {
	cfg := storage.Config{
		Endpoint:  a.v.GetString("storage.endpoint"),
		Region:    a.v.GetString("storage.region"),
		AccessKey: a.v.GetString("storage.access_key"),
		SecretKey: a.v.GetString("storage.secret_key"),
		Bucket:    a.v.GetString("storage.bucket"),
		PublicURL: a.v.GetString("storage.public_url"),
	}
	if cfg.Endpoint == "" || cfg.PublicURL == "" {
		return nil, errors.New("image storage is not configured (set IRKADMIN_STORAGE_ENDPOINT and IRKADMIN_STORAGE_PUBLIC_URL)")
	}
	return storage.New(ctx, cfg)
}
