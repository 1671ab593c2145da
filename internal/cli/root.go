// Package cli implements gigctl, a command-line client for the upstream
// events API that shares the server's date, preset and search logic.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pkordes/gigboard/internal/service"
	"github.com/pkordes/gigboard/internal/upstream"
)

type ctxKey string

const appKey ctxKey = "app"

// app is the per-invocation state shared by every subcommand.
type app struct {
	v   *viper.Viper
	now func() time.Time
}

// Execute builds the root command and runs it.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the gigctl root command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(time.Now)
}

func newRootCmd(now func() time.Time) *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:           "gigctl",
		Short:         "gigctl: browse events and bands from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, &app{v: v, now: now}))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (yaml|toml)")
	cmd.PersistentFlags().String("api-url", "", "upstream API base URL (env GIGCTL_API_URL)")
	cmd.PersistentFlags().String("token", "", "upstream bearer token (env GIGCTL_TOKEN)")
	cmd.PersistentFlags().Duration("timeout", 10*time.Second, "per-request timeout (env GIGCTL_TIMEOUT)")

	cmd.AddCommand(newDateCmd())
	cmd.AddCommand(newPresetCmd())
	cmd.AddCommand(newEventsCmd())
	cmd.AddCommand(newBandsCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }

	return cmd
}

// loadConfig resolves settings with precedence defaults < file < env < flags.
func loadConfig(cmd *cobra.Command, cfgPath string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("timeout", 10*time.Second)

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
	}

	// Environment variables: GIGCTL_API_URL, GIGCTL_TOKEN, GIGCTL_TIMEOUT.
	v.SetEnvPrefix("gigctl")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for key, flag := range map[string]string{"api_url": "api-url", "token": "token", "timeout": "timeout"} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func getApp(cmd *cobra.Command) *app {
	a, ok := cmd.Context().Value(appKey).(*app)
	if !ok {
		panic("cli: app not initialized")
	}
	return a
}

// client builds the upstream client from the resolved configuration.
func (a *app) client() (*upstream.Client, error) {
	base := a.v.GetString("api_url")
	if base == "" {
		return nil, errors.New("api url not set: use --api-url or GIGCTL_API_URL")
	}
	return upstream.New(base, a.v.GetDuration("timeout"), upstream.WithToken(a.v.GetString("token")))
}

func (a *app) eventService() (*service.EventService, *upstream.Client, error) {
	c, err := a.client()
	if err != nil {
		return nil, nil, err
	}
	return service.NewEventService(c, nil, nil).WithClock(a.now), c, nil
}

func (a *app) bandService() (*service.BandService, error) {
	c, err := a.client()
	if err != nil {
		return nil, err
	}
	return service.NewBandService(c), nil
}
