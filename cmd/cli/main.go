// Command librairie is a CLI client for the bookstore REST API: session,
// catalog, cart, and profile.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"librairie/internal/config"
	"librairie/internal/util"
	"librairie/pkg/api"
	"librairie/pkg/cart"
	"librairie/pkg/catalog"
	"librairie/pkg/profile"
	"librairie/pkg/session"
	"librairie/pkg/store"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "librairie",
		Short:        "Bookstore API client",
		Long:         "librairie drives the bookstore backend: authentication, catalog browsing, cart, and profile.",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "config file path (default "+config.ConfigPath+")")
	root.Version = version
	root.SetVersionTemplate(fmt.Sprintf("librairie version %s\n", version))

	root.AddCommand(
		newSignupCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newBooksCmd(),
		newCartCmd(),
		newProfileCmd(),
	)
	return root
}

// app wires the stores for one command invocation.
type app struct {
	cfg     config.FileConfig
	logger  *slog.Logger
	tokens  store.TokenStore
	session *session.Store
	catalog *catalog.Store
	cart    *cart.Store
	profile *profile.Store
}

func newApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger := util.InitLogger(cfg.LogLevel)
	tokens := newTokenStore(cfg)
	apiClient := api.New(api.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.HTTPTimeout(),
		Tokens:  tokens,
		Logger:  logger,
	})
	return &app{
		cfg:     cfg,
		logger:  logger,
		tokens:  tokens,
		session: session.New(apiClient, tokens, logger),
		catalog: catalog.New(apiClient, logger, cfg.PageSize),
		cart:    cart.New(apiClient, logger),
		profile: profile.New(apiClient, logger),
	}, nil
}

func newTokenStore(cfg config.FileConfig) store.TokenStore {
	switch cfg.TokenStore {
	case config.TokenStoreMemory:
		return store.NewMemoryTokenStore()
	case config.TokenStoreRedis:
		return store.NewRedisTokenStore(cfg.RedisAddr, cfg.RedisPassword, "")
	default:
		return store.NewFileTokenStore(cfg.TokenPath)
	}
}

func opContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, 30*time.Second)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
