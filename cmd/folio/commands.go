package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/folio"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/projects"
	"github.com/eringen/folio/views"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "folio",
		Short:         "Personal portfolio server with a project admin panel",
		SilenceUsage:  true,
	}
	cmd.AddCommand(
		newServeCmd(),
		newProjectsCmd(),
		newVersionCmd(),
	)
	return cmd
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the portfolio web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromEnv()
			if addr != "" {
				cfg.Addr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides FOLIO_ADDR)")
	return cmd
}

func serve(ctx context.Context, cfg folio.SiteConfig) error {
	app := folio.New(cfg, views.Default())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- app.Start() }()

	select {
	case err := <-errCh:
		_ = app.Close()
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

func newProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Inspect and maintain the admin project list",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List project records in order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withProjects(cmd.Context(), func(app *folio.App) error {
					return printProjects(cmd, app.Projects.List())
				})
			},
		},
		newProjectsDeleteCmd(),
	)
	return cmd
}

func newProjectsDeleteCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project record (stop the server first)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withProjects(ctx, func(app *folio.App) error {
				active, err := folio.ServerActive(ctx, app.Store)
				if err != nil {
					return err
				}
				if active {
					if !force {
						return errors.New("a running server holds the store and would restore the record on its next save; stop it first or pass --force")
					}
					fmt.Fprintln(cmd.ErrOrStderr(), "warning: a running server holds the store; restart it to pick up the deletion")
				}
				m := app.Projects
				if _, ok := m.Get(args[0]); !ok {
					return fmt.Errorf("no project with id %s", args[0])
				}
				if err := m.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "delete even while a server holds the store")
	return cmd
}

func withProjects(ctx context.Context, fn func(*folio.App) error) error {
	cfg := configFromEnv()
	// Only the stores are needed; the secrets guard the web server.
	app := folio.New(cfg, folio.ViewFuncs{})
	defer app.Close()
	if err := app.InitProjects(ctx); err != nil {
		return err
	}
	return fn(app)
}

func printProjects(cmd *cobra.Command, list []projects.Record) error {
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no projects")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tTAGS")
	for _, p := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Status, strings.Join(p.Tags, ", "))
	}
	return w.Flush()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the folio version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "folio %s\n", version)
		},
	}
}

// configFromEnv reads the site configuration from the environment.
func configFromEnv() folio.SiteConfig {
	return folio.SiteConfig{
		Name:        os.Getenv("FOLIO_NAME"),
		URL:         os.Getenv("FOLIO_URL"),
		Description: os.Getenv("FOLIO_DESCRIPTION"),
		Author:      os.Getenv("FOLIO_AUTHOR"),
		Addr:        os.Getenv("FOLIO_ADDR"),
		StoreKind:   os.Getenv("FOLIO_STORE"),
		StorePath:   os.Getenv("FOLIO_DB"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisPrefix:   os.Getenv("REDIS_PREFIX"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    os.Getenv("MINIO_BUCKET"),
		MinioUseSSL:    envBool("MINIO_USE_SSL"),

		AppwriteEndpoint:   os.Getenv("APPWRITE_ENDPOINT"),
		AppwriteProjectID:  os.Getenv("APPWRITE_PROJECT_ID"),
		AppwriteAPIKey:     os.Getenv("APPWRITE_API_KEY"),
		AppwriteDatabaseID: os.Getenv("APPWRITE_DATABASE_ID"),
		AppwriteBucketID:   os.Getenv("APPWRITE_BUCKET_ID"),
		Collections: content.Collections{
			Frontend:      os.Getenv("APPWRITE_FRONTEND_COLLECTION"),
			Backend:       os.Getenv("APPWRITE_BACKEND_COLLECTION"),
			Soft:          os.Getenv("APPWRITE_SOFTSKILLS_COLLECTION"),
			Projects:      os.Getenv("APPWRITE_PROJECTS_COLLECTION"),
			ProfileFileID: os.Getenv("APPWRITE_PROFILE_FILE_ID"),
		},

		ContactFormURL: os.Getenv("CONTACT_FORM_URL"),

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		CookieSecure:  envBool("COOKIE_SECURE"),

		ContentCacheTTL:  envDuration("CONTENT_CACHE_TTL"),
		CarouselInterval: envDuration("CAROUSEL_INTERVAL"),
		LogLevel:         folio.EnvOr("LOG_LEVEL", "info"),
	}
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}

// envDuration parses values like "90s" or "5m". Unset or invalid means 0,
// which SiteConfig replaces with its default.
func envDuration(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ignoring %s: %v\n", key, err)
		return 0
	}
	return d
}
