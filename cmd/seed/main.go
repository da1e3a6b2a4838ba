package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"socialnet/internal/app"
	"socialnet/internal/config"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	File string
	URL  string
}

func main() {
	if err := newSeedCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func newSeedCommand() *cobra.Command {
	opts := &SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users, posts, comments and follows from a YAML fixture",
		Long: `Load users, posts, comments and follows from a YAML fixture.

Users that already exist (matched by email) are reused, so a fixture can be
applied to a database that already holds some of its users.

Example:
  seed --file fixtures/demo.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "path to a YAML fixture")
	cmd.Flags().StringVar(&opts.URL, "url", "", "fetch the YAML fixture over HTTP")
	cmd.MarkFlagsMutuallyExclusive("file", "url")
	cmd.MarkFlagsOneRequired("file", "url")

	return cmd
}

func runSeed(ctx context.Context, opts *SeedOptions, out io.Writer) error {
	cfg := config.Load()
	app.InitLogger(cfg.LogLevel, cfg.LogFormat)

	var (
		raw []byte
		err error
	)
	if opts.URL != "" {
		slog.Info("fetching fixture", "url", opts.URL)
		raw, err = fetchFixture(ctx, opts.URL)
	} else {
		raw, err = os.ReadFile(opts.File)
	}
	if err != nil {
		return err
	}

	fixture, err := ParseFixture(raw)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	seeder := &Seeder{
		Users:    a.Store.Users(),
		Auth:     a.AuthService,
		Social:   a.UserService,
		Posts:    a.PostService,
		Comments: a.CommentService,
	}
	stats, err := seeder.Seed(ctx, fixture)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Seed completed successfully!\n")
	fmt.Fprintf(out, "  - Users created: %d\n", stats.UsersCreated)
	fmt.Fprintf(out, "  - Existing users reused: %d\n", stats.UsersReused)
	fmt.Fprintf(out, "  - Posts created: %d\n", stats.Posts)
	fmt.Fprintf(out, "  - Comments created: %d\n", stats.Comments)
	fmt.Fprintf(out, "  - Likes applied: %d\n", stats.Likes)
	fmt.Fprintf(out, "  - Follows applied: %d\n", stats.Follows)
	return nil
}

// fetchFixture downloads fixture data from url.
func fetchFixture(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fixture: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fixture server returned status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
