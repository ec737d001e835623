// Command example fetches a list of posts and prints each one as it is
// decoded, then reports how the request finished.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/adamwoolhether/network"
	"github.com/adamwoolhether/network/apierror"
	"github.com/adamwoolhether/network/client"
	"github.com/adamwoolhether/network/internal/config"
	"github.com/adamwoolhether/network/request"
)

// Exit codes.
const (
	exitSuccess      = 0
	exitRequestError = 1
	exitConfigError  = 3
	exitNetworkError = 4
)

type post struct {
	UserID int    `json:"userId" validate:"required"`
	ID     int    `json:"id" validate:"required"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := newRootCmd(os.Stdout, os.Stderr).execute(ctx)
	stop()
	os.Exit(code)
}

type rootCmd struct {
	cmd      *cobra.Command
	out      io.Writer
	envFile  string
	cfgFile  string
	exitCode int
}

func newRootCmd(out, errOut io.Writer) *rootCmd {
	rc := &rootCmd{out: out}

	rc.cmd = &cobra.Command{
		Use:   "example",
		Short: "Fetch posts and print them",
		Long: `example issues one GET request against a JSON API and prints the
decoded posts. By default the result is delivered through a publisher
subscription; --await uses the blocking call instead.

Settings come from flags, NETWORK_ environment variables, an optional
config file and a .env file, in that order of precedence.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          rc.run,
	}
	rc.cmd.SetOut(out)
	rc.cmd.SetErr(errOut)

	f := rc.cmd.Flags()
	f.StringVar(&rc.envFile, "env-file", ".env", "dotenv file to load")
	f.StringVar(&rc.cfgFile, "config", "", "config file (yaml, json or toml)")
	f.String(config.FlagName(config.KeyBaseURL), "", "base url of the api")
	f.String(config.FlagName(config.KeyPath), "", "path of the posts resource")
	f.Duration(config.FlagName(config.KeyTimeout), 0, "request timeout")
	f.String(config.FlagName(config.KeyLogLevel), "", "log level (debug, info, warn, error)")
	f.String(config.FlagName(config.KeyUserAgent), "", "User-Agent header value")
	f.Int(config.FlagName(config.KeyThrottleRPS), 0, "client side requests per second, 0 disables")
	f.Int(config.FlagName(config.KeyThrottleBurst), 0, "client side burst size")
	f.Bool(config.FlagName(config.KeyAwait), false, "block on the result instead of subscribing")
	f.Bool(config.FlagName(config.KeyNoColor), false, "disable colored output")

	return rc
}

func (rc *rootCmd) execute(ctx context.Context) int {
	if err := rc.cmd.ExecuteContext(ctx); err != nil {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(rc.cmd.ErrOrStderr(), "%s %v\n", red("error:"), err)
		if rc.exitCode == exitSuccess {
			rc.exitCode = exitConfigError
		}
	}
	return rc.exitCode
}

func (rc *rootCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.Source{
		EnvFile:    rc.envFile,
		ConfigFile: rc.cfgFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return err
	}

	if cfg.NoColor {
		color.NoColor = true
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	opts := []client.Option{
		client.WithLogger(log),
		client.WithTimeout(cfg.Timeout),
		client.WithUserAgent(cfg.UserAgent),
		client.WithRequestID(""),
	}
	if cfg.ThrottleRPS > 0 {
		opts = append(opts, client.WithThrottle(cfg.ThrottleRPS, cfg.ThrottleBurst))
	}

	c, err := network.NewClient(opts...)
	if err != nil {
		return fmt.Errorf("building client: %w", err)
	}

	b, err := request.New(cfg.BaseURL, cfg.Path)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	b.SetTimeout(cfg.Timeout)

	log.Info("fetching posts", "url", cfg.BaseURL, "path", cfg.Path, "await", cfg.Await)

	if cfg.Await {
		posts, err := client.Execute[[]post](cmd.Context(), c, b)
		if err != nil {
			rc.fail(err)
			return nil
		}
		rc.print(posts)
		rc.finished()
		return nil
	}

	sub := client.Publish[[]post](cmd.Context(), c, b).Sink(
		rc.print,
		func(err error) {
			if err != nil {
				rc.fail(err)
				return
			}
			rc.finished()
		},
	)

	select {
	case <-sub.Done():
	case <-cmd.Context().Done():
		sub.Cancel()
		<-sub.Done()
		return errors.New("interrupted")
	}

	return nil
}

func (rc *rootCmd) print(posts []post) {
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	for _, p := range posts {
		fmt.Fprintf(rc.out, "%s %s\n", cyan(fmt.Sprintf("#%d (user %d)", p.ID, p.UserID)), bold(p.Title))
	}
}

func (rc *rootCmd) finished() {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintln(rc.out, green("finished"))
}

// fail prints err and sets the exit code for its kind.
func (rc *rootCmd) fail(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(rc.out, "%s %v\n", red("failed:"), err)

	rc.exitCode = exitRequestError
	if errors.Is(err, apierror.ErrNetwork) || errors.Is(err, apierror.ErrTimeout) {
		rc.exitCode = exitNetworkError
	}
}
