package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"al.essio.dev/pkg/shellescape"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/altinukshini/jenkins-bot/internal/alias"
	"github.com/altinukshini/jenkins-bot/internal/bot"
	"github.com/altinukshini/jenkins-bot/internal/server"
	"github.com/altinukshini/jenkins-bot/internal/tui"
	"github.com/altinukshini/jenkins-bot/internal/ui"
)

var errNoUser = errors.New("no user: pass --user or set USER")

// withApp loads configuration, wires the bot and runs fn with it.
func withApp(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, a *app) error, opts ...bot.Option) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	log.SetOutput(cmd.ErrOrStderr())

	a, err := newApp(cfg, log, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			log.WithError(err).Warn("closing session store")
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, a)
}

// dispatchCmd builds a one-shot subcommand that sends "<name> args..." to the
// bot as the --user and prints the reply.
func dispatchCmd(flags *globalFlags, use, short, name string, args cobra.PositionalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.user == "" {
				return errNoUser
			}
			line := strings.Join(append([]string{name}, args...), " ") + forwardedFlags(cmd)
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				fmt.Fprintln(cmd.OutOrStdout(), a.bot.Dispatch(ctx, flags.user, line))
				return nil
			})
		},
	}
}

// forwardedFlags renders the subcommand's own flags back into chat syntax.
func forwardedFlags(cmd *cobra.Command) string {
	var b strings.Builder
	cmd.LocalNonPersistentFlags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed || f.Name == "help" {
			return
		}
		if f.Value.Type() == "bool" {
			if f.Value.String() == "true" {
				b.WriteString(" --" + f.Name)
			}
			return
		}
		b.WriteString(" --" + f.Name + "=" + f.Value.String())
	})
	return b.String()
}

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the build webhook and chat command endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				srv := server.New(a.bot, server.WithLogger(a.log), server.WithSecret(a.cfg.Server.Secret))
				a.log.WithField("addr", a.cfg.Server.Addr).WithField("provider", a.cfg.Provider).Info("listening")
				return srv.ListenAndServe(ctx, a.cfg.Server.Addr)
			})
		},
	}
}

func newConsoleCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive console that talks to the bot as --user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.user == "" {
				return errNoUser
			}
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				// Log lines would corrupt the alternate screen.
				a.log.SetOutput(io.Discard)
				model := tui.New(ctx, a.bot, flags.user, a.cfg.ServerURL())
				p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
				_, err := p.Run()
				if errors.Is(err, tea.ErrProgramKilled) {
					return nil
				}
				return err
			}, bot.WithMarker(ui.ConsoleMarker))
		},
	}
}

func newFindCmd(flags *globalFlags) *cobra.Command {
	return dispatchCmd(flags, "find <factor>...", "Search jobs and store the listing", "find", cobra.MinimumNArgs(1))
}

func newBuildCmd(flags *globalFlags) *cobra.Command {
	cmd := dispatchCmd(flags, "build <index>... | build <alias> [factor...]", "Trigger builds", "build", cobra.MinimumNArgs(1))
	cmd.Flags().String("parameters", "", "raw build parameter query, e.g. BRANCH=main&DEBUG=1")
	return cmd
}

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	return dispatchCmd(flags, "history [user]", "List recent builds", "history", cobra.MaximumNArgs(1))
}

func newClearCmd(flags *globalFlags) *cobra.Command {
	cmd := dispatchCmd(flags, "clear [user] --confirm", "Forget build history", "clear", cobra.MaximumNArgs(1))
	cmd.Flags().Bool("confirm", false, "really delete the history")
	return cmd
}

func newTokenCmd(flags *globalFlags) *cobra.Command {
	return dispatchCmd(flags, "token [TOKEN]", "Set or show your API token", "token", cobra.MaximumNArgs(1))
}

func newAliasCmd(flags *globalFlags) *cobra.Command {
	var params string
	cmd := &cobra.Command{
		Use:   "alias [name factor... [--parameters=<query>]]",
		Short: "Register an alias, or print the existing ones as shell commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.user == "" {
				return errNoUser
			}
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				out := cmd.OutOrStdout()
				if len(args) == 0 {
					aliases, err := a.aliases.List(ctx, flags.user)
					if err != nil {
						return err
					}
					for _, n := range aliases {
						fmt.Fprintln(out, aliasCommandLine(n))
					}
					return nil
				}
				line := "buildalias " + strings.Join(args, " ")
				if cmd.Flags().Changed("parameters") {
					line += " --parameters=" + params
				}
				fmt.Fprintln(out, a.bot.Dispatch(ctx, flags.user, line))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&params, "parameters", "", "raw build parameter query, e.g. BRANCH=main&DEBUG=1")
	return cmd
}

// aliasCommandLine renders n as a shell command that registers it again.
func aliasCommandLine(n alias.Named) string {
	argv := append([]string{"jenkins-bot", "alias", n.Name}, n.Pattern...)
	if n.Parameters != nil {
		argv = append(argv, "--parameters="+*n.Parameters)
	}
	return shellescape.QuoteCommand(argv)
}
