package bot

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Help lists the available commands.
const Help = "Commands:\n" +
	"    `!find <factor> ...`: search jobs\n" +
	"    `!build <index> ...` or `!build <alias> [factor ...]`, optionally `--parameters=<query>`: trigger builds\n" +
	"    `!history [user]`: list recent builds\n" +
	"    `!clear [user] --confirm`: forget build history\n" +
	"    `!buildalias [alias] [factor ...] [--parameters=<query>]`: save or list aliases\n" +
	"    `!jenkins token [TOKEN]`: set or show your API token"

// Dispatch runs one command line for user and returns the reply. Failures
// talking to the CI server are logged and answered with a generic message.
func (b *Bot) Dispatch(ctx context.Context, user, line string) string {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return Help
	}
	cmd := strings.ToLower(strings.TrimPrefix(fields[0], "!"))
	args := fields[1:]
	if cmd == "jenkins" && len(args) > 0 {
		cmd, args = strings.ToLower(args[0]), args[1:]
	}

	requestID := uuid.NewString()
	log := b.log.WithField("request_id", requestID).WithField("user", user).WithField("command", cmd)
	log.Debug("command received")

	reply, err := b.run(ctx, user, cmd, args)
	if err != nil {
		log.WithError(err).Error("command failed")
		return upstreamMsg
	}
	return reply
}

func (b *Bot) run(ctx context.Context, user, cmd string, args []string) (string, error) {
	switch cmd {
	case "find":
		return b.Find(ctx, user, args)
	case "build":
		return b.Build(ctx, user, args)
	case "history", "bhist":
		return b.History(ctx, user, first(args))
	case "clear":
		confirm, rest := takeFlag(args, "--confirm")
		return b.Clear(ctx, user, first(rest), confirm)
	case "buildalias", "alias":
		params, rest := takeOption(args, "--parameters")
		if len(rest) == 0 {
			return b.BuildAlias(ctx, user, "", nil, nil)
		}
		return b.BuildAlias(ctx, user, rest[0], rest[1:], params)
	case "token", "jenkins_token":
		return b.Token(ctx, user, first(args))
	case "debug_settings":
		return b.DebugSettings(ctx, user, first(args))
	default:
		return Help, nil
	}
}

func first(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// takeFlag removes every occurrence of flag from args.
func takeFlag(args []string, flag string) (bool, []string) {
	found := false
	rest := make([]string, 0, len(args))
	for _, a := range args {
		if a == flag {
			found = true
			continue
		}
		rest = append(rest, a)
	}
	return found, rest
}

// takeOption extracts "--name=value" or "--name value" from args.
func takeOption(args []string, name string) (*string, []string) {
	var value *string
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case strings.HasPrefix(a, name+"="):
			v := strings.TrimPrefix(a, name+"=")
			value = &v
		case a == name && i+1 < len(args):
			v := args[i+1]
			value = &v
			i++
		default:
			rest = append(rest, a)
		}
	}
	return value, rest
}
