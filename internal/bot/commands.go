package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/altinukshini/jenkins-bot/internal/alias"
	"github.com/altinukshini/jenkins-bot/internal/ci"
	"github.com/altinukshini/jenkins-bot/internal/listing"
	"github.com/altinukshini/jenkins-bot/internal/ops"
	"github.com/altinukshini/jenkins-bot/internal/trigger"
)

// Find searches the job list and stores the result as the user's listing.
func (b *Bot) Find(ctx context.Context, user string, factors []string) (string, error) {
	if len(factors) == 0 {
		return findUsage, nil
	}
	b.log.WithField("user", user).WithField("factors", factors).Debug("find")

	entries, err := b.lister.Find(ctx, factors)
	var tooMany *listing.TooManyError
	if errors.As(err, &tooMany) {
		return fmt.Sprintf("This resulted in **%d** jobs, which is too much.\nTry to narrow your search.", tooMany.Count), nil
	}
	if err != nil {
		return "", err
	}

	if err := b.sessions.SetListing(ctx, user, listing.Jobs(entries)); err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return noJobsMsg, nil
	}
	return fmt.Sprintf("Found these %d jobs:\n\n%s\n\n%s", len(entries), strings.Join(b.listingLines(entries), "\n"), buildHint), nil
}

// History lists target's recent runs with their current status. The
// listing is stored for user, so it can be built by index.
func (b *Bot) History(ctx context.Context, user, target string) (string, error) {
	if target == "" {
		target = user
	}
	settings, err := b.sessions.Load(ctx, target)
	if err != nil {
		return "", err
	}
	if len(settings.History) == 0 {
		return noHistoryMsg, nil
	}

	entries, err := b.lister.Annotate(ctx, settings.HistoryJobNames())
	if err != nil {
		return "", err
	}
	if err := b.sessions.SetListing(ctx, user, listing.Jobs(entries)); err != nil {
		return "", err
	}
	return fmt.Sprintf("Here you go:\n\n%s\n\n%s", strings.Join(b.listingLines(entries), "\n"), buildHint), nil
}

// Clear empties target's history. Users may only clear their own history
// unless they are admins.
func (b *Bot) Clear(ctx context.Context, user, target string, confirm bool) (string, error) {
	if target == "" {
		target = user
	}
	if !confirm {
		return needConfirm, nil
	}
	if target != user && !b.IsAdmin(user) {
		return adminOnlyMsg, nil
	}
	if err := b.sessions.Clear(ctx, target); err != nil {
		return "", err
	}
	return clearedMsg, nil
}

// Build triggers jobs by alias (first argument names one of the user's
// aliases) or by indices into the user's last listing. An explicit
// --parameters query overrides the parameters the trigger engine would pick.
func (b *Bot) Build(ctx context.Context, user string, args []string) (string, error) {
	params, args := takeOption(args, "--parameters")
	settings, err := b.sessions.Load(ctx, user)
	if err != nil {
		return "", err
	}
	if settings.Token == "" {
		return b.noTokenMsg(user), nil
	}
	creds := ci.Credentials{User: user, Token: settings.Token}

	if len(args) > 0 {
		if _, ok := settings.Aliases[args[0]]; ok {
			return b.buildAlias(ctx, creds, args[0], args[1:], params)
		}
	}

	if len(settings.LastListing) == 0 {
		return noListingMsg, nil
	}
	jobs, err := ops.SelectJobs(settings.LastListing, args)
	if errors.Is(err, ErrInvalidIndex) {
		b.log.WithField("user", user).WithError(err).Debug("rejected build request")
		return fmt.Sprintf("%s\nYour last listing has %d jobs (0 to %d).", badIndexMsg, len(settings.LastListing), len(settings.LastListing)-1), nil
	}
	if len(jobs) == 0 {
		return noSelectedMsg, nil
	}
	return b.triggerJobs(ctx, creds, jobs, params)
}

func (b *Bot) buildAlias(ctx context.Context, creds ci.Credentials, name string, extra []string, params *string) (string, error) {
	match, err := b.aliases.Resolve(ctx, creds.User, name, extra)

	var noMatch *alias.NoMatchError
	var ambiguous *alias.AmbiguousError
	switch {
	case errors.As(err, &noMatch):
		return fmt.Sprintf("No job found with pattern: `%s`", strings.Join(noMatch.Pattern, " ")), nil
	case errors.As(err, &ambiguous):
		lines := []string{fmt.Sprintf("Multiple jobs found with pattern: `%s`", strings.Join(ambiguous.Pattern, " "))}
		for i, job := range ambiguous.Candidates {
			if i == b.maxCandidates {
				break
			}
			lines = append(lines, " - "+job)
		}
		return strings.Join(lines, "\n"), nil
	case err != nil:
		return "", err
	}
	if params == nil {
		params = match.Parameters
	}
	return b.triggerJobs(ctx, creds, []string{match.Job}, params)
}

func (b *Bot) triggerJobs(ctx context.Context, creds ci.Credentials, jobs []string, params *string) (string, error) {
	result, err := ops.BulkTrigger(ctx, b.trigger, jobs, params, creds, nil)
	if errors.Is(err, trigger.ErrMissingToken) {
		return b.noTokenMsg(creds.User), nil
	}
	if err != nil {
		return "", err
	}

	var parts []string
	if len(result.Triggered) > 0 {
		parts = append(parts, fmt.Sprintf("Triggered **%d** jobs:\n\n%s", len(result.Triggered), strings.Join(b.jobLinks(result.Triggered), "\n")))
	}
	if result.Failed > 0 {
		lines := []string{fmt.Sprintf("Failed to trigger **%d** jobs:", result.Failed)}
		for _, err := range result.Errors {
			b.log.WithError(err).WithField("user", creds.User).Warn("trigger failed")
			lines = append(lines, " - "+describeTriggerError(err))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n\n"), nil
}

// describeTriggerError summarizes a failed trigger without the response body.
func describeTriggerError(err error) string {
	job := "?"
	var jobErr *ops.JobError
	if errors.As(err, &jobErr) {
		job = jobErr.Job
	}
	var respErr *ci.ResponseError
	if errors.As(err, &respErr) {
		return fmt.Sprintf("`%s`: server answered %d", job, respErr.StatusCode)
	}
	return fmt.Sprintf("`%s`: %s", job, upstreamMsg)
}

// BuildAlias registers an alias, or lists the user's aliases when name is empty.
func (b *Bot) BuildAlias(ctx context.Context, user, name string, pattern []string, params *string) (string, error) {
	if name == "" {
		aliases, err := b.aliases.List(ctx, user)
		if err != nil {
			return "", err
		}
		if len(aliases) == 0 {
			return aliasUsage, nil
		}
		lines := []string{"Existing aliases:"}
		for _, a := range aliases {
			lines = append(lines, fmt.Sprintf(" - `%s: %s - %s`", a.Name, strings.Join(a.Pattern, " "), formatParams(a.Parameters)))
		}
		return strings.Join(lines, "\n"), nil
	}

	if err := b.aliases.Register(ctx, user, name, pattern, params); err != nil {
		return "", err
	}
	return fmt.Sprintf("Alias registered: `%s: %s : %s`", name, strings.Join(pattern, " "), formatParams(params)), nil
}

func formatParams(p *string) string {
	if p == nil {
		return "(last build parameters)"
	}
	return *p
}

// Token stores value as the user's API token, or shows the stored one masked.
func (b *Bot) Token(ctx context.Context, user, value string) (string, error) {
	if value != "" {
		if err := b.sessions.SetToken(ctx, user, value); err != nil {
			return "", err
		}
		return tokenSavedMsg, nil
	}

	settings, err := b.sessions.Load(ctx, user)
	if err != nil {
		return "", err
	}
	if settings.Token == "" {
		return b.noTokenMsg(user), nil
	}
	return fmt.Sprintf("Your API Token is: `%s` (user: %s)", maskToken(settings.Token), user), nil
}

// DebugSettings dumps target's settings for admins, with the token masked.
func (b *Bot) DebugSettings(ctx context.Context, user, target string) (string, error) {
	if !b.IsAdmin(user) {
		return adminOnlyMsg, nil
	}
	if target == "" {
		return "Enter user name", nil
	}
	settings, err := b.sessions.Load(ctx, target)
	if err != nil {
		return "", err
	}
	settings.Token = maskToken(settings.Token)
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode settings: %w", err)
	}
	return "User settings:\n```json\n" + string(data) + "\n```", nil
}
