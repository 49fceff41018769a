package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/altinukshini/jenkins-bot/internal/model"
)

const maxFailuresShown = 10

// HandleEvent records a build notification in the triggering user's history
// and sends them a message about it.
func (b *Bot) HandleEvent(ctx context.Context, ev model.RunEvent) error {
	log := b.log.WithField("user", ev.UserID).WithField("job", ev.JobName).WithField("event", ev.Kind.String())
	record := ev.Record()

	if ev.Kind == model.EventCompleted {
		failures, err := b.provider.TestFailures(ctx, ev.JobName, ev.Number)
		if err != nil {
			log.WithError(err).Warn("could not fetch test report")
		}
		record.TestFailures = failures
	}

	if err := b.sessions.Record(ctx, ev.UserID, record); err != nil {
		return fmt.Errorf("record %s #%d: %w", ev.JobName, ev.Number, err)
	}
	log.WithField("number", ev.Number).Info("build event recorded")

	if err := b.notifier.Notify(ctx, ev.UserID, b.eventMessage(ev, record.TestFailures)); err != nil {
		return fmt.Errorf("notify %s: %w", ev.UserID, err)
	}
	return nil
}

func (b *Bot) eventMessage(ev model.RunEvent, failures []model.TestCase) string {
	link := fmt.Sprintf("[%s](%s) build **%d**", ev.JobName, b.buildURL(ev.URL), ev.Number)

	if ev.Kind == model.EventStarted {
		lines := []string{
			"**Job Started**!",
			":pray: " + link,
		}
		if ev.BuiltOn != "" {
			lines = append(lines, fmt.Sprintf("Building on: **%s**", ev.BuiltOn))
		}
		lines = append(lines, b.comment("STARTED"))
		return strings.Join(lines, "\n")
	}

	marker := ":x:"
	if ev.Result == model.StatusSuccess {
		marker = ":white_check_mark:"
	}
	lines := []string{
		"**Job Completed**!",
		marker + " " + link,
	}
	if summary := failureSummary(failures, maxFailuresShown); summary != "" {
		lines = append(lines, summary)
	}
	lines = append(lines, b.comment(string(ev.Result)))
	return strings.Join(lines, "\n")
}
