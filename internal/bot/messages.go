package bot

import (
	"fmt"
	"strings"

	"github.com/altinukshini/jenkins-bot/internal/listing"
	"github.com/altinukshini/jenkins-bot/internal/model"
)

const (
	findUsage = "Pass some search factors, for example:\n" +
		"    `ASIM 507 win64,linux64`: matches jobs with `ASIM` *and* `507` *and* ( `win64` *or* `linux64` )\n" +
		"    `\"eden-master-win64-35\"`: matches exactly the job named `eden-master-win64-35`"

	aliasUsage = "Pass alias name, some search keywords, and an optional set of parameters, for example:\n" +
		"    `rr30l rocky30 linux64 --parameters=BUILD_MODE=source&EDEN_SKIP_DEPS_TESTS=etk`"

	noListingMsg = "No job listing yet, list jobs first with:\n" +
		"    `!history`\n" +
		"    `!find <word1> <word2> ...`"

	badIndexMsg   = "Expected a list of indexes from the previous listing: `!build <num1> <num2> ...`"
	noJobsMsg     = "No jobs found, sorry buddy."
	noSelectedMsg = "No jobs selected with those indexes."
	noHistoryMsg  = "You never ran anything. Or at least I don't remember."
	needConfirm   = "Need to pass `--confirm` to this command"
	clearedMsg    = "Job history on the trash."
	tokenSavedMsg = "Token saved."
	adminOnlyMsg  = "Only admins can do that."
	upstreamMsg   = "Could not reach the build server, try again later."
	buildHint     = "To trigger builds, use `!build <num1> <num2> <num3> ...`"
)

var comments = map[string][]string{
	"STARTED": {
		"Now we wait... :popcorn:",
		"Hope it won't take long... ",
		"Coffee maybe? :coffee:",
		"Time to take a break? :smoking:",
	},
	"SUCCESS": {"Way to go! :beer:", "Nice! :champagne_glass:", "Hooray! :wine_glass:"},
	"FAILURE": {
		"No good...",
		"Tsk tsk tsk...",
		"I feel bad for you... well not really.",
		"Flaky, perhaps?",
	},
}

// comment returns a flavor line for a job state; states without flavor
// texts get the state itself.
func (b *Bot) comment(state string) string {
	choices, ok := comments[state]
	if !ok {
		return state
	}
	return b.pick(choices)
}

func (b *Bot) noTokenMsg(user string) string {
	return fmt.Sprintf("**Jenkins API Token not configured**.\n"+
		"Find your API Token [here](%s/user/%s/configure) (make sure you are logged in) and execute:\n\n"+
		"    `!jenkins token <TOKEN>`\n\n"+
		"This only needs to be done once.", b.serverURL, user)
}

func (b *Bot) listingLines(entries []listing.Entry) []string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		marker := b.marker(e.Status)
		if e.Status == model.StatusMissing {
			lines[i] = fmt.Sprintf("`%2d`. %s %s", i, marker, e.Job)
			continue
		}
		lines[i] = fmt.Sprintf("`%2d`. %s [%s](%s)", i, marker, e.Job, b.provider.JobURL(e.Job))
	}
	return lines
}

func (b *Bot) jobLinks(jobs []string) []string {
	links := make([]string, len(jobs))
	for i, job := range jobs {
		links[i] = fmt.Sprintf("[%s](%s)", job, b.provider.JobURL(job))
	}
	return links
}

// failureSummary lists up to max failing tests.
func failureSummary(failures []model.TestCase, max int) string {
	if len(failures) == 0 {
		return ""
	}
	lines := []string{fmt.Sprintf("**%d failed tests**", len(failures))}
	for i, f := range failures {
		if i == max {
			lines = append(lines, fmt.Sprintf("... and %d more", len(failures)-max))
			break
		}
		lines = append(lines, "`"+f.Name+"`")
	}
	return strings.Join(lines, "\n")
}

// maskToken hides all but the last four characters of a token.
func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}

// buildURL resolves a webhook build URL, which Jenkins sends relative to its root.
func (b *Bot) buildURL(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return b.serverURL + "/" + strings.TrimPrefix(u, "/")
}
