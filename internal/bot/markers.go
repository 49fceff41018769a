package bot

import "github.com/altinukshini/jenkins-bot/internal/model"

// StatusMarker renders a job status as a short prefix for listing lines.
type StatusMarker func(model.JobStatus) string

var chatEmoji = map[model.JobStatus]string{
	model.StatusSuccess:    ":white_check_mark:",
	model.StatusFailure:    ":x:",
	model.StatusAborted:    ":white_circle:",
	model.StatusNotStarted: ":white_circle:",
	model.StatusUnstable:   ":warning:",
	model.StatusRunning:    ":arrows_counterclockwise:",
	model.StatusMissing:    ":grey_question:",
}

// ChatMarker renders statuses as chat emoji codes. Unknown statuses are
// shown verbatim.
func ChatMarker(s model.JobStatus) string {
	if e, ok := chatEmoji[s]; ok {
		return e
	}
	return string(s)
}
