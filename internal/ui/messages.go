package ui

// ReplyMsg carries the bot's answer to one console command line.
type ReplyMsg struct {
	Line  string
	Reply string
}
