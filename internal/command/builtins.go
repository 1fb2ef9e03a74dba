package command

// Names and help text of the commands every server registers first.
const (
	HelpName = "help"
	HelpText = "Shows a list of available commands."
	ExitName = "exit"
	ExitText = "Exits the Telnet session."
)

// Help lists every registered command as "<name> - <help>".
func Help(c Context, _ string) {
	c.Println("Available commands:")
	for _, e := range c.Commands() {
		c.Println(e.Name + " - " + e.Help)
	}
}

// Exit says goodbye and ends the session.
func Exit(c Context, _ string) {
	c.Println("Goodbye!")
	c.Disconnect()
}

// Reply returns a handler that answers with a fixed text.
func Reply(text string) HandlerFunc {
	return func(c Context, _ string) {
		c.Println(text)
	}
}

// RegisterBuiltins adds help and exit to r.
func RegisterBuiltins(r *Registry) error {
	if err := r.Add(HelpName, HelpText, Help); err != nil {
		return err
	}
	return r.Add(ExitName, ExitText, Exit)
}
