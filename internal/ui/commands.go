package ui

import "strings"

const shellHelp = `commands:
  add [path]   add a file (or the active one again) with a note
  clear        reset the accumulated content
  show         print the accumulated content
  files        list the files added so far
  export       export the accumulated content again
  help         show this help
  quit         leave the session`

type command struct {
	name string
	arg  string
}

func parseCommand(line string) command {
	line = strings.TrimSpace(line)
	if line == "" {
		return command{}
	}
	name, arg, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	switch name {
	case "a":
		name = "add"
	case "c", "reset":
		name = "clear"
	case "s", "cat":
		name = "show"
	case "ls", "f":
		name = "files"
	case "e", "copy":
		name = "export"
	case "?", "h":
		name = "help"
	case "q", "exit":
		name = "quit"
	}
	return command{name: name, arg: strings.TrimSpace(arg)}
}
