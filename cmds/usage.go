package cmds

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
)

func (p *Executor) PrintUsage() {
	p.printCommands(os.Stderr, p.commands, "")
}

func (p *Executor) printCommands(w io.Writer, commands map[string]*Command, indent string) {
	printed := make(map[*Command]bool)
	for _, name := range slices.Sorted(maps.Keys(commands)) {
		command := commands[name]
		if command == nil || printed[command] {
			continue
		}
		printed[command] = true

		line := indent + name
		if len(command.Aliases) > 0 {
			line += " (" + strings.Join(command.Aliases, ", ") + ")"
		}
		fmt.Fprintln(w, line)
		if command.Description != "" {
			fmt.Fprintln(w, indent+"\t"+command.Description)
		}

		if len(command.Subs) > 0 {
			p.printCommands(w, command.Subs, indent+"  ")
		}
	}
}
