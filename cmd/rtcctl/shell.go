package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/shlex"
	"github.com/peterh/liner"
)

func (a *app) shell(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	prompt := a.chip.Name() + "> "
	for {
		input, err := line.Prompt(prompt)
		switch {
		case errors.Is(err, liner.ErrPromptAborted), errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
		line.AppendHistory(input)
		if a.exec(ctx, input) {
			return nil
		}
	}
}

// exec runs one shell line and reports whether the shell should exit.
func (a *app) exec(ctx context.Context, input string) bool {
	args, err := shlex.Split(input)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return false
	}
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "exit", "quit":
		return true
	case "shell":
		fmt.Fprintln(a.out, "already in the shell")
		return false
	}
	if err := a.run(ctx, args); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
	}
	return false
}
