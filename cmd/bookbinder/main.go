package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"bookbinder/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		if errors.Is(err, services.ErrInvalidInputPath) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}
