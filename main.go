package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/swind/go-jvmmap/cli"
)

func main() {
	cfg, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Println(cli.Usage)
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(-1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println(cli.Usage)
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(-1)
	}

	if err := cli.Run(context.Background(), cfg); err != nil {
		if cfg.Stacktrace {
			fmt.Fprintf(os.Stderr, "%s\n%s", err, debug.Stack())
		} else {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		os.Exit(-1)
	}

	os.Exit(0)
}
