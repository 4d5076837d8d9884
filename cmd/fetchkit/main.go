// Command fetchkit performs HTTP requests from the command line.
package main

import (
	"context"
	"os"

	"github.com/kbukum/fetchkit/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:]))
}
