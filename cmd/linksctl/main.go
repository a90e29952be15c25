// Command linksctl edits the investor Related Links tree of a running
// refexcms server.
//
// Usage:
//
//	linksctl [-server URL] [-token TOKEN] <command> [flags]
//
// Every editing command loads the stored tree, applies one change and
// saves the whole tree back. Run "linksctl help" for the command list.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"refexcms/internal/config"
	"refexcms/internal/gateway"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "linksctl:", err)
		os.Exit(1)
	}

	global := flag.NewFlagSet("linksctl", flag.ExitOnError)
	server := global.String("server", defaultServer(), "CMS base URL (REFEXCMS_URL)")
	token := global.String("token", os.Getenv("REFEXCMS_TOKEN"), "bearer token (REFEXCMS_TOKEN)")
	global.Usage = func() { printUsage(global.Output()) }
	global.Parse(os.Args[1:])

	if global.NArg() == 0 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		client:  gateway.New(*server, gateway.WithToken(*token)),
		out:     os.Stdout,
		errOut:  os.Stderr,
		in:      bufio.NewReader(os.Stdin),
		baseURL: *server,
	}
	if err := a.run(ctx, global.Args()); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "linksctl:", err)
		os.Exit(1)
	}
}

// defaultServer prefers REFEXCMS_URL, then the server's own API_BASE_URL.
func defaultServer() string {
	if v := os.Getenv("REFEXCMS_URL"); v != "" {
		return v
	}
	if v := os.Getenv("API_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}
