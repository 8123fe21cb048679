// ABOUTME: Interactive surfaces started from the CLI
// ABOUTME: Launches the share web server and the terminal UI
package cli

import (
	"fmt"

	"github.com/mycrew/mycrew/store"
	"github.com/mycrew/mycrew/tui"
	"github.com/mycrew/mycrew/web"
)

// WebCommand serves the share page until the server stops.
func WebCommand(s store.Store, addr string, qrSize int, args []string) error {
	fs := newFlagSet("web")
	listen := fs.String("addr", addr, "Listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	server, err := web.NewServer(s, qrSize)
	if err != nil {
		return err
	}
	fmt.Fprintf(Stdout, "Serving on http://%s\n", *listen)
	return server.Start(*listen)
}

// TUICommand runs the full-screen interface.
func TUICommand(s store.Store) error {
	return tui.Run(s)
}
