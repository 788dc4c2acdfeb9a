// Package debug holds the tooling that is only started when the server is
// running with debugging.enabled.
package debug

import (
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"

	"github.com/sirupsen/logrus"

	"github.com/dcrodman/termcred/internal/core"
)

// PprofHandler returns a mux exposing the runtime profiles under /debug/pprof/.
func PprofHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// StartUtilities spins off the services associated with debug mode. It returns
// the address pprof is listening on, or "" if debugging is disabled.
// See https://golang.org/pkg/net/http/pprof/
func StartUtilities(cfg *core.Config, log logrus.FieldLogger) (string, error) {
	if !cfg.Debugging.Enabled {
		return "", nil
	}

	// Only ever bind to localhost; the profiles expose process internals.
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", cfg.Debugging.PprofPort))
	if err != nil {
		return "", fmt.Errorf("error starting pprof server: %w", err)
	}
	log.Infof("starting pprof server on %s", listener.Addr())

	go func() {
		if err := http.Serve(listener, PprofHandler()); err != nil {
			log.Infof("pprof server exited: %s", err)
		}
	}()
	return listener.Addr().String(), nil
}
