package report

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fudanglp/docker-layers/internal/errors"
	"github.com/fudanglp/docker-layers/internal/logging"
)

// ListenAddr binds the report to loopback on a free port.
const ListenAddr = "127.0.0.1:0"

// readTimeout bounds how long one client may hold the single-threaded loop.
const readTimeout = 5 * time.Second

var urlStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))

// Serve listens on ListenAddr, writes the page URL to w, and serves html
// until ctx is cancelled.
func Serve(ctx context.Context, html string, w io.Writer) error {
	ln, err := net.Listen("tcp", ListenAddr)
	if err != nil {
		return errors.Wrap(errors.ExitGeneralError, "start report server", err)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Report available at %s\n", urlStyle.Render("http://"+ln.Addr().String()))
	fmt.Fprintln(w, "Press Ctrl+C to stop.")

	return ServeListener(ctx, ln, html)
}

// ServeListener answers connections on ln one at a time with html until ctx
// is cancelled, then closes ln.
func ServeListener(ctx context.Context, ln net.Listener, html string) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer ln.Close()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if stderrors.Is(err, net.ErrClosed) {
				return nil
			}
			logging.Debug("accept failed", "error", err)
			continue
		}
		respond(conn, html)
	}
}

// respond answers one request with the page and closes the connection.
func respond(conn net.Conn, html string) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(readTimeout))

	req, err := http.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		logging.Debug("unreadable report request", "remote", conn.RemoteAddr(), "error", err)
		return
	}
	logging.Debug("report request", "method", req.Method, "path", req.URL.Path)

	status := http.StatusOK
	body := html
	switch {
	case req.Method != http.MethodGet && req.Method != http.MethodHead:
		status, body = http.StatusMethodNotAllowed, ""
	case req.URL.Path != "/" && req.URL.Path != "/index.html":
		status, body = http.StatusNotFound, ""
	}

	resp := &http.Response{
		StatusCode:    status,
		ProtoMajor:    1,
		ProtoMinor:    1,
		Request:       req,
		Header:        http.Header{},
		ContentLength: int64(len(body)),
		Close:         true,
	}
	resp.Header.Set("Content-Type", "text/html; charset=utf-8")
	resp.Header.Set("Content-Length", strconv.Itoa(len(body)))
	if req.Method != http.MethodHead {
		resp.Body = io.NopCloser(strings.NewReader(body))
	}
	if err := resp.Write(conn); err != nil {
		logging.Debug("report response failed", "error", err)
	}
}
