// Package devserver serves the source tree over HTTP and pushes reload
// notifications to the pages it served.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 5 * time.Second

type Options struct {
	Host string
	Port int    // 0 picks a free port
	Root string // directory to serve
}

func (o Options) Address() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

type Server struct {
	opts Options
	hub  *Hub
	log  *slog.Logger
	echo *echo.Echo
}

func New(opts Options, hub *Hub, log *slog.Logger) *Server {
	s := &Server{
		opts: opts,
		hub:  hub,
		log:  log,
		echo: echo.New(),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(echomw.Recover())
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("Cache-Control", "no-store")
			return next(c)
		}
	})

	s.echo.GET(clientPath, func(c echo.Context) error {
		return c.Blob(http.StatusOK, "text/javascript; charset=utf-8", clientJS)
	})
	s.echo.GET(wsPath, hub.ServeWS)
	s.echo.GET("/*", s.serveFile)
	return s
}

// Handler exposes the routes without binding a listener.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run listens until ctx is cancelled, then disconnects reload clients and
// shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Address())
	if err != nil {
		return err
	}
	s.echo.Listener = ln

	errc := make(chan error, 1)
	go func() {
		errc <- s.echo.Start("")
	}()
	s.log.Info("serving", "root", s.opts.Root, "url", "http://"+ln.Addr().String())

	select {
	case err := <-errc:
		s.hub.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.hub.Close()
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) serveFile(c echo.Context) error {
	name := path.Clean("/" + c.Param("*"))
	fn := filepath.Join(s.opts.Root, filepath.FromSlash(name))

	st, err := os.Stat(fn)
	if err == nil && st.IsDir() {
		fn = filepath.Join(fn, "index.html")
		st, err = os.Stat(fn)
	}
	if err != nil || st.IsDir() {
		return echo.ErrNotFound
	}

	if !strings.EqualFold(filepath.Ext(fn), ".html") {
		return c.File(fn)
	}
	buf, err := os.ReadFile(fn)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, echo.MIMETextHTMLCharsetUTF8, InjectClient(buf))
}
