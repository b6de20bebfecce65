package tasks

import (
	"context"

	"github.com/adnsv/sitepipe/devserver"
)

// Serve runs the live-reload development server over server.base-dir until
// ctx is cancelled.
func (p *Pipeline) Serve(ctx context.Context) error {
	cfg := p.prj.Server
	srv := devserver.New(devserver.Options{
		Host: cfg.Host,
		Port: cfg.Port,
		Root: p.prj.Path(cfg.BaseDir),
	}, p.hub, p.log)
	return srv.Run(ctx)
}
