// Package server runs the storefront HTTP server with graceful shutdown.
//
//	srv, err := server.New(cfg, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, router))
//	return g.Wait()
//
// Request contexts are detached from the server context, so handlers that are
// already running finish their upstream calls during shutdown.
package server
