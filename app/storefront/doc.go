// Package storefront is the BookHaven storefront backend-for-frontend.
//
// Every browser gets a visitor cookie. The visitor's Workspace bundles the
// session, cart, wishlist, checkout and notification buffer, and is kept in a
// bounded Registry; evicted workspaces are rebuilt from storage on the next
// request.
//
// The JSON API lives under /api. Page routes are protected by the guards in
// core/guard and only decide whether a visitor may see a page:
//
//	app, err := storefront.New(cfg, client, storefront.BindBookstore(client), st,
//		storefront.WithLogger(log),
//	)
//	if err != nil {
//		return err
//	}
//	defer app.Close()
//	eg.Go(srv.Run(ctx, app.Router()))
package storefront
