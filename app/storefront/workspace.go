package storefront

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/bookhaven/storefront/core/cart"
	"github.com/bookhaven/storefront/core/checkout"
	"github.com/bookhaven/storefront/core/logger"
	"github.com/bookhaven/storefront/core/notify"
	"github.com/bookhaven/storefront/core/session"
	"github.com/bookhaven/storefront/core/storage"
	"github.com/bookhaven/storefront/core/wishlist"
)

// Workspace holds the stores of one visitor. The storefront keeps one per
// visitor cookie; every request of that visitor operates on the same stores.
type Workspace struct {
	ID       string
	Session  *session.Store
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Checkout *checkout.Service
	Notices  *notify.Buffer

	storage storage.Storage
	remote  VisitorAPI
	log     *slog.Logger

	initOnce sync.Once
	ready    chan struct{}
	initErr  error
}

// WorkspaceDeps are the shared services a workspace is built from.
type WorkspaceDeps struct {
	API     API
	Bind    Binder
	Storage storage.Storage
	Logger  *slog.Logger
	// NoticeBuffer is the capacity of the per-visitor notification buffer.
	NoticeBuffer int
}

// NewWorkspace creates the stores of visitor id. Durable state lives in a
// namespace of deps.Storage private to the visitor. Nothing touches the
// network until Initialize.
func NewWorkspace(id string, deps WorkspaceDeps) *Workspace {
	log := deps.Logger
	if log == nil {
		log = logger.Discard()
	}
	log = log.With(logger.VisitorID(id))

	st := storage.Namespace(deps.Storage, "visitor:"+id)
	notices := notify.NewBuffer(deps.NoticeBuffer)
	notifier := notify.Multi(notices, notify.Log(log))

	ws := &Workspace{
		ID:      id,
		Notices: notices,
		storage: st,
		log:     log,
		ready:   make(chan struct{}),
	}

	ws.Session = session.NewStore(deps.API,
		session.WithStorage(st),
		session.WithLogger(log),
	)
	ws.remote = deps.Bind(ws.Session.Token)
	ws.Cart = cart.NewStore(cart.Local(st), deps.API,
		cart.WithLogger(log),
		cart.WithNotifier(notifier),
	)
	ws.Wishlist = wishlist.NewStore(st,
		wishlist.WithLogger(log),
		wishlist.WithNotifier(notifier),
	)
	ws.Checkout = checkout.NewService(ws.remote, ws.Cart,
		checkout.WithLogger(log),
		checkout.WithNotifier(notifier),
	)
	return ws
}

// Initialize resolves the session, selects the cart mode and loads the cart
// and wishlist. An authenticated visitor's leftover local cart is merged into
// the account cart. The work runs once per workspace and is not aborted by ctx;
// a caller whose ctx ends early gets the session state as it is, which may
// still be loading.
func (w *Workspace) Initialize(ctx context.Context) session.State {
	w.initOnce.Do(func() {
		go func() {
			defer close(w.ready)
			w.initErr = w.initialize(context.WithoutCancel(ctx))
		}()
	})

	select {
	case <-w.ready:
	case <-ctx.Done():
	}
	return w.Session.State()
}

// Ready reports whether Initialize has completed, and its load error if any.
func (w *Workspace) Ready() (bool, error) {
	select {
	case <-w.ready:
		return true, w.initErr
	default:
		return false, nil
	}
}

func (w *Workspace) initialize(ctx context.Context) error {
	st := w.Session.Initialize(ctx)

	var errs []error
	if st.Authenticated {
		// A local cart left by an interrupted merge is finished here; with
		// nothing stored locally this is a plain remote load.
		if err := w.Cart.SyncOnLogin(ctx, w.remote); err != nil {
			errs = append(errs, err)
		}
	} else if err := w.Cart.Load(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := w.Wishlist.Load(ctx); err != nil {
		errs = append(errs, err)
	}
	err := errors.Join(errs...)
	if err != nil {
		w.log.WarnContext(ctx, "workspace loaded with errors", logger.Error(err))
	}
	return err
}

// Login authenticates the visitor and merges the anonymous cart into the
// account cart. A failed merge does not fail the login: the cart stays local,
// the visitor is notified, and the next login retries the remaining lines.
func (w *Workspace) Login(ctx context.Context, creds session.Credentials) (session.Identity, error) {
	identity, err := w.Session.Login(ctx, creds)
	if err != nil {
		return session.Identity{}, err
	}
	if err := w.Cart.SyncOnLogin(ctx, w.remote); err != nil {
		w.log.WarnContext(ctx, "cart merge incomplete", logger.Error(err))
	}
	return identity, nil
}

// Logout ends the session and returns the cart to device storage.
// The returned error only reports a failed remote logout.
func (w *Workspace) Logout(ctx context.Context) error {
	err := w.Session.Logout(ctx)
	w.Cart.SwitchMode(cart.Local(w.storage))
	if lerr := w.Cart.Load(ctx); lerr != nil {
		w.log.WarnContext(ctx, "failed to reload local cart", logger.Error(lerr))
	}
	return err
}

// Purge drops the visitor's credential. The cart is returned to device
// storage so no remote call is made on behalf of the purged credential.
func (w *Workspace) Purge(ctx context.Context) {
	w.Session.Purge(ctx)
	w.Cart.SwitchMode(cart.Local(w.storage))
	if err := w.Cart.Load(ctx); err != nil {
		w.log.WarnContext(ctx, "failed to reload local cart", logger.Error(err))
	}
}

// Dispose stops the workspace. Remote results that arrive afterwards are
// discarded instead of being applied.
func (w *Workspace) Dispose() {
	w.Cart.Dispose()
	w.log.Debug("workspace disposed")
}
