package cart

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"

	"github.com/bookhaven/storefront/core/logger"
	"github.com/bookhaven/storefront/core/storage"
)

// syncProgress is persisted under storage.KeyCartSync while a local cart is
// being merged into the remote one.
type syncProgress struct {
	Batch  string   `json:"batch"`
	Synced []string `json:"synced"`
}

// idempotencyKey is stable for a line within one sync batch so a retried add
// is recognized by the cart service.
func (p syncProgress) idempotencyKey(id string) string {
	batch, err := uuid.Parse(p.Batch)
	if err != nil {
		batch = uuid.Nil
	}
	return uuid.NewSHA1(batch, []byte(id)).String()
}

// SyncOnLogin merges the anonymous local cart into the remote cart of the
// actor who just logged in, then switches the store to remote mode.
//
// Every local line is replayed as a remote add. Progress is persisted after
// each line, so calling SyncOnLogin again after a partial failure skips lines
// that already made it and reuses their idempotency keys. On partial failure
// the store stays in local mode and ErrSyncIncomplete is returned.
func (s *Store) SyncOnLogin(ctx context.Context, remote RemoteCart) error {
	s.op.Lock()
	defer s.op.Unlock()
	if s.disposed.Load() {
		return ErrDisposed
	}

	local, ok := s.Mode().(LocalMode)
	if !ok {
		// Nothing local left to merge.
		s.setMode(Remote(remote))
		return s.reload(ctx, remote)
	}

	lines, err := readLocal(ctx, local.Storage, s.log)
	if err != nil {
		return s.fail(ctx, "Could not merge your cart", errors.Join(ErrSyncIncomplete, err))
	}

	if len(lines) > 0 {
		if err := s.replay(ctx, local.Storage, remote, lines); err != nil {
			return s.fail(ctx, "Some cart items could not be saved to your account", err)
		}
	}

	// Progress outlives the local lines it covers: a later sync over lines that
	// could not be deleted must skip them, not add them again.
	if err := local.Storage.Delete(ctx, storage.KeyCart); err != nil {
		s.log.WarnContext(ctx, "failed to clear synced local cart", logger.Error(err))
	} else if err := local.Storage.Delete(ctx, storage.KeyCartSync); err != nil {
		s.log.WarnContext(ctx, "failed to clear cart sync progress", logger.Error(err))
	}

	s.setMode(Remote(remote))
	s.log.InfoContext(ctx, "local cart merged", logger.Count("lines", len(lines)))
	return s.reload(ctx, remote)
}

func (s *Store) replay(ctx context.Context, st storage.Storage, remote RemoteCart, lines []Line) error {
	progress, err := storage.GetJSON[syncProgress](ctx, st, storage.KeyCartSync)
	if err != nil && !errors.Is(err, storage.ErrNotFound) && !errors.Is(err, storage.ErrCorrupted) {
		return errors.Join(ErrSyncIncomplete, err)
	}
	if _, perr := uuid.Parse(progress.Batch); err != nil || perr != nil {
		progress = syncProgress{Batch: uuid.NewString()}
		// The batch id must be durable before the first add so retries reuse its keys.
		if err := storage.SetJSON(ctx, st, storage.KeyCartSync, progress); err != nil {
			return errors.Join(ErrSyncIncomplete, err)
		}
	}

	for _, l := range lines {
		if slices.Contains(progress.Synced, l.ID) {
			continue
		}
		if s.disposed.Load() {
			return ErrDisposed
		}
		if err := remote.AddItem(ctx, l.ID, l.Quantity, progress.idempotencyKey(l.ID)); err != nil {
			return errors.Join(ErrSyncIncomplete, err)
		}
		progress.Synced = append(progress.Synced, l.ID)
		if err := storage.SetJSON(ctx, st, storage.KeyCartSync, progress); err != nil {
			return errors.Join(ErrSyncIncomplete, err)
		}
	}
	return nil
}
