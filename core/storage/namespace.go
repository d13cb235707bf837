package storage

import "context"

// Namespaced prefixes every key so several owners can share one backend.
type Namespaced struct {
	base   Storage
	prefix string
}

var _ Storage = Namespaced{}

// Namespace scopes s to keys under prefix, e.g. one namespace per visitor.
func Namespace(s Storage, prefix string) Namespaced {
	return Namespaced{base: s, prefix: prefix + ":"}
}

func (n Namespaced) key(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	return n.prefix + key, nil
}

func (n Namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	k, err := n.key(key)
	if err != nil {
		return nil, err
	}
	return n.base.Get(ctx, k)
}

func (n Namespaced) Set(ctx context.Context, key string, value []byte) error {
	k, err := n.key(key)
	if err != nil {
		return err
	}
	return n.base.Set(ctx, k, value)
}

func (n Namespaced) Delete(ctx context.Context, key string) error {
	k, err := n.key(key)
	if err != nil {
		return err
	}
	return n.base.Delete(ctx, k)
}
