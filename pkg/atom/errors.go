package atom

import (
	cerrors "github.com/carbyne-dev/carbyne/internal/errors"
)

var (
	// ErrDestroyed is returned by mutating methods of a destroyed node.
	ErrDestroyed error = cerrors.New(cerrors.CodeDestroyed)

	// ErrNoRuntime is returned when a node is mounted without a runtime.
	ErrNoRuntime error = cerrors.New(cerrors.CodeNoRuntime)
)

func hostError(op string, err error) error {
	return cerrors.New(cerrors.CodeHost).WithDetail(op).Wrap(err)
}
