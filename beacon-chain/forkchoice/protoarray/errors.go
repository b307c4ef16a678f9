package protoarray

import "github.com/pkg/errors"

var (
	errInvalidDeltaLength    = errors.New("delta length doesn't match the number of nodes")
	errInvalidNodeIndex      = errors.New("node index out of range")
	errUnknownJustifiedRoot  = errors.New("unknown justified root")
	errInvalidJustifiedIndex = errors.New("justified index is invalid")
	errUnknownNodeRoot       = errors.New("node root does not exist")
	errUnknownCommonAncestor = errors.New("no common ancestor between the given roots")
)
