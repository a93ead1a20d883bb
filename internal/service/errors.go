package service

import "errors"

var (
	// ErrEmptyConversation is returned when analysis is requested for a
	// conversation with no stored messages. There is nothing to recompute and
	// nothing cached worth returning.
	ErrEmptyConversation = errors.New("conversation has no messages")

	// ErrProviderUnavailable is returned when every provider failed and no
	// cached record exists to fall back on.
	ErrProviderUnavailable = errors.New("no inference provider available")

	// ErrUnknownKind is returned for analysis kinds outside the known set.
	ErrUnknownKind = errors.New("unknown analysis kind")
)
