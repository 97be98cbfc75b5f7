package inbound

import "errors"

// RejectReason is reported to the mail system when the origin check fails.
const RejectReason = "Not a Green-Acres email"

var (
	// ErrRejectedOrigin is returned for mail that does not look like it
	// came from the listing portal.
	ErrRejectedOrigin = errors.New("inbound: not a Green-Acres email")
	// ErrNoHTMLBody is returned when no HTML part could be found.
	ErrNoHTMLBody = errors.New("inbound: no html body found")
)
