package domain

import "time"

// Activation attempt outcomes recorded on the audit trail.
const (
	OutcomeActivated        = "activated"
	OutcomeRejectedBanned   = "rejected_banned"
	OutcomeRejectedDisabled = "rejected_disabled"
	OutcomeRejectedUsed     = "rejected_used"
	OutcomeRejectedExpired  = "rejected_expired"
	OutcomeNotFound         = "not_found"
)

// ActivationEvent records one activation attempt against a license key.
// The trail is an archive; it never feeds back into license state.
type ActivationEvent struct {
	Key       string
	AppID     string
	Outcome   string
	Source    string
	ClientIP  string
	Timestamp time.Time
}
