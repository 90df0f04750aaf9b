package services

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Change scopes passed to ChangeNotifier.
const (
	ScopeCart     = "cart"
	ScopeOrders   = "orders"
	ScopeWishlist = "wishlist"
)

// ChangeNotifier is told after a commit that a user's cached views are stale.
type ChangeNotifier interface {
	Changed(ctx context.Context, userID string, scopes ...string)
}

// LogNotifier records invalidations in the log. It is the default notifier of
// both binaries.
type LogNotifier struct {
	logger logrus.FieldLogger
}

func NewLogNotifier(logger logrus.FieldLogger) *LogNotifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Changed(ctx context.Context, userID string, scopes ...string) {
	n.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"scopes":  scopes,
	}).Debug("User views invalidated")
}

type nopNotifier struct{}

func (nopNotifier) Changed(context.Context, string, ...string) {}

func notifierOrNop(n ChangeNotifier) ChangeNotifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
