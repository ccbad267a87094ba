// Package delivery implements the out-of-band token delivery
// collaborator. The real channel (email, SMS) is deployment-specific;
// LogSender is the default stand-in.
package delivery

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/models"
	"github.com/google/uuid"
)

// LogSender records that a token left the core. It logs the event,
// never the token itself.
type LogSender struct{}

func (LogSender) Deliver(ctx context.Context, accountID uuid.UUID, kind models.TokenKind, plaintext string) error {
	slog.Info("token handed off for delivery", "account_id", accountID, "kind", kind)
	return nil
}
