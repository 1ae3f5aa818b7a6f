package authflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/OrionVault/authflows/internal"
	"github.com/OrionVault/authflows/internal/stores"
)

func (e *Engine) tokenTTL(kind stores.TokenKind) time.Duration {
	switch kind {
	case stores.KindTwoFactor:
		return e.config.TwoFactor.CodeTTL
	case stores.KindPasswordReset:
		return e.config.Tokens.ResetTTL
	default:
		return e.config.Tokens.VerificationTTL
	}
}

// issueToken mints a fresh token for kind+email, superseding any active
// one of the same kind. Two-factor tokens carry a numeric one-time code
// instead of an opaque value.
func (e *Engine) issueToken(ctx context.Context, kind stores.TokenKind, email string) (*stores.TokenRecord, error) {
	var (
		value string
		err   error
	)
	if kind == stores.KindTwoFactor {
		value, err = internal.NewOTP(e.config.TwoFactor.OTPDigits)
	} else {
		value, err = internal.NewTokenValue()
	}
	if err != nil {
		return nil, err
	}

	ttl := e.tokenTTL(kind)
	record := &stores.TokenRecord{
		ID:        uuid.NewString(),
		Email:     email,
		Value:     value,
		ExpiresAt: time.Now().Add(ttl).Unix(),
	}

	if err := e.tokens.Create(ctx, kind, record, ttl, e.config.Tokens.ExpiredRetention); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenStoreUnavailable, err)
	}

	return record, nil
}

// lookupToken reads a token by value and classifies it without
// mutation. On [ErrTokenExpired] the record is returned alongside the
// error so the caller can prune it.
func (e *Engine) lookupToken(ctx context.Context, kind stores.TokenKind, value string) (*stores.TokenRecord, error) {
	record, err := e.tokens.GetByValue(ctx, kind, value)
	if err != nil {
		if errors.Is(err, stores.ErrTokenNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenStoreUnavailable, err)
	}

	if time.Now().Unix() > record.ExpiresAt {
		return record, ErrTokenExpired
	}

	return record, nil
}

// consumeToken atomically claims and removes the token. Exactly one
// concurrent caller wins; the rest see [ErrTokenNotFound].
func (e *Engine) consumeToken(ctx context.Context, kind stores.TokenKind, value string) (*stores.TokenRecord, error) {
	record, err := e.tokens.Consume(ctx, kind, value)
	if err != nil {
		if errors.Is(err, stores.ErrTokenNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenStoreUnavailable, err)
	}

	return record, nil
}

// pruneToken drops an expired record early. Failures are ignored; the
// retention TTL reaps the key regardless.
func (e *Engine) pruneToken(ctx context.Context, kind stores.TokenKind, value string) {
	_, _ = e.tokens.Delete(ctx, kind, value)
}
