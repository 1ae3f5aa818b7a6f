package authflows

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

func (e *Engine) confirmationLink(path, tokenValue string) string {
	base := strings.TrimSuffix(e.config.Mail.AppBaseURL, "/")
	return base + path + "?token=" + url.QueryEscape(tokenValue)
}

func (e *Engine) sendVerificationMail(ctx context.Context, to, tokenValue string) error {
	link := e.confirmationLink(e.config.Mail.VerificationPath, tokenValue)
	body := fmt.Sprintf(`<p>Click <a href=%q>here</a> to confirm your email.</p>`, link)
	return e.deliverMail(ctx, to, "Confirm your email", body)
}

func (e *Engine) sendTwoFactorMail(ctx context.Context, to, code string) error {
	body := fmt.Sprintf("<p>Your 2FA code: %s</p>", code)
	return e.deliverMail(ctx, to, "2FA Code", body)
}

func (e *Engine) sendResetMail(ctx context.Context, to, tokenValue string) error {
	link := e.confirmationLink(e.config.Mail.ResetPath, tokenValue)
	body := fmt.Sprintf(`<p>Click <a href=%q>here</a> to reset your password.</p>`, link)
	return e.deliverMail(ctx, to, "Reset your password", body)
}

func (e *Engine) deliverMail(ctx context.Context, to, subject, body string) error {
	if err := e.mailer.Send(ctx, to, subject, body); err != nil {
		e.metricInc(MetricMailDeliveryFailure)
		e.emitAudit(ctx, auditEventMailDeliveryFailure, false, "", "", ErrMailDeliveryFailed,
			map[string]string{"subject": subject})
		return fmt.Errorf("%w: %v", ErrMailDeliveryFailed, err)
	}
	return nil
}
