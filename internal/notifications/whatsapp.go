package notifications

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// WhatsAppChannel verifies and holds the WhatsApp Business configuration a
// restaurant connects during onboarding. It satisfies
// onboarding.WhatsAppVerifier.
type WhatsAppChannel struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewWhatsAppChannel creates a channel client against the provider API.
// An empty baseURL disables remote verification; format checks still apply.
func NewWhatsAppChannel(baseURL string, logger *zap.Logger) *WhatsAppChannel {
	return &WhatsAppChannel{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// VerifyChannel checks that the phone number is registered with the
// provider and the access token is accepted.
func (w *WhatsAppChannel) VerifyChannel(ctx context.Context, phoneNumber, accessToken string) error {
	if accessToken == "" {
		return fmt.Errorf("access token is required")
	}
	if w.baseURL == "" {
		w.logger.Debug("WhatsApp verification skipped, no provider configured",
			zap.String("phone", phoneNumber))
		return nil
	}

	endpoint := fmt.Sprintf("%s/v1/contacts/%s", w.baseURL, url.PathEscape(phoneNumber))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build verification request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("whatsapp access token rejected")
	case http.StatusNotFound:
		return fmt.Errorf("phone number %s is not registered with WhatsApp Business", phoneNumber)
	default:
		return fmt.Errorf("whatsapp verification failed with status %d", resp.StatusCode)
	}
}
