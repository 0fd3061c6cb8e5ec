package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"github.com/dmitrijs2005/medmind-auth/internal/logging"
)

// Transport drivers selectable from configuration.
const (
	DriverLog = "log"
	DriverSES = "ses"
)

// NewTransport builds the transport named by driver.
func NewTransport(ctx context.Context, driver string, ses SESConfig, log logging.Logger) (Transport, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverLog, "":
		return NewLogTransport(log), nil
	case DriverSES:
		return NewSESTransport(ctx, ses)
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", common.ErrMailerNotConfigured, driver)
	}
}
