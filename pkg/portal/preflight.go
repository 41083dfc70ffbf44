package portal

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dealerops/ticketscope/pkg/whttp"
)

// Preflight checks that the portal answers at all before the cost of a
// browser launch is paid. The portal is regularly down for maintenance;
// failing here turns a slow all-accounts failure into one log line.
func Preflight(ctx context.Context, url string, log *logrus.Logger) error {
	client := whttp.NewClient(3)

	res, err := whttp.Send(ctx, &whttp.Request{Method: "GET", URL: url}, client)
	if err != nil {
		return fmt.Errorf("portal unreachable: %w", err)
	}
	if res.StatusCode >= 500 {
		return fmt.Errorf("portal returned %d", res.StatusCode)
	}

	if res.HTTPTitle != "" {
		log.Infof("Portal reachable: %q (%d)", res.HTTPTitle, res.StatusCode)
	} else {
		log.Infof("Portal reachable (%d)", res.StatusCode)
	}
	return nil
}
