package mail

import (
	"context"
	"sync"

	"github.com/cablecom/leads-api/internal/entity"
)

type LeadMailer interface {
	SendLeadNotification(ctx context.Context, lead entity.Lead) Result
}

// AsyncDispatcher sends each notification on its own goroutine so the
// submitting request never waits for SMTP. Wait blocks until in-flight sends
// finish and is used on shutdown.
type AsyncDispatcher struct {
	Mailer LeadMailer

	wg sync.WaitGroup
}

func NewAsyncDispatcher(mailer LeadMailer) *AsyncDispatcher {
	return &AsyncDispatcher{Mailer: mailer}
}

func (d *AsyncDispatcher) Dispatch(lead entity.Lead) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		// Detached from the request; the notifier applies its own timeout.
		d.Mailer.SendLeadNotification(context.Background(), lead)
	}()
}

func (d *AsyncDispatcher) Wait() {
	d.wg.Wait()
}
