package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/darkhz/bluescan/discovery"
)

// authorize requests any missing capabilities, and waits for the answers.
func authorize(ds *discovery.Session) error {
	gate := ds.Gate()
	if gate.Authorized() {
		return nil
	}

	answered := make(chan discovery.Grants, 1)
	gate.RequestAuthorization(gate.Missing(), func(grants discovery.Grants) {
		answered <- grants
	})

	<-answered

	if !gate.Authorized() {
		return discovery.ErrNotAuthorized
	}

	return nil
}

// listBonded prints the devices bonded to the adapter.
func listBonded(ds *discovery.Session) error {
	if err := authorize(ds); err != nil {
		return err
	}

	records, err := ds.SnapshotBonded()
	if err != nil {
		return err
	}

	printDevices("Bonded devices", records)

	return nil
}

// scan runs a single discovery session, printing each device as it is found.
// The session ends when ctx is cancelled, the duration elapses, the process is
// interrupted, or the adapter stops discovering on its own.
func scan(ctx context.Context, ds *discovery.Session, duration time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := authorize(ds); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if duration > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	found := make(chan discovery.DeviceRecord, 64)
	printed := make(chan struct{})

	unobserve := ds.Registry().Observe(func(change discovery.Change) {
		if change.Kind != discovery.ChangeInserted {
			return
		}

		select {
		case found <- change.Record:
		case <-printed:
		}
	})
	defer unobserve()

	sub, err := ds.Start()
	if err != nil {
		return err
	}

	spinner := progressbar.NewOptions(
		-1,
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-sub.Done():
		}

		return ds.Stop()
	})

	g.Go(func() error {
		defer close(printed)

		t := time.NewTicker(100 * time.Millisecond)
		defer t.Stop()

		for {
			select {
			case record := <-found:
				spinner.Clear()
				printDevice(record)

			case <-t.C:
				spinner.Add(1)

			case <-sub.Done():
				for {
					select {
					case record := <-found:
						spinner.Clear()
						printDevice(record)

					default:
						return spinner.Finish()
					}
				}
			}
		}
	})

	err = g.Wait()

	if sub.Completed() {
		printWarn("The adapter stopped discovering")
	}
	printDevices("Discovered devices", ds.Devices())

	return err
}
