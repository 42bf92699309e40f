package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bluetuith-org/bluetooth-classic/api/bluetooth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/darkhz/bluescan/discovery"
	"github.com/darkhz/bluescan/permission"
)

type scanRadio struct {
	found     chan discovery.FoundEvent
	completed chan struct{}
	bonded    []discovery.FoundEvent
}

func newScanRadio() *scanRadio {
	return &scanRadio{
		found:     make(chan discovery.FoundEvent, 128),
		completed: make(chan struct{}),
	}
}

func (r *scanRadio) IsScanning() (bool, error) { return false, nil }
func (r *scanRadio) StartScan() error          { return nil }
func (r *scanRadio) CancelScan() error         { return nil }

func (r *scanRadio) Subscribe() (*discovery.Notifications, error) {
	return &discovery.Notifications{
		Found:       r.found,
		Completed:   r.completed,
		Unsubscribe: func() {},
	}, nil
}

func (r *scanRadio) BondedDevices() ([]discovery.FoundEvent, error) {
	return r.bonded, nil
}

func mac(t *testing.T, address string) bluetooth.MacAddress {
	t.Helper()

	m, err := bluetooth.ParseMAC(address)
	require.NoError(t, err)

	return m
}

func newTestSession(t *testing.T, r discovery.Radio, grants string) *discovery.Session {
	t.Helper()

	initial, err := permission.ParseGrants(grants)
	require.NoError(t, err)

	ds, err := discovery.NewSession(r, permission.NewStore(initial, nil), discovery.Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })

	return ds
}

func TestScanStopsAfterDuration(t *testing.T) {
	r := newScanRadio()
	ds := newTestSession(t, r, "all")

	r.found <- discovery.FoundEvent{Address: mac(t, "AA:BB:CC:DD:EE:01"), Name: "Speaker"}

	start := time.Now()
	require.NoError(t, scan(context.Background(), ds, 200*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)

	assert.Equal(t, discovery.StateIdle, ds.State())
	require.Len(t, ds.Devices(), 1)
	assert.Equal(t, "Speaker", ds.Devices()[0].Name)
}

func TestScanEndsOnCompletion(t *testing.T) {
	r := newScanRadio()
	ds := newTestSession(t, r, "all")

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(r.completed)
	}()

	done := make(chan error, 1)
	go func() { done <- scan(context.Background(), ds, 0) }()

	select {
	case err := <-done:
		assert.NoError(t, err)

	case <-time.After(2 * time.Second):
		t.Fatal("scan did not end when the adapter completed")
	}
}

func TestScanNotAuthorized(t *testing.T) {
	ds := newTestSession(t, newScanRadio(), "radio-scan")

	err := scan(context.Background(), ds, time.Second)
	assert.ErrorIs(t, err, discovery.ErrNotAuthorized)
	assert.Equal(t, discovery.StateIdle, ds.State())
}

func TestListBonded(t *testing.T) {
	r := newScanRadio()
	r.bonded = []discovery.FoundEvent{{Address: mac(t, "AA:BB:CC:DD:EE:02"), Name: "Keyboard"}}

	assert.NoError(t, listBonded(newTestSession(t, r, "all")))
	assert.ErrorIs(t, listBonded(newTestSession(t, r, "none")), discovery.ErrNotAuthorized)
}

func TestWriteDevices(t *testing.T) {
	var out bytes.Buffer

	writeDevices(&out, "Bonded devices", []discovery.DeviceRecord{
		discovery.NewDeviceRecord(mac(t, "AA:BB:CC:DD:EE:03"), ""),
	})

	assert.Contains(t, out.String(), "Bonded devices (1):")
	assert.Contains(t, out.String(), discovery.UnknownDeviceName)
	assert.Contains(t, out.String(), "AA:BB:CC:DD:EE:03")
}

func TestFormatAdapters(t *testing.T) {
	adapter := bluetooth.AdapterData{UniqueName: "hci0"}
	adapter.Address = mac(t, "00:1A:7D:DA:71:13")

	assert.Equal(t, "List of adapters:\n- hci0 (00:1A:7D:DA:71:13)", formatAdapters([]bluetooth.AdapterData{adapter}))
}

func TestFlagEnvVars(t *testing.T) {
	env := make(map[string][]string)
	for _, flag := range flags() {
		if f, ok := flag.(*cli.StringFlag); ok {
			env[f.Name] = f.EnvVars
		}
	}

	assert.Equal(t, []string{"BLUESCAN_ADAPTER"}, env["adapter"])
	assert.Equal(t, []string{"BLUESCAN_RESET_POLICY"}, env["reset-policy"])
	assert.Equal(t, []string{"BLUESCAN_LOG_LEVEL"}, env["log-level"])
}

func TestScanPrintsEveryDevice(t *testing.T) {
	var out bytes.Buffer

	saved := output
	output = &out
	t.Cleanup(func() { output = saved })

	r := newScanRadio()
	ds := newTestSession(t, r, "all")

	const count = 100
	for i := range count {
		r.found <- discovery.FoundEvent{Address: mac(t, fmt.Sprintf("AA:BB:CC:DD:%02X:%02X", i/256, i%256))}
	}

	require.NoError(t, scan(context.Background(), ds, 300*time.Millisecond))
	require.Len(t, ds.Devices(), count)

	assert.Equal(t, count, strings.Count(out.String(), "[+] "))
	assert.Contains(t, out.String(), fmt.Sprintf("Discovered devices (%d):", count))
}
