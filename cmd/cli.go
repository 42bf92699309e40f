package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bluetuith-org/bluetooth-classic/api/bluetooth"
	scfg "github.com/bluetuith-org/bluetooth-classic/api/config"
	"github.com/bluetuith-org/bluetooth-classic/session"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/darkhz/bluescan/discovery"
	"github.com/darkhz/bluescan/logger"
	"github.com/darkhz/bluescan/permission"
	"github.com/darkhz/bluescan/radio"
	"github.com/darkhz/bluescan/ui/app"
	"github.com/darkhz/bluescan/ui/app/views"
	"github.com/darkhz/bluescan/ui/config"
)

// warningDelay keeps a startup warning readable before the interface starts.
const warningDelay = time.Second

// These values are set at compile-time.
var (
	Version  = ""
	Revision = ""
)

// modeFlags holds the flags which select a mode of operation rather than
// a configuration value, and are never saved to the configuration.
var modeFlags = []string{"list-adapters", "list-bonded", "scan", "scan-duration", "generate"}

// Run runs the commandline application.
func Run() error {
	return newApp().Run(os.Args)
}

// newApp returns a new commandline application.
func newApp() *cli.App {
	cli.VersionPrinter = func(cliCtx *cli.Context) {
		fmt.Fprintln(cliCtx.App.Writer, versionString())
	}

	return &cli.App{
		Name:                   "bluescan",
		Usage:                  "Bluetooth device scanner.",
		Description:            "Discover nearby Bluetooth devices and list bonded devices from the terminal.",
		Version:                versionString(),
		DefaultCommand:         "bluescan",
		Compiled:               time.Now(),
		EnableBashCompletion:   true,
		UseShortOptionHandling: true,
		Suggest:                true,
		Flags:                  flags(),
		Action:                 run,
		ExitErrHandler: func(_ *cli.Context, err error) {
			if err != nil {
				printError(err)
			}
		},
	}
}

// versionString returns the version with the revision it was built from.
func versionString() string {
	return Version + " (" + Revision + ")"
}

// flags returns the global flags. Configuration flags can also be set
// through BLUESCAN_* environment variables.
func flags() []cli.Flag {
	env := func(name string) []string {
		return []string{"BLUESCAN_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))}
	}

	return []cli.Flag{
		&cli.BoolFlag{Name: "list-adapters", Aliases: []string{"l"}, Usage: "List available adapters.", Action: listAdapters},
		&cli.BoolFlag{Name: "list-bonded", Aliases: []string{"b"}, Usage: "List the devices bonded to the adapter."},
		&cli.BoolFlag{Name: "scan", Aliases: []string{"s"}, Usage: "Scan for devices without the interface, printing each device as it is found."},
		&cli.DurationFlag{Name: "scan-duration", Aliases: []string{"d"}, Usage: "Stop scanning after the specified duration. (For example, 30s)"},
		&cli.BoolFlag{Name: "generate", Usage: "Generate configuration.", Action: generateConfig},

		&cli.StringFlag{Name: "adapter", Aliases: []string{"a"}, EnvVars: env("adapter"), Usage: "Specify an adapter to use. (For example, hci0)"},
		&cli.StringFlag{Name: "reset-policy", Aliases: []string{"r"}, EnvVars: env("reset-policy"), Usage: "Specify whether discovered devices are kept across scans. ('accumulate' or 'reset-on-start')"},
		&cli.StringFlag{Name: "grant", Aliases: []string{"g"}, EnvVars: env("grant"), Usage: "Specify capabilities granted on launch. ('all', 'none' or for example, 'radio-scan,radio-connect')"},
		&cli.BoolFlag{Name: "power-on", Aliases: []string{"p"}, EnvVars: env("power-on"), Usage: "Power on the adapter if it is powered off."},
		&cli.StringFlag{Name: "log-level", EnvVars: env("log-level"), Usage: "Specify the log level. (For example, debug)"},
		&cli.StringFlag{Name: "log-file", EnvVars: env("log-file"), Usage: "Specify a file to write logs to."},
		&cli.BoolFlag{Name: "no-warning", Aliases: []string{"w"}, EnvVars: env("no-warning"), Usage: "Do not show warnings after startup."},
		&cli.BoolFlag{Name: "no-help-display", Aliases: []string{"i"}, EnvVars: env("no-help-display"), Usage: "Hide the keybinding help line."},
	}
}

// loadConfig loads the configuration file and the global flags.
func loadConfig(cliCtx *cli.Context) (*koanf.Koanf, *config.Config, error) {
	// koanf merges flags of the "global" command into the root namespace.
	cliCtx.Command.Name = "global"

	k, cfg := koanf.New("."), config.NewConfig()

	return k, cfg, cfg.Load(k, cliCtx)
}

// startSession starts a bluetooth session. The caller must stop it.
func startSession() (bluetooth.Session, error) {
	s := session.NewSession()
	if _, _, err := s.Start(nil, scfg.New()); err != nil {
		return nil, err
	}

	return s, nil
}

// listAdapters prints every adapter of the system.
func listAdapters(*cli.Context, bool) error {
	s, err := startSession()
	if err != nil {
		return err
	}
	defer s.Stop()

	fmt.Println(formatAdapters(s.Adapters()))

	return nil
}

// generateConfig saves the configuration values, leaving out the mode flags.
func generateConfig(cliCtx *cli.Context, _ bool) error {
	k, cfg, err := loadConfig(cliCtx)
	if err != nil {
		return err
	}

	for _, flag := range modeFlags {
		k.Delete(flag)
	}

	return cfg.GenerateAndSave(k)
}

// run starts the selected mode: a bonded device listing, a headless
// scan, or the interface.
func run(cliCtx *cli.Context) error {
	if cliCtx.Bool("list-adapters") || cliCtx.Bool("generate") {
		return nil
	}

	_, cfg, err := loadConfig(cliCtx)
	if err != nil {
		return err
	}
	if err := cfg.ValidateValues(); err != nil {
		return err
	}

	log, closeLog, err := logger.New(logger.Config{
		Level:  cfg.Values.LogLevel,
		Output: cfg.Values.LogFile,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	s, err := startSession()
	if err != nil {
		return err
	}
	defer s.Stop()

	headless := cliCtx.Bool("scan") || cliCtx.Bool("list-bonded")

	// The interface starts without a radio, and reports it.
	if err := cfg.ValidateSessionValues(s); err != nil && (headless || !errors.Is(err, discovery.ErrRadioUnavailable)) {
		return err
	}

	ds, store, adapter, err := newDiscovery(s, cfg, log, !headless)
	if err != nil {
		return err
	}
	defer ds.Close()

	if cliCtx.Bool("list-bonded") {
		return listBonded(ds)
	}

	if cliCtx.Bool("scan") {
		return scan(cliCtx.Context, ds, cliCtx.Duration("scan-duration"))
	}

	return app.NewApplication(views.Discovery{
		Session: ds,
		Store:   store,
		Adapter: adapter,
		Logger:  log,
	}).Start(cfg)
}

// newDiscovery opens the selected adapter, and returns a discovery session using it.
// If tolerateNoRadio is set, an unavailable adapter is reported as a warning and the
// session is returned without a radio.
func newDiscovery(
	s bluetooth.Session, cfg *config.Config, log zerolog.Logger, tolerateNoRadio bool,
) (*discovery.Session, *permission.Store, bluetooth.AdapterData, error) {
	var (
		r    discovery.Radio
		data bluetooth.AdapterData
	)

	adapter, err := radio.Open(s, radio.Options{
		Adapter: cfg.Values.Adapter,
		PowerOn: cfg.Values.PowerOn,
		Logger:  logger.WithComponent(log, "radio"),
	})
	switch {
	case err == nil:
		r, data = adapter, adapter.Data()

	case tolerateNoRadio && errors.Is(err, discovery.ErrRadioUnavailable):
		if cfg.Values.SelectedAdapter != nil {
			data = *cfg.Values.SelectedAdapter
		}

		if !cfg.Values.NoWarning {
			printWarn(err.Error())
			time.Sleep(warningDelay)
		}

	default:
		return nil, nil, data, err
	}

	store := permission.NewStore(cfg.Values.Grants, permission.TerminalPrompt(os.Stdin, os.Stdout))

	ds, err := discovery.NewSession(r, store, discovery.Options{
		ResetPolicy: cfg.Values.Policy,
		Logger:      log,
	})
	if err != nil && !(r == nil && errors.Is(err, discovery.ErrRadioUnavailable)) {
		return nil, nil, data, err
	}

	return ds, store, data, nil
}

// formatAdapters returns the list of adapters for display.
func formatAdapters(adapters []bluetooth.AdapterData) string {
	lines := []string{"List of adapters:"}

	for _, adapter := range adapters {
		lines = append(lines, fmt.Sprintf("- %s (%s)", adapter.UniqueName, adapter.Address.String()))
	}

	return strings.Join(lines, "\n")
}
