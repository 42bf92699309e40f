package config

import (
	"fmt"

	"github.com/bluetuith-org/bluetooth-classic/api/bluetooth"

	"github.com/darkhz/bluescan/discovery"
	"github.com/darkhz/bluescan/logger"
	"github.com/darkhz/bluescan/permission"
	"github.com/darkhz/bluescan/radio"
	"github.com/darkhz/bluescan/ui/keybindings"
	"github.com/darkhz/bluescan/ui/theme"
)

// Values describes the possible configuration values that a user can
// modify and supply to the application.
type Values struct {
	Adapter       string            `koanf:"adapter"`
	ResetPolicy   string            `koanf:"reset-policy"`
	Grant         string            `koanf:"grant"`
	PowerOn       bool              `koanf:"power-on"`
	LogLevel      string            `koanf:"log-level"`
	LogFile       string            `koanf:"log-file"`
	NoWarning     bool              `koanf:"no-warning"`
	NoHelpDisplay bool              `koanf:"no-help-display"`
	Theme         map[string]string `koanf:"theme"`
	Keybindings   map[string]string `koanf:"keybindings"`

	Policy          discovery.ResetPolicy
	Grants          map[discovery.Capability]bool
	SelectedAdapter *bluetooth.AdapterData
	Kb              *keybindings.Keybindings
}

// validateValues validates all configuration values.
func (v *Values) validateValues() error {
	for _, validate := range []func() error{
		v.validateResetPolicy,
		v.validateGrant,
		v.validateLogLevel,
		v.validateKeybindings,
		v.validateTheme,
	} {
		if err := validate(); err != nil {
			return err
		}
	}

	return nil
}

// validateAdapter resolves the configured adapter, by name or address, against the adapters of the session.
func (v *Values) validateAdapter(session bluetooth.Session) error {
	adapter, err := radio.SelectAdapter(session, v.Adapter)
	if err != nil {
		return err
	}

	v.SelectedAdapter = &adapter

	return nil
}

// validateResetPolicy validates what happens to the discovered devices when a scan starts.
func (v *Values) validateResetPolicy() error {
	policy, err := discovery.ParseResetPolicy(v.ResetPolicy)
	if err != nil {
		return err
	}

	v.Policy = policy

	return nil
}

// validateGrant validates the capabilities which are granted on launch.
func (v *Values) validateGrant() error {
	grants, err := permission.ParseGrants(v.Grant)
	if err != nil {
		return err
	}

	v.Grants = grants

	return nil
}

// validateLogLevel validates the log level.
func (v *Values) validateLogLevel() error {
	if !logger.ValidLevel(v.LogLevel) {
		return fmt.Errorf("provided log level '%s' is incorrect", v.LogLevel)
	}

	return nil
}

// validateKeybindings applies the configured keybindings over the defaults.
func (v *Values) validateKeybindings() error {
	v.Kb = keybindings.NewKeybindings()

	return v.Kb.Validate(v.Keybindings)
}

// validateTheme applies the configured theme colors.
func (v *Values) validateTheme() error {
	return theme.ParseThemeConfig(v.Theme)
}
