package discovery

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Capability describes a host capability required for discovery.
type Capability uint8

// The different capabilities.
const (
	CapabilityNone Capability = iota // The zero value for this type.
	CapabilityScan
	CapabilityConnect
	CapabilityLocation
)

// capabilityNames holds the names of the different capabilities.
var capabilityNames = map[Capability]string{
	CapabilityScan:     "radio-scan",
	CapabilityConnect:  "radio-connect",
	CapabilityLocation: "coarse-location",
}

// RequiredCapabilities lists the capabilities which must all be granted
// before a scan can start.
var RequiredCapabilities = []Capability{
	CapabilityScan,
	CapabilityConnect,
	CapabilityLocation,
}

// String returns the name of the capability.
func (c Capability) String() string {
	return capabilityNames[c]
}

// ParseCapability parses a capability from its name.
func ParseCapability(name string) (Capability, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	for capability, n := range capabilityNames {
		if n == name {
			return capability, nil
		}
	}

	return CapabilityNone, fmt.Errorf("unknown capability '%s'", name)
}

// Grants holds the outcome of a capability request.
type Grants map[Capability]bool

// All returns whether every required capability was granted.
func (g Grants) All() bool {
	for _, capability := range RequiredCapabilities {
		if !g[capability] {
			return false
		}
	}

	return true
}

// Denied returns the requested capabilities that were not granted.
func (g Grants) Denied() []Capability {
	denied := make([]Capability, 0, len(g))
	for _, capability := range RequiredCapabilities {
		if granted, ok := g[capability]; ok && !granted {
			denied = append(denied, capability)
		}
	}

	return denied
}

// PermissionHost describes the host environment which owns capability grants.
type PermissionHost interface {
	// IsGranted returns whether the capability is currently granted.
	IsGranted(capability Capability) bool

	// PromptForGrant asynchronously asks for the provided capabilities,
	// and calls onResult once with the outcome.
	PromptForGrant(capabilities []Capability, onResult func(Grants))
}

// Gate decides whether discovery is authorized.
type Gate struct {
	host PermissionHost
	log  zerolog.Logger
}

// NewGate returns a new permission gate for the host.
func NewGate(host PermissionHost, log zerolog.Logger) *Gate {
	return &Gate{host: host, log: log}
}

// Authorized returns whether all required capabilities are granted.
// The host is queried on each call.
func (g *Gate) Authorized() bool {
	return len(g.Missing()) == 0
}

// CanConnect returns whether the connect capability is granted.
func (g *Gate) CanConnect() bool {
	return g.granted(CapabilityConnect)
}

// Missing returns the required capabilities which are not granted.
func (g *Gate) Missing() []Capability {
	missing := make([]Capability, 0, len(RequiredCapabilities))
	for _, capability := range RequiredCapabilities {
		if !g.granted(capability) {
			missing = append(missing, capability)
		}
	}

	return missing
}

// RequestAuthorization asks the host for the provided capabilities.
// onResult is called exactly once. Capabilities the host did not
// answer for are reported as denied.
func (g *Gate) RequestAuthorization(capabilities []Capability, onResult func(Grants)) {
	var once sync.Once

	report := func(result Grants) {
		once.Do(func() {
			grants := make(Grants, len(capabilities))
			for _, capability := range capabilities {
				grants[capability] = result[capability]
			}

			if denied := grants.Denied(); len(denied) > 0 {
				g.log.Debug().Stringer("denied", CapabilityList(denied)).Msg("Capabilities were denied")
			}

			if onResult != nil {
				onResult(grants)
			}
		})
	}

	if g.host == nil {
		go report(nil)
		return
	}

	g.host.PromptForGrant(capabilities, report)
}

// granted queries the host for a single capability.
func (g *Gate) granted(capability Capability) bool {
	if g.host == nil {
		return false
	}

	return g.host.IsGranted(capability)
}

// CapabilityList formats a list of capabilities for display.
type CapabilityList []Capability

// String returns the capability names, separated by commas.
func (c CapabilityList) String() string {
	names := make([]string, 0, len(c))
	for _, capability := range c {
		names = append(names, capability.String())
	}

	return strings.Join(names, ", ")
}
