package zone

// FlagScope is the namespace under which zonewatch stores its flags on a
// host region's annotation store.
const FlagScope = "zonewatch"

// Flags is the zonewatch flag namespace on a host region.
// An empty ZoneType means the region has no explicit type and resolves
// to the basic config.
type Flags struct {
	Enabled  bool   `json:"enabled"`
	ZoneType string `json:"zoneType,omitempty"`
}

// Zone is a named map region as mirrored from the host's region registry.
// The host owns the shape and containment math; zonewatch only reads the
// identity and flags.
type Zone struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Flags Flags  `json:"flags"`
}
