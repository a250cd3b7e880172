package symbaker

import (
	"fmt"
)

// Source tells where a resolved prefix came from.
type Source int

const (
	SourceOverride Source = iota
	SourcePreferOwnPackage
	SourcePreferOwnCrateFallback
	SourceAttribute
	SourceEnvironmentOverride
	SourceConfigFile
	SourceTopLevelPackage
	SourceWorkspace
	SourcePackage
	SourceCrateNameFallback
	SourceCrateNameFallbackAfterPriority
)

// priority list keys
const (
	KeyAttr       = "attr"
	KeyEnvPrefix  = "env_prefix"
	KeyConfig     = "config"
	KeyTopPackage = "top_package"
	KeyWorkspace  = "workspace"
	KeyPackage    = "package"
	KeyCrate      = "crate"
)

var labels = [...]string{
	SourceOverride:                       "override",
	SourcePreferOwnPackage:               "prefer_package_prefix",
	SourcePreferOwnCrateFallback:         "prefer_package_prefix_crate",
	SourceAttribute:                      KeyAttr,
	SourceEnvironmentOverride:            KeyEnvPrefix,
	SourceConfigFile:                     KeyConfig,
	SourceTopLevelPackage:                KeyTopPackage,
	SourceWorkspace:                      KeyWorkspace,
	SourcePackage:                        KeyPackage,
	SourceCrateNameFallback:              KeyCrate,
	SourceCrateNameFallbackAfterPriority: "crate_after_priority",
}

// DefaultPriority is the lookup order used when the configuration names none.
func DefaultPriority() []string {
	return []string{KeyAttr, KeyEnvPrefix, KeyConfig, KeyTopPackage, KeyWorkspace, KeyPackage, KeyCrate}
}

func (s Source) String() string {
	if s < 0 || int(s) >= len(labels) {
		return fmt.Sprintf("Source(%d)", int(s))
	}
	return labels[s]
}

// Local reports whether the prefix was invented by the package itself rather
// than inherited from the build that includes it.
func (s Source) Local() bool {
	switch s {
	case SourcePackage, SourceCrateNameFallback, SourceCrateNameFallbackAfterPriority:
		return true
	default:
		return false
	}
}

// ParseSource maps a label back to its Source.
func ParseSource(label string) (s Source, ok bool) {
	for i, l := range labels {
		if l == label {
			return Source(i), true
		}
	}
	return
}

// priorityKey maps a priority list entry to the source it selects.
func priorityKey(key string) (s Source, ok bool) {
	switch key {
	case KeyAttr:
		return SourceAttribute, true
	case KeyEnvPrefix:
		return SourceEnvironmentOverride, true
	case KeyConfig:
		return SourceConfigFile, true
	case KeyTopPackage:
		return SourceTopLevelPackage, true
	case KeyWorkspace:
		return SourceWorkspace, true
	case KeyPackage:
		return SourcePackage, true
	case KeyCrate:
		return SourceCrateNameFallback, true
	}
	return
}
