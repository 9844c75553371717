package telemetry

import (
	"errors"

	"github.com/beacontrail/telemetry-go/persistence"
	"github.com/beacontrail/telemetry-go/transport"
)

func platformKindString(k PlatformKind) string {
	switch k {
	case PlatformWeb:
		return "web"
	case PlatformNative:
		return "native"
	case PlatformServer:
		return "server"
	default:
		return "unknown"
	}
}

func platformKindFromString(s string) PlatformKind {
	switch s {
	case "web":
		return PlatformWeb
	case "native":
		return PlatformNative
	default:
		return PlatformServer
	}
}

func toTransportEvents(events []Event) []transport.Event {
	out := make([]transport.Event, len(events))
	for i, e := range events {
		out[i] = transport.Event{
			Name:      e.Name,
			Payload:   e.Payload,
			IssuedAt:  e.IssuedAt,
			SessionID: e.SessionID,
			Metadata:  e.Metadata,
			Platform:  toTransportPlatform(e.Platform),
		}
	}
	return out
}

func toTransportPlatform(p *Platform) *transport.Platform {
	if p == nil {
		return nil
	}
	return &transport.Platform{
		Kind:    platformKindString(p.Kind),
		Browser: p.Browser,
		Device:  p.Device,
		OS:      p.OS,
	}
}

func toPersistedEvents(events []Event) []persistence.Event {
	out := make([]persistence.Event, len(events))
	for i, e := range events {
		out[i] = persistence.Event{
			Name:      e.Name,
			Payload:   e.Payload,
			IssuedAt:  e.IssuedAt,
			SessionID: e.SessionID,
			Metadata:  e.Metadata,
			Platform:  toPersistedPlatform(e.Platform),
			Attempts:  e.attempts,
		}
	}
	return out
}

func toPersistedPlatform(p *Platform) *persistence.Platform {
	if p == nil {
		return nil
	}
	return &persistence.Platform{
		Kind:    platformKindString(p.Kind),
		Browser: p.Browser,
		Device:  p.Device,
		OS:      p.OS,
	}
}

func toEvents(events []persistence.Event) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		out[i] = Event{
			Name:      e.Name,
			Payload:   e.Payload,
			IssuedAt:  e.IssuedAt,
			SessionID: e.SessionID,
			Metadata:  e.Metadata,
			Platform:  fromPersistedPlatform(e.Platform),
			attempts:  e.Attempts,
		}
	}
	return out
}

func fromPersistedPlatform(p *persistence.Platform) *Platform {
	if p == nil {
		return nil
	}
	return &Platform{
		Kind:    platformKindFromString(p.Kind),
		Browser: p.Browser,
		Device:  p.Device,
		OS:      p.OS,
	}
}

// asQuotaError reports whether err (or something it wraps) is a
// *persistence.QuotaError, writing it to *target on success.
func asQuotaError(err error, target **persistence.QuotaError) bool {
	return errors.As(err, target)
}
