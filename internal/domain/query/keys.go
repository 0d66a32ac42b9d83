package query

import "fmt"

// KeyKind enumerates the cacheable read states. Invalidation rules are
// written against these, never against loose strings.
type KeyKind string

const (
	KindUser    KeyKind = "user"
	KindDevices KeyKind = "devices"
	KindDevice  KeyKind = "device"
)

// Key identifies one unit of cached asynchronous state.
type Key struct {
	Kind     KeyKind
	DeviceID int64
}

func UserKey() Key {
	return Key{Kind: KindUser}
}

func DevicesKey() Key {
	return Key{Kind: KindDevices}
}

func DeviceKey(id int64) Key {
	return Key{Kind: KindDevice, DeviceID: id}
}

// String is the stable form used for deduplication and invalidation events.
func (k Key) String() string {
	if k.Kind == KindDevice {
		return fmt.Sprintf("device:%d", k.DeviceID)
	}
	return string(k.Kind)
}
