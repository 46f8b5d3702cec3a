// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import "github.com/ManuGH/branchplay/internal/media"

// binding is the listener bundle of one clip activation. It is acquired
// after the source is attached and released before the next activation
// touches the surface.
type binding struct {
	unlisten []func()
	released bool
}

type handlers map[media.EventKind]func()

// bind registers every handler on surface. Handlers become inert once the
// binding is released, so an event already in flight for the previous clip
// cannot reach the new one.
func bind(surface media.Surface, hs handlers) *binding {
	b := &binding{}
	for _, kind := range []media.EventKind{
		media.EventLoadedMetadata,
		media.EventTimeUpdate,
		media.EventEnded,
		media.EventPlayRejected,
	} {
		fn, ok := hs[kind]
		if !ok {
			continue
		}
		b.unlisten = append(b.unlisten, surface.Listen(kind, func() {
			if b.released {
				return
			}
			fn()
		}))
	}
	return b
}

func (b *binding) release() {
	if b == nil || b.released {
		return
	}
	b.released = true
	for _, un := range b.unlisten {
		un()
	}
	b.unlisten = nil
}
