// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package player

import (
	"errors"
	"fmt"
)

// ActionType names a viewer input.
type ActionType string

const (
	ActionStart       ActionType = "start"
	ActionToggle      ActionType = "toggle"
	ActionPlay        ActionType = "play"
	ActionPause       ActionType = "pause"
	ActionChoice      ActionType = "choice"
	ActionHotspot     ActionType = "hotspot"
	ActionHome        ActionType = "home"
	ActionAutoAdvance ActionType = "autoAdvance"
	ActionPointer     ActionType = "pointer"
	ActionKey         ActionType = "key"
	ActionInfo        ActionType = "info"
	ActionOpenModal   ActionType = "openModal"
	ActionCloseModal  ActionType = "closeModal"
)

var (
	ErrUnknownAction = errors.New("player: unknown action")
	ErrInvalidAction = errors.New("player: invalid action")
)

// Action is a viewer input as posted by a client.
type Action struct {
	Type    ActionType `json:"type"`
	Index   *int       `json:"index,omitempty"`
	Key     string     `json:"key,omitempty"`
	Enabled *bool      `json:"enabled,omitempty"`
}

// Apply performs a. Inputs the player ignores, such as a choice
// target that resolves nowhere, are not errors.
func (p *Player) Apply(a Action) error {
	switch a.Type {
	case ActionStart:
		p.Start()
	case ActionToggle:
		p.Toggle()
	case ActionPlay:
		p.Play()
	case ActionPause:
		p.Pause()
	case ActionHome:
		p.GoHome()
	case ActionChoice:
		if a.Index == nil {
			return fmt.Errorf("%w: %s requires index", ErrInvalidAction, a.Type)
		}
		_, err := p.SelectChoice(*a.Index)
		return err
	case ActionHotspot:
		if a.Index == nil {
			return fmt.Errorf("%w: %s requires index", ErrInvalidAction, a.Type)
		}
		_, err := p.SelectHotspot(*a.Index)
		return err
	case ActionAutoAdvance:
		if a.Enabled == nil {
			return fmt.Errorf("%w: %s requires enabled", ErrInvalidAction, a.Type)
		}
		p.SetAutoAdvance(*a.Enabled)
	case ActionPointer:
		p.PointerActivity()
	case ActionKey:
		p.KeyDown(a.Key)
	case ActionInfo:
		p.ToggleInfo()
	case ActionOpenModal:
		p.OpenModal()
	case ActionCloseModal:
		p.CloseModal()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
	return nil
}
