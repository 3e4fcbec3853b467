package providers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/cryptox"
	"github.com/dmitrijs2005/launchserver/internal/logging"
	"github.com/dmitrijs2005/launchserver/internal/server/auth"
	"github.com/dmitrijs2005/launchserver/internal/server/hwid"
	"github.com/dmitrijs2005/launchserver/internal/server/store"
)

// Mode selects the strategy.
type Mode string

const (
	ModeLocal   Mode = "local"
	ModeBridged Mode = "bridged"
)

var ErrUnknownMode = errors.New("unknown auth mode")

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeLocal, ModeBridged:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Deps are the collaborators a strategy may need. Store and Guard are
// required for local and dual bridged mode, Bridge for bridged mode.
type Deps struct {
	Store    store.Store
	Sessions auth.Manager
	Guard    *hwid.Guard
	Bridge   Bridge
	Verifier cryptox.PasswordVerifier
	Logger   logging.Logger
	Now      func() time.Time
}

// New builds the strategy for mode. dualMode only applies to ModeBridged.
func New(mode Mode, dualMode bool, d Deps) (Provider, error) {
	if d.Sessions == nil {
		return nil, errors.New("providers: session manager is required")
	}
	if d.Logger == nil {
		d.Logger = logging.NopLogger{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Verifier == nil {
		d.Verifier = cryptox.BcryptVerifier{}
	}

	newLocal := func() (*Local, error) {
		if d.Store == nil || d.Guard == nil {
			return nil, errors.New("providers: local identity store is required")
		}
		return NewLocal(d.Store, d.Sessions, d.Guard, d.Verifier, d.Logger.With("strategy", "local"), d.Now), nil
	}

	switch mode {
	case ModeLocal:
		return newLocal()
	case ModeBridged:
		if d.Bridge == nil {
			return nil, errors.New("providers: identity bridge is required")
		}
		logger := d.Logger.With("strategy", "bridged")
		if !dualMode {
			return NewBridged(d.Bridge, d.Sessions, logger, d.Now), nil
		}
		local, err := newLocal()
		if err != nil {
			return nil, err
		}
		return NewDualBridged(d.Bridge, local, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}
