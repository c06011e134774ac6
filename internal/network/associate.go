package network

import (
	"context"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/logging"
)

const defaultRetryDelay = time.Second

// Associator performs the boot-time join-and-wait.
type Associator struct {
	// Joiner joins the network. Nil skips straight to the address wait.
	Joiner Joiner

	// Resolve reports the interface address. Nil uses InterfaceAddress.
	Resolve Resolver

	Interface   string
	RetryDelay  time.Duration
	JoinTimeout time.Duration

	Logger *logging.Logger
}

// NewAssociator builds an Associator from config. An SSID selects nmcli;
// without one the interface is only waited on.
func NewAssociator(cfg config.NetworkConfig, logger *logging.Logger) *Associator {
	a := &Associator{
		Resolve:     InterfaceAddress,
		Interface:   cfg.Interface,
		RetryDelay:  time.Duration(cfg.RetryDelay) * time.Second,
		JoinTimeout: time.Duration(cfg.JoinTimeout) * time.Second,
		Logger:      logger.With("component", "network"),
	}
	if cfg.SSID != "" {
		a.Joiner = &NMCLIJoiner{
			SSID:       cfg.SSID,
			Passphrase: cfg.Passphrase,
			Interface:  cfg.Interface,
		}
	}
	return a
}

// Run blocks until the interface is up with an IPv4 address.
//
// Failures are logged and retried after RetryDelay without limit.
//
// Returns:
//   - Address: The interface address once available
//   - error: ctx.Err() if the context ends first
func (a *Associator) Run(ctx context.Context) (Address, error) {
	delay := a.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	resolve := a.Resolve
	if resolve == nil {
		resolve = InterfaceAddress
	}

	for attempt := 1; ; attempt++ {
		addr, err := a.attempt(ctx, resolve)
		if err == nil {
			a.Logger.Info("network associated",
				"interface", addr.Interface,
				"ip", addr.IP.String(),
				"mac", addr.MAC.String(),
				"attempts", attempt,
			)
			return addr, nil
		}

		a.Logger.Warn("network association failed, retrying",
			"interface", a.Interface,
			"attempt", attempt,
			"retry_in", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return Address{}, ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (a *Associator) attempt(ctx context.Context, resolve Resolver) (Address, error) {
	if err := ctx.Err(); err != nil {
		return Address{}, err
	}

	// Already up: nothing to join.
	if addr, err := resolve(a.Interface); err == nil {
		return addr, nil
	}

	if a.Joiner != nil {
		joinCtx := ctx
		if a.JoinTimeout > 0 {
			var cancel context.CancelFunc
			joinCtx, cancel = context.WithTimeout(ctx, a.JoinTimeout)
			defer cancel()
		}
		if err := a.Joiner.Join(joinCtx); err != nil {
			return Address{}, err
		}
	}

	return resolve(a.Interface)
}
