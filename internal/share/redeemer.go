package share

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"sharebox-go/internal/validation"
)

// Redeemer exchanges an access code or a share hash for its content.
//
// Every failure other than a local precondition or a timeout collapses into
// ErrInvalidCode (or ErrContentUnavailable for hashes): the backend does not
// tell "not found" from "expired", and neither do we.
type Redeemer struct {
	client *Client
	busy   atomic.Bool
}

func NewRedeemer(client *Client) *Redeemer {
	return &Redeemer{client: client}
}

func (r *Redeemer) Busy() bool {
	return r.busy.Load()
}

// Redeem submits the digits typed into input.
func (r *Redeemer) Redeem(ctx context.Context, input *AccessCodeInput) (*RedeemedContent, error) {
	return r.RedeemCode(ctx, input.Code())
}

// RedeemCode submits a code given as a string.
func (r *Redeemer) RedeemCode(ctx context.Context, code string) (*RedeemedContent, error) {
	if len(code) != validation.AccessCodeLength {
		return nil, ErrIncompleteCode
	}
	if !r.busy.CompareAndSwap(false, true) {
		return nil, ErrAlreadyInProgress
	}
	defer r.busy.Store(false)

	content, err := r.client.accessByCode(ctx, code)
	if err != nil {
		log.Debug().Err(err).Msg("access code redemption failed")
		if errors.Is(err, ErrTimeout) {
			return nil, ErrTimeout
		}
		return nil, ErrInvalidCode
	}
	return content, nil
}

// RedeemHash opens the content behind a share link.
func (r *Redeemer) RedeemHash(ctx context.Context, hash string) (*RedeemedContent, error) {
	if err := validation.ValidateShareHash(hash); err != nil {
		return nil, ErrContentUnavailable
	}
	if !r.busy.CompareAndSwap(false, true) {
		return nil, ErrAlreadyInProgress
	}
	defer r.busy.Store(false)

	content, err := r.client.accessByHash(ctx, hash)
	if err != nil {
		log.Debug().Err(err).Str("hash", hash).Msg("share link redemption failed")
		if errors.Is(err, ErrTimeout) {
			return nil, ErrTimeout
		}
		return nil, ErrContentUnavailable
	}
	return content, nil
}
