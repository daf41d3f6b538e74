package library

import "errors"

// Every operation on a ledger fails with one of these (wrapped with context). None of them
// are retried by the engine.
var (
	ErrNotFound               = errors.New("not found")
	ErrNotAPartner            = errors.New("not a partner")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrOverflow               = errors.New("overflow")
	ErrAlreadyVoted           = errors.New("already voted")
	ErrAlreadyExecuted        = errors.New("already executed")
	ErrWrongProposalKind      = errors.New("wrong proposal kind")
	ErrNoOpenOffer            = errors.New("no open offer")
	ErrOfferAlreadyOpen       = errors.New("offer already open")
	ErrTargetAlreadyPartner   = errors.New("target already partner")
	ErrTargetNotFound         = errors.New("target not found")
	ErrNothingToClaim         = errors.New("nothing to claim")
	ErrDuplicateOrInvalidName = errors.New("duplicate or invalid name")
)
