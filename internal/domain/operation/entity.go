// internal/domain/operation/entity.go
package operation

import (
	"errors"
	"strings"
	"time"
)

/*
Responsibility:
- One Operation is one ledger step of a run (mint creation, ATA creation,
  mint-to, delegated transfer, delegated burn, funding).
- Keeps status, tx signature and error classification so the driver can print
  what happened before aborting. Nothing here is persisted.
*/

type Kind string

const (
	KindFund          Kind = "fund"
	KindInitMint      Kind = "init_mint"
	KindCreateAccount Kind = "create_associated_account"
	KindMintTo        Kind = "mint_to"
	KindTransfer      Kind = "transfer_checked"
	KindBurn          Kind = "burn_checked"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

type ErrorType string

const (
	ErrorTypeUnknown ErrorType = "unknown"

	// funding: fee/rent balance could not be ensured
	ErrorTypeFunding ErrorType = "funding"

	// construction: malformed arguments caught locally or rejected by the program
	ErrorTypeConstruction ErrorType = "construction"

	// submission: network failures, rejected transactions, confirmation waits
	ErrorTypeSubmission ErrorType = "submission"
)

var (
	ErrInvalidSeq       = errors.New("operation: seq must be >= 1")
	ErrInvalidKind      = errors.New("operation: invalid kind")
	ErrInvalidCreatedAt = errors.New("operation: invalid createdAt")
)

// Operation represents one ledger step.
type Operation struct {
	Seq    int    `json:"seq"`
	Kind   Kind   `json:"kind"`
	Detail string `json:"detail,omitempty"`

	TxSignature *string `json:"txSignature,omitempty"`

	Status    Status     `json:"status"`
	ErrorType *ErrorType `json:"errorType,omitempty"`
	ErrorMsg  *string    `json:"errorMsg,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// NewPending creates an Operation in pending status.
func NewPending(seq int, kind Kind, detail string, createdAt time.Time) (Operation, error) {
	op := Operation{
		Seq:       seq,
		Kind:      kind,
		Detail:    strings.TrimSpace(detail),
		Status:    StatusPending,
		CreatedAt: createdAt.UTC(),
	}
	if err := op.validate(); err != nil {
		return Operation{}, err
	}
	return op, nil
}

// MarkSucceeded marks the step as confirmed. txSig may be empty for steps that
// did not need a transaction (e.g. funding skipped because the balance sufficed).
func (o *Operation) MarkSucceeded(txSig string, at time.Time) {
	if o == nil {
		return
	}
	o.Status = StatusSucceeded
	if s := strings.TrimSpace(txSig); s != "" {
		o.TxSignature = &s
	}
	o.ErrorType = nil
	o.ErrorMsg = nil

	u := at.UTC()
	o.UpdatedAt = &u
}

// MarkFailed marks the step as failed with error type and message (optional).
func (o *Operation) MarkFailed(errType ErrorType, msg string, at time.Time) {
	if o == nil {
		return
	}
	et := errType
	if strings.TrimSpace(string(et)) == "" {
		et = ErrorTypeUnknown
	}
	o.Status = StatusFailed
	o.ErrorType = &et

	if m := strings.TrimSpace(msg); m != "" {
		o.ErrorMsg = &m
	} else {
		o.ErrorMsg = nil
	}

	u := at.UTC()
	o.UpdatedAt = &u
}

func (o Operation) validate() error {
	if o.Seq <= 0 {
		return ErrInvalidSeq
	}
	switch o.Kind {
	case KindFund, KindInitMint, KindCreateAccount, KindMintTo, KindTransfer, KindBurn:
	default:
		return ErrInvalidKind
	}
	if o.CreatedAt.IsZero() {
		return ErrInvalidCreatedAt
	}
	return nil
}
