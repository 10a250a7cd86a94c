package usecase

import (
	"errors"

	"permdelegate/internal/domain/ledger"
	mintdom "permdelegate/internal/domain/mint"
	"permdelegate/internal/domain/operation"
	tokendom "permdelegate/internal/domain/token"
)

var (
	ErrNilUsecase       = errors.New("usecase: not configured")
	ErrInvalidPrincipal = errors.New("usecase: principal has no signing key")
	ErrFundingFailed    = errors.New("usecase: funding failed")
)

// constructionErrors are rejected locally before anything reaches the ledger.
var constructionErrors = []error{
	ErrInvalidPrincipal,
	ledger.ErrEmptyBundle,
	ledger.ErrMissingBlockhash,
	ledger.ErrFeePayerNotSigner,
	ledger.ErrMissingSignature,
	ledger.ErrUnexpectedSigner,
	mintdom.ErrNotInitialized,
	mintdom.ErrAlreadyInitialized,
	mintdom.ErrDecimalsMismatch,
	mintdom.ErrInvalidAmount,
	tokendom.ErrInvalidAmount,
	tokendom.ErrMintMismatch,
}

// Classify maps a step error to the journal taxonomy. Program rejections of
// an instruction's arguments are construction errors; every other rejected
// transaction is a submission error.
func Classify(err error) operation.ErrorType {
	if err == nil {
		return operation.ErrorTypeUnknown
	}
	if errors.Is(err, ErrFundingFailed) {
		return operation.ErrorTypeFunding
	}
	if errors.Is(err, ledger.ErrInvalidInstruction) {
		return operation.ErrorTypeConstruction
	}
	for _, target := range constructionErrors {
		if errors.Is(err, target) {
			return operation.ErrorTypeConstruction
		}
	}
	return operation.ErrorTypeSubmission
}

// Retryable reports whether err could succeed on a second attempt: a
// submission failure the ledger never executed. The driver never retries.
func Retryable(err error) bool {
	return Classify(err) == operation.ErrorTypeSubmission && !errors.Is(err, ledger.ErrTransactionFailed)
}
