package localledger

import "errors"

// Program and runtime failures. SendAndConfirm wraps each of them in
// ledger.ErrTransactionFailed together with the failing instruction index.
var (
	ErrBlockhashNotFound        = errors.New("localledger: blockhash not found")
	ErrAlreadyProcessed         = errors.New("localledger: transaction already processed")
	ErrInsufficientFundsForFee  = errors.New("localledger: insufficient funds for fee")
	ErrUnsupportedProgram       = errors.New("localledger: unsupported program")
	ErrUnsupportedInstruction   = errors.New("localledger: unsupported instruction")
	ErrInvalidInstructionData   = errors.New("localledger: invalid instruction data")
	ErrNotEnoughAccountKeys     = errors.New("localledger: not enough account keys")
	ErrAccountInUse             = errors.New("localledger: account already in use")
	ErrInsufficientLamports     = errors.New("localledger: insufficient lamports")
	ErrMissingRequiredSignature = errors.New("localledger: missing required signature")
	ErrIncorrectProgramID       = errors.New("localledger: account not owned by program")
	ErrUninitializedAccount     = errors.New("localledger: uninitialized account")
	ErrAlreadyInitialized       = errors.New("localledger: already initialized")
	ErrInvalidAccountData       = errors.New("localledger: invalid account data")
	ErrNotRentExempt            = errors.New("localledger: not rent exempt")
	ErrOwnerMismatch            = errors.New("localledger: owner does not match")
	ErrMintMismatch             = errors.New("localledger: account not associated with this mint")
	ErrMintDecimalsMismatch     = errors.New("localledger: mint decimals mismatch")
	ErrInsufficientFunds        = errors.New("localledger: insufficient funds")
	ErrOverflow                 = errors.New("localledger: operation overflowed")
	ErrInvalidSeeds             = errors.New("localledger: provided seeds do not result in a valid address")
	ErrMintAuthorityDisabled    = errors.New("localledger: mint authority disabled")
)

// invalidArguments reports program failures caused by the instruction's own
// arguments rather than by ledger state.
func invalidArguments(err error) bool {
	return errors.Is(err, ErrMintDecimalsMismatch) ||
		errors.Is(err, ErrInvalidInstructionData) ||
		errors.Is(err, ErrNotEnoughAccountKeys)
}
