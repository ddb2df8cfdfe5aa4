package domain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for session and authorization state. Every failure in
// this system is immediate and non-retryable; callers are expected to fix
// the calling script rather than retry.
var (
	// ErrSessionNotStarted is returned when an operation requires a started session
	ErrSessionNotStarted = errors.New("session not started")

	// ErrSessionAlreadyFinished is returned when a finished session is reused
	ErrSessionAlreadyFinished = errors.New("session already finished")

	// ErrAlreadyInitialized is returned when start is called twice
	ErrAlreadyInitialized = errors.New("session already initialized")

	// ErrUnauthorized is a generic security boundary failure
	ErrUnauthorized = errors.New("unauthorized")

	// ErrOperatorRequired is returned when no operator is configured at all
	ErrOperatorRequired = errors.New("operator required")

	// ErrCommitmentMismatch is returned when reveal parameters disagree with the commitment
	ErrCommitmentMismatch = errors.New("commitment mismatch")

	// ErrFactoryDeploymentFailed is returned when the factory bootstrap deploy fails
	ErrFactoryDeploymentFailed = errors.New("factory deployment failed")

	// ErrCannotSendValueToNonPayableFunction guards upgradeTo, which takes no value
	ErrCannotSendValueToNonPayableFunction = errors.New("cannot send value to non-payable function")
)

// InvalidKeyFormatError indicates a key that violates the charset or dot rules.
type InvalidKeyFormatError struct {
	Key string
}

func (e *InvalidKeyFormatError) Error() string {
	return fmt.Sprintf("invalid key format: %q", e.Key)
}

// KeyNotRegisteredError indicates an access to a key absent from the schema.
type KeyNotRegisteredError struct {
	Key string
}

func (e *KeyNotRegisteredError) Error() string {
	return fmt.Sprintf("key not registered: %q", e.Key)
}

// TypeMismatchError indicates a schema validation against the wrong data type.
type TypeMismatchError struct {
	Key  string
	Want DataType
	Got  DataType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch for key %q: want %s, got %s", e.Key, e.Want, e.Got)
}

// ParentContractNotRegisteredError indicates a dotted key whose nearest
// object-typed ancestor has not been registered.
type ParentContractNotRegisteredError struct {
	Key    string
	Parent string
}

func (e *ParentContractNotRegisteredError) Error() string {
	return fmt.Sprintf("parent contract %q not registered for key %q", e.Parent, e.Key)
}

// ContractKeyError indicates a top-level contract key outside the contracts namespace.
type ContractKeyError struct {
	Key string
}

func (e *ContractKeyError) Error() string {
	return fmt.Sprintf("contract key must start with %q: %q", ContractsNamespace, e.Key)
}

// ParameterAlreadyExistsError indicates a duplicate schema registration.
type ParameterAlreadyExistsError struct {
	Key string
}

func (e *ParameterAlreadyExistsError) Error() string {
	return fmt.Sprintf("parameter already exists: %q", e.Key)
}

// ValueNotSetError indicates a read of a declared but unset key.
type ValueNotSetError struct {
	Key string
}

func (e *ValueNotSetError) Error() string {
	return fmt.Sprintf("value not set for key: %q", e.Key)
}

// ReadTypeMismatchError indicates a read with the wrong accessor for the stored type.
type ReadTypeMismatchError struct {
	Key  string
	Want DataType
	Got  DataType
}

func (e *ReadTypeMismatchError) Error() string {
	return fmt.Sprintf("read type mismatch for key %q: want %s, stored %s", e.Key, e.Want, e.Got)
}

// ContractAlreadyExistsError indicates re-registration of a deployed contract key.
type ContractAlreadyExistsError struct {
	Key string
}

func (e *ContractAlreadyExistsError) Error() string {
	return fmt.Sprintf("contract already exists: %q", e.Key)
}

// LibraryAlreadyExistsError indicates re-registration of a deployed library key.
type LibraryAlreadyExistsError struct {
	Key string
}

func (e *LibraryAlreadyExistsError) Error() string {
	return fmt.Sprintf("library already exists: %q", e.Key)
}

// ContractNotFoundError indicates an upgrade or lookup against an unknown key.
type ContractNotFoundError struct {
	Key string
}

func (e *ContractNotFoundError) Error() string {
	return fmt.Sprintf("contract not found: %q", e.Key)
}

// UnauthorizedOperatorError indicates a commit/reveal from an address without
// a live operator grant.
type UnauthorizedOperatorError struct {
	Address common.Address
}

func (e *UnauthorizedOperatorError) Error() string {
	return fmt.Sprintf("unauthorized operator: %s", e.Address.Hex())
}

// OwnerRequiredError indicates an owner-only factory call from a non-owner.
type OwnerRequiredError struct {
	Caller common.Address
}

func (e *OwnerRequiredError) Error() string {
	return fmt.Sprintf("owner required, called by %s", e.Caller.Hex())
}

// UnauthorizedDeployerError indicates a session action from the wrong deployer key.
type UnauthorizedDeployerError struct {
	Deployer common.Address
}

func (e *UnauthorizedDeployerError) Error() string {
	return fmt.Sprintf("unauthorized deployer: %s", e.Deployer.Hex())
}

// CommitmentAlreadyExistsError indicates a commit for an already-pending commitment.
type CommitmentAlreadyExistsError struct {
	Commitment common.Hash
}

func (e *CommitmentAlreadyExistsError) Error() string {
	return fmt.Sprintf("commitment already exists: %s", e.Commitment.Hex())
}

// UnknownCommitmentError indicates a reveal with no matching pending commitment.
type UnknownCommitmentError struct {
	Commitment common.Hash
}

func (e *UnknownCommitmentError) Error() string {
	return fmt.Sprintf("unknown commitment: %s", e.Commitment.Hex())
}

// ValueMismatchError indicates a reveal whose attached value disagrees with
// the committed value.
type ValueMismatchError struct {
	Expected *big.Int
	Actual   *big.Int
}

func (e *ValueMismatchError) Error() string {
	return fmt.Sprintf("value mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// LibraryDeploymentFailedError indicates a failed CREATE for a library.
type LibraryDeploymentFailedError struct {
	Key string
}

func (e *LibraryDeploymentFailedError) Error() string {
	return fmt.Sprintf("library deployment failed: %q", e.Key)
}

// FactoryCodeMismatchError indicates that the code occupying the factory's
// deterministic address is not the expected factory code. This exists to
// catch a different contract squatting the predicted address.
type FactoryCodeMismatchError struct {
	Expected common.Hash
	Actual   common.Hash
}

func (e *FactoryCodeMismatchError) Error() string {
	return fmt.Sprintf("factory code mismatch: expected %s, got %s", e.Expected.Hex(), e.Actual.Hex())
}

// FactoryOwnerMismatchError indicates an unexpected owner on an existing factory.
type FactoryOwnerMismatchError struct {
	Expected common.Address
	Actual   common.Address
}

func (e *FactoryOwnerMismatchError) Error() string {
	return fmt.Sprintf("factory owner mismatch: expected %s, got %s", e.Expected.Hex(), e.Actual.Hex())
}

// FactoryProbeFailedError indicates that the factory did not answer its probes.
type FactoryProbeFailedError struct {
	Address common.Address
}

func (e *FactoryProbeFailedError) Error() string {
	return fmt.Sprintf("factory probe failed at %s", e.Address.Hex())
}

// SchemaVersionMismatchError indicates a persisted document written by an
// incompatible schema version. Loading such a document is a hard failure.
type SchemaVersionMismatchError struct {
	Expected string
	Actual   string
}

func (e *SchemaVersionMismatchError) Error() string {
	return fmt.Sprintf("schema version mismatch: expected %s, got %s", e.Expected, e.Actual)
}
