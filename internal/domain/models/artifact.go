package models

// Artifact is a compiled contract ready to deploy: creation bytecode plus
// the source identity recorded into the registry.
type Artifact struct {
	// Name is the contract type name, e.g. "Token".
	Name string
	// SourcePath identifies where the artifact came from.
	SourcePath string
	// InitCode is the creation bytecode, constructor args included.
	InitCode []byte
}
