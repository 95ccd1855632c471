package rocks

// Instruction is a single storage request handled by Executor.Exec.
//
// The set of instructions is closed: SaveCf, MergeCf, GetCf, MultiGetCf
// and RemoveCf.
type Instruction interface {
	// Name returns a short identifier used in logs and metrics.
	Name() string

	isInstruction()
}

// SaveCf stores Value under Key.
type SaveCf struct {
	Key   string
	Value []byte
}

// MergeCf records Value as a merge operand for Key. The column family must
// have a merge operator configured.
type MergeCf struct {
	Key   string
	Value []byte
}

// GetCf looks up Key.
type GetCf struct {
	Key string
}

// MultiGetCf looks up every key of Keys in one batched call.
type MultiGetCf struct {
	Keys []string
}

// RemoveCf deletes Key.
type RemoveCf struct {
	Key string
}

func (SaveCf) Name() string     { return "save" }
func (MergeCf) Name() string    { return "merge" }
func (GetCf) Name() string      { return "get" }
func (MultiGetCf) Name() string { return "multi_get" }
func (RemoveCf) Name() string   { return "remove" }

func (SaveCf) isInstruction()     {}
func (MergeCf) isInstruction()    {}
func (GetCf) isInstruction()      {}
func (MultiGetCf) isInstruction() {}
func (RemoveCf) isInstruction()   {}

// Outcome is the result of a successful Exec call: SingleByte, MultiBytes
// or None.
type Outcome interface {
	isOutcome()
}

// SingleByte is the outcome of GetCf. Found is false when the key does not
// exist.
type SingleByte struct {
	Value []byte
	Found bool
}

// MultiBytes is the outcome of MultiGetCf. Values[i] is the result for
// Keys[i].
type MultiBytes struct {
	Values []Result
}

// None acknowledges a write with no payload.
type None struct{}

func (SingleByte) isOutcome() {}
func (MultiBytes) isOutcome() {}
func (None) isOutcome()       {}

// Result is the outcome of one key in a batched lookup. Err, when set, is
// a KindExecutor *Error for that key only.
type Result struct {
	Value []byte
	Found bool
	Err   error
}
