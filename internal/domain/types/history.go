package types

// TxRecord is one submitted transaction kept in the local signature history.
type TxRecord struct {
	ID          string `json:"id"`
	Signature   string `json:"signature"`
	ProgramID   string `json:"program_id"`
	Instruction string `json:"instruction"`
	Cluster     string `json:"cluster"`
	Slot        uint64 `json:"slot,omitempty"`
	Err         string `json:"err,omitempty"`
	CreatedUTC  int64  `json:"created_utc"`
}
