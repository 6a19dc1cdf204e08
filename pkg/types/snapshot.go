package types

// Snapshot is the persisted state of a portfolio store. Backends load and save
// snapshots; the store rebuilds its invariants from one on restore.
type Snapshot struct {
	Assets           []Asset `json:"assets"`
	Groups           []Group `json:"groups"`
	ShowGroupWrapper bool    `json:"show_group_wrapper"`
}
