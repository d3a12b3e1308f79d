package common

const (
	ComponentDriver      = "driver"
	ComponentAccumulator = "accumulator"
	ComponentBatchWriter = "batch-writer"
	ComponentBatchStore  = "batch-store"
	ComponentSubmitter   = "submitter"
	ComponentSource      = "source"
	ComponentMaintenance = "maintenance"
	ComponentAPI         = "api"
)

var AllComponents = map[string]struct{}{
	ComponentDriver:      {},
	ComponentAccumulator: {},
	ComponentBatchWriter: {},
	ComponentBatchStore:  {},
	ComponentSubmitter:   {},
	ComponentSource:      {},
	ComponentMaintenance: {},
	ComponentAPI:         {},
}
