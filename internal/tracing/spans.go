package tracing

// Span names and attribute keys shared by the packages that open spans.
const (
	SpanApply       = "executor.apply"
	SpanPartitioned = "executor.apply_partitioned"
	SpanPartition   = "executor.partition"
	SpanStepPrefix  = "step."

	AttrRows       = "dataset.rows"
	AttrColumns    = "dataset.columns"
	AttrSteps      = "plan.steps"
	AttrVariable   = "variable.name"
	AttrPartition  = "partition.index"
	AttrPartitions = "partition.count"
	AttrWorkers    = "partition.workers"
)
