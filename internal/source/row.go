package source

// Row is one record of one tabular source, keyed by the (flattened) header
// name. Rows are transient: the aggregator consumes them once per load cycle.
type Row map[string]string
