// Package export publishes averaged ladders in machine-readable form.
//
// WriteLadderMetrics / WriteLadderMetricsFile emit Prometheus text exposition
// gauges (one sample per rung, labelled rung="N"), suitable for the
// node_exporter textfile collector.
//
// RedisPublisher stores each ladder as a JSON array under <prefix>:size and
// <prefix>:ssim so that ABR servers can load the static ladder at startup.
package export

// LadderSet is a pair of averaged ladders plus the channel count behind each.
type LadderSet struct {
	Sizes        []float64
	SSIMs        []float64
	SizeChannels int
	SSIMChannels int
}
