package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// Metric names written by WriteLadderMetrics.
const (
	MetricAvgSize  = "ladder_avg_size_bytes"
	MetricAvgSSIM  = "ladder_avg_ssim_index"
	MetricChannels = "ladder_channels"
)

const (
	labelRung       = "rung"
	labelMetric     = "metric"
	metricValueSize = "size"
	metricValueSSIM = "ssim"
)

// LadderMetricFamilies converts set into gauge families, one sample per rung.
func LadderMetricFamilies(set LadderSet) []*dto.MetricFamily {
	return []*dto.MetricFamily{
		rungFamily(MetricAvgSize, "Average encoded chunk size per ladder rung, across channels.", set.Sizes),
		rungFamily(MetricAvgSSIM, "Average SSIM index per ladder rung, across channels.", set.SSIMs),
		{
			Name: proto.String(MetricChannels),
			Help: proto.String("Number of channels averaged into each ladder."),
			Type: dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{
				gauge(float64(set.SizeChannels), labelMetric, metricValueSize),
				gauge(float64(set.SSIMChannels), labelMetric, metricValueSSIM),
			},
		},
	}
}

func rungFamily(name, help string, ladder []float64) *dto.MetricFamily {
	mf := &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}
	for i, v := range ladder {
		mf.Metric = append(mf.Metric, gauge(v, labelRung, strconv.Itoa(i+1)))
	}
	return mf
}

func gauge(v float64, labelName, labelValue string) *dto.Metric {
	return &dto.Metric{
		Label: []*dto.LabelPair{{Name: proto.String(labelName), Value: proto.String(labelValue)}},
		Gauge: &dto.Gauge{Value: proto.Float64(v)},
	}
}

// WriteLadderMetrics writes set to w in the Prometheus text format.
func WriteLadderMetrics(w io.Writer, set LadderSet) error {
	for _, mf := range LadderMetricFamilies(set) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("export: write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteLadderMetricsFile writes set to path via a temp file and rename, so a
// collector never reads a half-written file.
func WriteLadderMetricsFile(path string, set LadderSet) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("export: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteLadderMetrics(tmp, set); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("export: chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("export: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("export: rename: %w", err)
	}
	return nil
}
