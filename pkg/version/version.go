package version

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const UnreleasedVersion = "dev"

// Version is the current git version of the code.  It is filled in by the build using
// -ldflags "-X github.com/zf1976/pancli/pkg/version.Version=...".
var Version = UnreleasedVersion

var buildInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "pancli_build_info",
		Help: "Always 1, labelled by the running version",
	},
	[]string{"version", "go_version"},
)

// Register publishes the running version as a metric.
func Register() {
	buildInfo.WithLabelValues(Version, runtime.Version()).Set(1)
}

func IsReleased() bool {
	return Version != UnreleasedVersion
}
