package measure

import (
	"runtime"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/procfs"
)

// hostMetadata describes the machine a report was recorded on. Values /proc
// cannot provide are left out.
func hostMetadata() map[string]string {
	md := map[string]string{
		"host.os":   runtime.GOOS,
		"host.arch": runtime.GOARCH,
		"host.cpus": strconv.Itoa(runtime.NumCPU()),
	}

	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return md
	}
	if mi, err := fs.Meminfo(); err == nil && mi.MemTotalBytes != nil {
		md["host.mem_total"] = humanize.IBytes(*mi.MemTotalBytes)
	}
	if la, err := fs.LoadAvg(); err == nil {
		md["host.load1"] = strconv.FormatFloat(la.Load1, 'f', 2, 64)
	}
	return md
}
