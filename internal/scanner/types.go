package scanner

import "github.com/fenilsonani/stellar-clean/pkg/utils"

// ScanResult is the measurement of one (target, path) pair
type ScanResult struct {
	Target string `json:"target" yaml:"target"`
	Path   string `json:"path" yaml:"path"`
	Size   int64  `json:"size" yaml:"size"`
	Exists bool   `json:"exists" yaml:"exists"`
}

// ScanResults is the ordered output of a simulation
type ScanResults []ScanResult

// TotalSize sums the sizes of all results
func (r ScanResults) TotalSize() int64 {
	sizes := make([]int64, len(r))
	for i, res := range r {
		sizes[i] = res.Size
	}
	return utils.SumSizes(sizes)
}

// TargetTotal is the aggregate size of one target
type TargetTotal struct {
	Target string
	Paths  int
	Size   int64
}

// GroupByTarget totals results per target, in first-seen order
func (r ScanResults) GroupByTarget() []TargetTotal {
	var grouped []TargetTotal
	index := make(map[string]int)

	for _, res := range r {
		i, ok := index[res.Target]
		if !ok {
			i = len(grouped)
			index[res.Target] = i
			grouped = append(grouped, TargetTotal{Target: res.Target})
		}
		grouped[i].Paths++
		grouped[i].Size += res.Size
	}

	return grouped
}
