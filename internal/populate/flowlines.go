package populate

import (
	"sort"

	"casegen/internal/catalog"
	"casegen/internal/topology"
)

type FlowlineCopy struct {
	Copied  []string
	Missing []string
}

// CopyFlowlines copies every flowline parameter of src onto the flowline of
// the same name in dst. Flowlines dst lacks, or carries under another type,
// are listed in Missing. Parameters dst has and src does not are kept.
func CopyFlowlines(src, dst *topology.Model) (*FlowlineCopy, error) {
	out := &FlowlineCopy{}
	for _, c := range src.Components {
		if c.Type != catalog.Flowline {
			continue
		}
		target, ok := dst.Component(c.Name)
		if !ok || target.Type != catalog.Flowline {
			out.Missing = append(out.Missing, c.Name)
			continue
		}

		params := make([]string, 0, len(c.Parameters))
		for p := range c.Parameters {
			params = append(params, p)
		}
		sort.Strings(params)
		for _, p := range params {
			key, _ := parameterKey(target, p)
			if err := dst.SetParameter(c.Name, key, c.Parameters[p]); err != nil {
				return nil, err
			}
		}
		out.Copied = append(out.Copied, c.Name)
	}
	return out, nil
}
