package notifications

import "fmt"

// Body renders the banner text for a plan entry. Immediate entries have no
// banner and get an empty body.
func Body(e PlanEntry) string {
	if e.IsImmediate || len(e.SampleNames) == 0 {
		return ""
	}
	first := e.SampleNames[0]
	switch {
	case e.VesselCount <= 1:
		return fmt.Sprintf("‘%s’ needs attention today.", first)
	case e.VesselCount == 2 && len(e.SampleNames) >= 2:
		return fmt.Sprintf("‘%s’ and ‘%s’ need attention today.", first, e.SampleNames[1])
	case e.VesselCount == 2:
		// the names were truncated or two plants share one
		return fmt.Sprintf("‘%s’ and 1 more plant need attention today.", first)
	default:
		return fmt.Sprintf("‘%s’ and %d more plants need attention today.", first, e.VesselCount-1)
	}
}
