package stride

import "github.com/okian/gaitprep/internal/domain/model"

// FinalLabel collapses the per-sample activities of one stride into a single
// label. A uniform stride keeps its activity ("w2w"); otherwise the label is
// "<first>2<last>" built from the prefixes of the first and last sample only,
// so intermediate activities of a stride crossing three terrains are dropped.
func FinalLabel(activities []model.Activity) model.FinalLabel {
	if len(activities) == 0 {
		return model.FinalLabel(model.ActivityNone.String())
	}
	first, last := activities[0], activities[len(activities)-1]
	for _, a := range activities[1:] {
		if a != first {
			return model.FinalLabel(first.Prefix() + "2" + last.Prefix())
		}
	}
	return model.FinalLabel(first.String())
}
