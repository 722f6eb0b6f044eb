package diag

import (
	"github.com/google/pprof/profile"

	"github.com/thanhtoan23/OS-Assignment/mem"
)

/// FragmentationProfile builds a pprof sample of dev's current free-frame
/// count, one sample per call. Collecting it periodically and opening the
/// resulting profile in `go tool pprof` turns RAM fragmentation over a
/// run into a flame-graph-style view for free.
func FragmentationProfile(name string, dev *mem.Device) *profile.Profile {
	fn := &profile.Function{ID: 1, Name: name}
	loc := &profile.Location{ID: 1, Line: []profile.Line{{Function: fn, Line: 1}}}

	free := dev.FreeFrames()
	return &profile.Profile{
		SampleType: []*profile.ValueType{{Type: "free_frames", Unit: "count"}},
		Function:   []*profile.Function{fn},
		Location:   []*profile.Location{loc},
		Sample: []*profile.Sample{{
			Location: []*profile.Location{loc},
			Value:    []int64{int64(len(free))},
		}},
	}
}

/// MergeFragmentationProfiles folds a series of per-tick fragmentation
/// samples into one profile, one sample per call, so a run's whole
/// fragmentation history can be written out as a single .pb.gz.
func MergeFragmentationProfiles(profiles ...*profile.Profile) (*profile.Profile, error) {
	if len(profiles) == 0 {
		return &profile.Profile{}, nil
	}
	return profile.Merge(profiles)
}
