package analytics

import (
	"sort"

	"dealdesk/internal/domain/entity"
)

// TimelineCap bounds the number of events returned in a snapshot's
// timeline so response size stays flat as the log grows.
const TimelineCap = 50

// Score weights. Each dimension is capped before summing so no single one
// can push the total past 100: views up to 40, dwell time up to 40,
// section breadth up to 20.
const (
	pointsPerView    = 4
	maxViewPoints    = 40
	secondsPerPoint  = 30
	maxTimePoints    = 40
	pointsPerSection = 5
	maxSectionPoints = 20
)

// Aggregate computes an engagement snapshot from the full event log of one
// document. It is a pure function: no accumulator state, so two calls over
// an unchanged log produce identical snapshots, and the input order never
// affects anything but the timeline, which is always sorted here.
func Aggregate(events []entity.ViewEvent) entity.EngagementSnapshot {
	snapshot := entity.EngagementSnapshot{
		TotalViews:     len(events),
		ViewsBySection: map[string]int{},
	}

	viewers := map[string]struct{}{}
	for _, ev := range events {
		viewers[ev.ViewerID] = struct{}{}
		snapshot.TimeSpentViewing += ev.TimeSpentSeconds
		if ev.Section != "" {
			snapshot.ViewsBySection[ev.Section]++
		}
	}
	snapshot.UniqueViews = len(viewers)
	snapshot.EngagementScore = score(len(events), snapshot.TimeSpentViewing, len(snapshot.ViewsBySection))
	snapshot.ViewTimeline = timeline(events)

	return snapshot
}

func score(views, totalSeconds, sections int) int {
	if views == 0 {
		return 0
	}
	return capped(views*pointsPerView, maxViewPoints) +
		capped(totalSeconds/secondsPerPoint, maxTimePoints) +
		capped(sections*pointsPerSection, maxSectionPoints)
}

func capped(v, max int) int {
	if v > max {
		return max
	}
	return v
}

// timeline returns events newest-first, truncated to TimelineCap.
// The sort is stable so truncation never reorders retained events.
func timeline(events []entity.ViewEvent) []entity.ViewEvent {
	ordered := make([]entity.ViewEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})
	if len(ordered) > TimelineCap {
		ordered = ordered[:TimelineCap]
	}
	return ordered
}
