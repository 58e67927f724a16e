package port

import "time"

type Recorder interface {
	MentionHandled(outcome string)
	MentionFailed(kind string)
	DetectionObserved(d time.Duration)
	CycleCompleted(mentions int)
}
