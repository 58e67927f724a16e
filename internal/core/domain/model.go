package domain

// Detection is a single object recognized by the detection service. Only Label is used to build reply text,
// Confidence and Box are carried along as reported.
type Detection struct {
	Label      string
	Confidence float64
	Box        [4]float64
}

// Media is an attachment on a mention.
type Media struct {
	Type      string
	URL       string
	SecureURL string
}

// Mention is an inbound post that references the bot account.
type Mention struct {
	ID         int64
	ScreenName string
	Text       string
	Media      []Media
}

// PhotoURL returns the URL of the first attached media, if any.
func (m Mention) PhotoURL() (string, bool) {
	if len(m.Media) == 0 {
		return "", false
	}

	first := m.Media[0]
	switch {
	case first.URL != "":
		return first.URL, true
	case first.SecureURL != "":
		return first.SecureURL, true
	default:
		return "", false
	}
}

// Post is an entry of the bot's own timeline.
type Post struct {
	ID                int64
	InReplyToStatusID int64
}

type Outcome string

const (
	OutcomeReplied  Outcome = "replied"
	OutcomeNoPhoto  Outcome = "no_photo"
	OutcomeFallback Outcome = "fallback"
	OutcomeFailed   Outcome = "failed"
)

// CycleReport summarizes a single pass over the mention feed.
type CycleReport struct {
	SinceID int64
	Fetched int
	Replied int
	NoPhoto int
	Failed  int
}
