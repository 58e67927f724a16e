package domain

import (
	"fmt"
	"slices"
	"strings"
)

const (
	nothingFound       = "Sorry @%s, I have found nothing. Try with other image."
	photoNotFound      = "Sorry @%s, I could not find the photo."
	serviceUnavailable = "Sorry @%s, the detection service is unavailable. Try again later."
	contentsHeader     = "This image contains:"
)

// labels that read the same in singular and plural
var irregularLabels = []string{"skis", "scissors"}

// PluralizeLabel returns a list line for a label seen count times, e.g. "\n2 cats". Callers guarantee count >= 1.
func PluralizeLabel(label string, count int) string {
	return fmt.Sprintf("\n%d %s", count, pluralForm(label, count))
}

func pluralForm(label string, count int) string {
	switch {
	case slices.Contains(irregularLabels, label):
		return label
	case count > 1 && strings.HasSuffix(label, "s"):
		return label + "es"
	case count > 1:
		return label + "s"
	default:
		return label
	}
}

// ComposeReply builds the reply text for the given detections, listing every distinct label once in ascending
// order together with the number of times it was detected.
func ComposeReply(detections []Detection, screenName string) string {
	if len(detections) == 0 {
		return fmt.Sprintf(nothingFound, screenName)
	}

	counts := make(map[string]int)
	for _, d := range detections {
		counts[d.Label]++
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	slices.Sort(labels)

	var sb strings.Builder
	sb.WriteString("@" + screenName + " " + contentsHeader)
	for _, label := range labels {
		sb.WriteString(PluralizeLabel(label, counts[label]))
	}

	return sb.String()
}

// PhotoNotFoundReply is sent when a mention carries no photo.
func PhotoNotFoundReply(screenName string) string {
	return fmt.Sprintf(photoNotFound, screenName)
}

// ServiceUnavailableReply is sent when the detection service does not answer in time.
func ServiceUnavailableReply(screenName string) string {
	return fmt.Sprintf(serviceUnavailable, screenName)
}
