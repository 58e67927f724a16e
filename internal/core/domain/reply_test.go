package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func detections(labels ...string) []Detection {
	d := make([]Detection, 0, len(labels))
	for i, label := range labels {
		d = append(d, Detection{Label: label, Confidence: 0.9, Box: [4]float64{0, float64(10 - i), 0, float64(10 - i)}})
	}
	return d
}

func TestPluralizeLabel(t *testing.T) {
	type TestCase struct {
		description string
		label       string
		count       int
		want        string
	}

	testCases := []TestCase{
		{
			description: "regular plural",
			label:       "cat",
			count:       2,
			want:        "\n2 cats",
		},
		{
			description: "singular unchanged",
			label:       "cat",
			count:       1,
			want:        "\n1 cat",
		},
		{
			description: "irregular skis",
			label:       "skis",
			count:       2,
			want:        "\n2 skis",
		},
		{
			description: "irregular scissors",
			label:       "scissors",
			count:       5,
			want:        "\n5 scissors",
		},
		{
			description: "singular ending with s",
			label:       "bus",
			count:       1,
			want:        "\n1 bus",
		},
		{
			description: "plural ending with s",
			label:       "bus",
			count:       5,
			want:        "\n5 buses",
		},
		{
			description: "multi word label",
			label:       "traffic light",
			count:       3,
			want:        "\n3 traffic lights",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			got := PluralizeLabel(testCase.label, testCase.count)

			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestPluralFormSingularIsIdentity(t *testing.T) {
	for _, label := range []string{"cat", "bus", "skis", "scissors", "person"} {
		assert.Equal(t, label, pluralForm(label, 1))
	}
}

func TestComposeReply(t *testing.T) {
	type TestCase struct {
		description string
		detections  []Detection
		screenName  string
		want        string
	}

	testCases := []TestCase{
		{
			description: "duplicates are counted",
			detections:  detections("cat", "cat", "dog"),
			screenName:  "username",
			want:        "@username This image contains:\n2 cats\n1 dog",
		},
		{
			description: "labels sorted regardless of input order",
			detections:  detections("dog", "cat", "dog"),
			screenName:  "username",
			want:        "@username This image contains:\n1 cat\n2 dogs",
		},
		{
			description: "irregular labels",
			detections:  detections("skis", "scissors", "dog"),
			screenName:  "username",
			want:        "@username This image contains:\n1 dog\n1 scissors\n1 skis",
		},
		{
			description: "nothing detected",
			detections:  []Detection{},
			screenName:  "username",
			want:        "Sorry @username, I have found nothing. Try with other image.",
		},
		{
			description: "nil detections",
			detections:  nil,
			screenName:  "someone",
			want:        "Sorry @someone, I have found nothing. Try with other image.",
		},
		{
			description: "missing confidence and box are ignored",
			detections:  []Detection{{Label: "bus"}, {Label: "bus"}},
			screenName:  "username",
			want:        "@username This image contains:\n2 buses",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			got := ComposeReply(testCase.detections, testCase.screenName)

			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestComposeReplyOneLinePerDistinctLabel(t *testing.T) {
	got := ComposeReply(detections("person", "car", "person", "car", "person", "bus"), "bob")

	assert.True(t, strings.HasPrefix(got, "@bob This image contains:"))

	lines := strings.Split(got, "\n")[1:]
	assert.Equal(t, []string{"1 bus", "2 cars", "3 persons"}, lines)
}

func TestFixedReplies(t *testing.T) {
	assert.Equal(t, "Sorry @bob, I could not find the photo.", PhotoNotFoundReply("bob"))
	assert.Equal(t, "Sorry @bob, the detection service is unavailable. Try again later.",
		ServiceUnavailableReply("bob"))
}
