package chat

import (
	"math/rand/v2"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// sampleVideoURL is served for every video message; only the metadata around
// it is randomized.
const sampleVideoURL = "http://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4"

const maxVideoDuration = 300 // seconds

// Weights is the categorical distribution over message types. The walk in
// Synthesize enumerates them in declaration order: text, image, video.
type Weights struct {
	Text  float64
	Image float64
	Video float64
}

// Synthesizer fabricates profiles and messages. It never touches a store;
// its only side effect is consuming randomness.
type Synthesizer struct {
	weights      Weights
	deliveryRate float64
	rnd          *rand.Rand
	faker        *gofakeit.Faker
	now          func() int64
}

// NewSynthesizer builds a synthesizer from a fixed seed. The same seed
// replays the same traffic.
func NewSynthesizer(weights Weights, deliveryRate float64, seed uint64) *Synthesizer {
	return &Synthesizer{
		weights:      weights,
		deliveryRate: deliveryRate,
		rnd:          rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		faker:        gofakeit.New(int64(seed)),
		now:          func() int64 { return time.Now().UnixMilli() },
	}
}

// NewProfile fabricates one profile with a fresh id.
func (s *Synthesizer) NewProfile() Profile {
	return Profile{
		ID:     uuid.NewString(),
		Name:   s.faker.Name(),
		Avatar: s.faker.ImageURL(200, 200),
	}
}

// Synthesize produces one message of a randomly weighted type. The draw
// walks the weight table accumulating a running sum and selects the first
// type whose cumulative sum reaches the draw; if rounding leaves the draw
// above the final sum, the last enumerated type wins.
func (s *Synthesizer) Synthesize(dialogID, senderID string) Message {
	draw := s.rnd.Float64()
	msgType := TypeVideo
	cumulative := 0.0
	for _, entry := range []struct {
		t MessageType
		w float64
	}{
		{TypeText, s.weights.Text},
		{TypeImage, s.weights.Image},
		{TypeVideo, s.weights.Video},
	} {
		cumulative += entry.w
		if draw <= cumulative {
			msgType = entry.t
			break
		}
	}

	msg := Message{
		ID:        uuid.NewString(),
		DialogID:  dialogID,
		SenderID:  senderID,
		CreatedAt: s.now(),
		Type:      msgType,
		Delivered: s.rnd.Float64() < s.deliveryRate,
	}

	switch msgType {
	case TypeText:
		msg.Content = s.faker.Sentence(8)
	case TypeImage:
		msg.ImageURL = s.faker.ImageURL(640, 480)
		if s.rnd.Float64() > 0.5 {
			msg.Caption = s.faker.Sentence(6)
		}
	case TypeVideo:
		msg.VideoURL = sampleVideoURL
		msg.ThumbnailURL = s.faker.ImageURL(640, 480)
		msg.Duration = s.rnd.IntN(maxVideoDuration)
	}
	return msg
}

// PickIndex draws a uniform index in [0, n). The generator uses it to choose
// a sender between a dialog's two participants.
func (s *Synthesizer) PickIndex(n int) int {
	return s.rnd.IntN(n)
}
