package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSynth() *Synthesizer {
	return NewSynthesizer(Weights{Text: 0.7, Image: 0.2, Video: 0.1}, 0.7, 1)
}

func TestSeed(t *testing.T) {
	synth := newTestSynth()
	store := NewStore(10, 50)
	store.Seed(synth, 2)

	// ceil(2 * 1.5) = 3 profiles
	require.Len(t, store.profiles, 3)

	dialogs := store.Dialogs()
	require.Len(t, dialogs, 2)

	for _, d := range dialogs {
		require.NotEqual(t, d.ParticipantIDs[0], d.ParticipantIDs[1])
		for _, pid := range d.ParticipantIDs {
			_, err := store.GetProfile(pid)
			require.NoError(t, err)
		}

		log := store.messages[d.ID]
		require.Len(t, log, 1)
		assert.Equal(t, log[0], d.LastMessage)
		assert.Equal(t, log[0].CreatedAt, d.UpdatedAt)
		// Initial message is authored by the first participant.
		assert.Equal(t, d.ParticipantIDs[0], log[0].SenderID)
	}
}

func TestGetProfile(t *testing.T) {
	synth := newTestSynth()
	store := NewStore(10, 50)
	store.Seed(synth, 2)

	var seeded Profile
	for _, p := range store.profiles {
		seeded = p
		break
	}

	got, err := store.GetProfile(seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded, got)

	_, err = store.GetProfile("unknown-id")
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestAppendMessage(t *testing.T) {
	synth := newTestSynth()
	store := NewStore(10, 50)
	store.Seed(synth, 1)

	d := store.Dialogs()[0]
	msg := synth.Synthesize(d.ID, d.ParticipantIDs[1])
	msg.CreatedAt = d.UpdatedAt + 5

	require.NoError(t, store.AppendMessage(msg))

	updated := store.Dialogs()[0]
	assert.Equal(t, msg, updated.LastMessage)
	assert.Equal(t, msg.CreatedAt, updated.UpdatedAt)
	assert.Len(t, store.messages[d.ID], 2)
}

func TestAppendMessage_UnknownDialog(t *testing.T) {
	store := NewStore(10, 50)
	err := store.AppendMessage(Message{DialogID: "nope", Type: TypeText})
	require.ErrorIs(t, err, ErrDialogNotFound)
}

func TestListMessages_Pagination(t *testing.T) {
	synth := newTestSynth()
	store := NewStore(10, 50)
	store.Seed(synth, 1)
	d := store.Dialogs()[0]

	// Grow the log to 5 messages with increasing timestamps.
	ts := d.UpdatedAt
	for i := 0; i < 4; i++ {
		msg := synth.Synthesize(d.ID, d.ParticipantIDs[0])
		ts++
		msg.CreatedAt = ts
		require.NoError(t, store.AppendMessage(msg))
	}

	full := store.ListMessages(d.ID, 0, 5)
	require.Len(t, full.Items, 5)
	assert.Equal(t, 5, full.Total)
	assert.False(t, full.HasMore)
	for i := 1; i < len(full.Items); i++ {
		assert.GreaterOrEqual(t, full.Items[i-1].CreatedAt, full.Items[i].CreatedAt)
	}

	first := store.ListMessages(d.ID, 0, 2)
	require.Len(t, first.Items, 2)
	assert.True(t, first.HasMore)
	assert.Equal(t, full.Items[0], first.Items[0])

	past := store.ListMessages(d.ID, 5, 1)
	assert.Empty(t, past.Items)
	assert.Equal(t, 5, past.Total)
	assert.False(t, past.HasMore)
}

func TestListMessages_UnknownDialog(t *testing.T) {
	store := NewStore(10, 50)

	page := store.ListMessages("unknown", 0, 0)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Total)
	assert.False(t, page.HasMore)
}

func TestListMessages_LimitClamp(t *testing.T) {
	synth := newTestSynth()
	store := NewStore(2, 3)
	store.Seed(synth, 1)
	d := store.Dialogs()[0]

	for i := 0; i < 9; i++ {
		require.NoError(t, store.AppendMessage(synth.Synthesize(d.ID, d.ParticipantIDs[0])))
	}

	clamped := store.ListMessages(d.ID, 0, 10_000)
	assert.Len(t, clamped.Items, 3)
	assert.True(t, clamped.HasMore)

	defaulted := store.ListMessages(d.ID, 0, 0)
	assert.Len(t, defaulted.Items, 2)
}

func TestListDialogs(t *testing.T) {
	synth := newTestSynth()
	store := NewStore(10, 50)
	store.Seed(synth, 5)

	page := store.ListDialogs(0, 0, "")
	require.Len(t, page.Items, 5)
	assert.Equal(t, 5, page.Total)
	for i := 1; i < len(page.Items); i++ {
		assert.GreaterOrEqual(t, page.Items[i-1].UpdatedAt, page.Items[i].UpdatedAt)
	}
}

func TestListDialogs_ParticipantFilter(t *testing.T) {
	synth := newTestSynth()
	store := NewStore(10, 50)
	store.Seed(synth, 5)

	pid := store.Dialogs()[0].ParticipantIDs[0]
	page := store.ListDialogs(0, 0, pid)

	require.NotEmpty(t, page.Items)
	assert.Equal(t, len(page.Items), page.Total)
	for _, d := range page.Items {
		assert.True(t, d.HasParticipant(pid))
	}

	none := store.ListDialogs(0, 0, "nobody")
	assert.Empty(t, none.Items)
	assert.Equal(t, 0, none.Total)
}

func TestListDialogs_SortsByLatestActivity(t *testing.T) {
	synth := newTestSynth()
	store := NewStore(10, 50)
	store.Seed(synth, 3)

	dialogs := store.Dialogs()
	target := dialogs[2]
	msg := synth.Synthesize(target.ID, target.ParticipantIDs[0])

	latest := int64(0)
	for _, d := range dialogs {
		if d.UpdatedAt > latest {
			latest = d.UpdatedAt
		}
	}
	msg.CreatedAt = latest + 10
	require.NoError(t, store.AppendMessage(msg))

	page := store.ListDialogs(0, 0, "")
	assert.Equal(t, target.ID, page.Items[0].ID)
}
