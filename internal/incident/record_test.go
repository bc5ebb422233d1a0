package incident

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetEveryField(t *testing.T) {
	var r Record
	for _, f := range Fields() {
		require.NoError(t, r.Set(f, "v-"+string(f)))
	}
	for _, f := range Fields() {
		got, err := r.Get(f)
		require.NoError(t, err)
		assert.Equal(t, "v-"+string(f), got)
		assert.NotEmpty(t, f.Label())
	}
	for _, f := range Flags() {
		require.NoError(t, r.SetFlag(f, true))
		got, err := r.GetFlag(f)
		require.NoError(t, err)
		assert.True(t, got)
	}
}

func TestDecodeAcceptsEnvelope(t *testing.T) {
	r, err := Decode([]byte(`{"data":{"location":"KY-9","badge":"12"},"updatedAt":"2026-01-02T03:04:05Z"}`))
	require.NoError(t, err)
	assert.Equal(t, "KY-9", r.Location)
	assert.Equal(t, "12", r.Badge)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), r.UpdatedAt)
}

func TestDecodePlainMapping(t *testing.T) {
	in := Record{Agency: "KSP", SearchConducted: true, UpdatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	data, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in.Agency, out.Agency)
	assert.True(t, out.SearchConducted)
	assert.True(t, in.UpdatedAt.Equal(out.UpdatedAt))

	_, err = Decode([]byte(`{`))
	assert.Error(t, err)
}
