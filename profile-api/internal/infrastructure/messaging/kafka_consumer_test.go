package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/entities"
	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
)

func TestDecodeEvent(t *testing.T) {
	t.Run("upsert", func(t *testing.T) {
		event, err := decodeEvent([]byte(`{
			"op": "upsert",
			"record": {"dataset": "ward_demographics", "unit_key": "4",
				"fields": {"ward_number": 4, "male_population": 1200}}
		}`))
		require.NoError(t, err)
		assert.Equal(t, entities.OpUpsert, event.Op)
		assert.Equal(t, "kafka", event.Record.Source)
		assert.Equal(t, json.Number("1200"), event.Record.Fields["male_population"])
	})

	t.Run("op defaults to upsert", func(t *testing.T) {
		event, err := decodeEvent([]byte(`{"record": {"dataset": "religion_population", "unit_key": "1:HINDU", "fields": {"wardNumber": 1, "religionType": "HINDU", "population": 10}, "source": "fetcher"}}`))
		require.NoError(t, err)
		assert.Equal(t, entities.OpUpsert, event.Op)
		assert.Equal(t, "fetcher", event.Record.Source)
	})

	t.Run("delete needs no fields", func(t *testing.T) {
		_, err := decodeEvent([]byte(`{"op": "delete", "record": {"dataset": "ward_irrigated_area", "unit_key": "2"}}`))
		assert.NoError(t, err)
	})

	t.Run("rejects garbage and unknown datasets", func(t *testing.T) {
		_, err := decodeEvent([]byte(`not json`))
		assert.Error(t, err)

		_, err = decodeEvent([]byte(`{"op": "upsert", "record": {"dataset": "rainfall", "unit_key": "1", "fields": {"mm": 3}}}`))
		assert.ErrorIs(t, err, entities.ErrUnknownDataset)
	})

	t.Run("rejects a unit key the fields do not name", func(t *testing.T) {
		_, err := decodeEvent([]byte(`{"record": {"dataset": "ward_demographics", "unit_key": "5", "fields": {"ward_number": 3}}}`))
		var verr entities.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "unit_key", verr.Field)
	})
}

func TestConsumerHandlerHandle(t *testing.T) {
	valid := []byte(`{"op": "upsert", "record": {"dataset": "ward_demographics", "unit_key": "1", "fields": {"ward_number": 1}}}`)

	var seen []entities.RecordEvent
	h := &consumerHandler{
		handler: func(_ context.Context, e entities.RecordEvent) error {
			seen = append(seen, e)
			return nil
		},
		logger: logger.Nop(),
	}
	assert.True(t, h.handle(context.Background(), &sarama.ConsumerMessage{Value: valid}))
	assert.True(t, h.handle(context.Background(), &sarama.ConsumerMessage{Value: []byte("{")}))
	assert.Len(t, seen, 1)

	failing := &consumerHandler{
		handler: func(context.Context, entities.RecordEvent) error { return errors.New("db down") },
		logger:  logger.Nop(),
	}
	assert.False(t, failing.handle(context.Background(), &sarama.ConsumerMessage{Value: valid}))
}
