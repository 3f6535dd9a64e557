package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/EventStore/EventStore-Client-Go/v4/esdb"
	"github.com/google/uuid"

	"github.com/evidify/platform/internal/shared/errors"
)

// KurrentStore persists session chains in KurrentDB, one stream per session.
// The chain hash travels inside the event body; KurrentDB's own revision
// numbers provide optimistic concurrency on top.
type KurrentStore struct {
	db *esdb.Client
}

// NewKurrentStore connects to KurrentDB and verifies the connection.
func NewKurrentStore(ctx context.Context, connectionString string) (*KurrentStore, error) {
	settings, err := esdb.ParseConnectionString(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	db, err := esdb.NewClient(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create event store client: %w", err)
	}

	store := &KurrentStore{db: db}
	if err := store.Health(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func streamName(sessionID string) string {
	return "diagsession-" + sessionID
}

// Append stores one chain entry. The expected revision is derived from the
// entry's sequence, so a concurrent writer loses with a conflict instead of
// forking the chain.
func (s *KurrentStore) Append(ctx context.Context, e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "failed to marshal ledger entry")
	}

	eventID, err := uuid.Parse(e.ID)
	if err != nil {
		return errors.Wrap(err, "invalid entry id")
	}

	var options esdb.AppendToStreamOptions
	if e.Sequence == 1 {
		options.ExpectedRevision = esdb.NoStream{}
	} else {
		options.ExpectedRevision = esdb.Revision(uint64(e.Sequence - 2))
	}

	_, err = s.db.AppendToStream(ctx, streamName(e.SessionID), options, esdb.EventData{
		EventID:     eventID,
		EventType:   e.Type,
		ContentType: esdb.ContentTypeJson,
		Data:        data,
	})
	if err != nil {
		if esdbErr, ok := esdb.FromError(err); ok &&
			esdbErr.Code() == esdb.ErrorCodeWrongExpectedVersion {
			return errors.Conflict("out-of-order append")
		}
		return errors.Wrap(err, "failed to append ledger entry")
	}
	return nil
}

// List reads a session chain front to back.
func (s *KurrentStore) List(ctx context.Context, sessionID string) ([]Entry, error) {
	stream, err := s.db.ReadStream(ctx, streamName(sessionID), esdb.ReadStreamOptions{
		From:      esdb.Start{},
		Direction: esdb.Forwards,
	}, 4096)
	if err != nil {
		if esdbErr, ok := esdb.FromError(err); ok &&
			esdbErr.Code() == esdb.ErrorCodeResourceNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read session stream")
	}
	defer stream.Close()

	var entries []Entry
	for {
		resolved, err := stream.Recv()
		if err != nil {
			if esdbErr, ok := esdb.FromError(err); ok &&
				esdbErr.Code() == esdb.ErrorCodeResourceNotFound {
				return nil, nil
			}
			break // end of stream
		}

		var e Entry
		if err := json.Unmarshal(resolved.Event.Data, &e); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal ledger entry")
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Health verifies the connection is alive.
func (s *KurrentStore) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	stream, err := s.db.ReadStream(ctx, "$streams", esdb.ReadStreamOptions{
		From:      esdb.Start{},
		Direction: esdb.Forwards,
	}, 1)
	if err != nil {
		return fmt.Errorf("event store health check failed: %w", err)
	}
	defer stream.Close()
	return nil
}

// Close closes the client connection.
func (s *KurrentStore) Close() error {
	return s.db.Close()
}
