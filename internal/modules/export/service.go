package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/reinsim/internal/domain"
	"github.com/aristath/reinsim/internal/events"
)

// ErrUploadDisabled is returned by Upload when no object store is configured
var ErrUploadDisabled = errors.New("export uploads are not configured")

// EventEmitter publishes export events
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
}

// Recorder records export metrics
type Recorder interface {
	ObserveExport(format string, destination string, err error)
}

// Payload is an encoded run ready to be served or uploaded
type Payload struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Exporter encodes runs and uploads them to the object store
type Exporter struct {
	store    ObjectStore
	prefix   string
	events   EventEmitter
	recorder Recorder
	log      zerolog.Logger
}

// NewExporter creates an exporter. store may be nil, in which case only
// local encoding is available.
func NewExporter(store ObjectStore, prefix string, log zerolog.Logger) *Exporter {
	return &Exporter{
		store:  store,
		prefix: strings.Trim(prefix, "/"),
		log:    log.With().Str("service", "export").Logger(),
	}
}

// SetEventEmitter wires the event manager
func (e *Exporter) SetEventEmitter(emitter EventEmitter) {
	e.events = emitter
}

// SetRecorder wires the metrics recorder
func (e *Exporter) SetRecorder(recorder Recorder) {
	e.recorder = recorder
}

// UploadsEnabled reports whether an object store is configured
func (e *Exporter) UploadsEnabled() bool {
	return e.store != nil
}

// Encode serializes run in the given format
func (e *Exporter) Encode(run *domain.Run, format Format) (Payload, error) {
	payload, err := encode(run, format)
	e.observe(format, "download", err)
	if err != nil {
		return Payload{}, err
	}

	if e.events != nil {
		e.events.EmitTyped("export", &events.RunExportedData{
			RunID:  run.ID,
			Format: string(format),
			Bytes:  len(payload.Data),
		})
	}
	return payload, nil
}

// ObjectKey returns the key a run is uploaded under:
// <prefix>/<run id>/simulation_results.<ext>
func (e *Exporter) ObjectKey(runID string, format Format) string {
	if e.prefix == "" {
		return path.Join(runID, format.Filename())
	}
	return path.Join(e.prefix, runID, format.Filename())
}

// Upload encodes run and stores it in the object store, returning the key
func (e *Exporter) Upload(ctx context.Context, run *domain.Run, format Format) (string, error) {
	if e.store == nil {
		return "", ErrUploadDisabled
	}

	payload, err := encode(run, format)
	if err != nil {
		e.observe(format, "upload", err)
		return "", err
	}

	key := e.ObjectKey(run.ID, format)
	err = e.store.Upload(ctx, key, bytes.NewReader(payload.Data), int64(len(payload.Data)), payload.ContentType)
	e.observe(format, "upload", err)
	if err != nil {
		e.log.Error().Err(err).Str("run_id", run.ID).Str("key", key).Msg("Export upload failed")
		return "", fmt.Errorf("failed to upload run %s: %w", run.ID, err)
	}

	e.log.Info().
		Str("run_id", run.ID).
		Str("key", key).
		Int("size_bytes", len(payload.Data)).
		Msg("Run uploaded")

	if e.events != nil {
		e.events.EmitTyped("export", &events.RunUploadedData{
			RunID:  run.ID,
			Format: string(format),
			Key:    key,
		})
	}
	return key, nil
}

// ListUploads lists the uploaded exports of a run
func (e *Exporter) ListUploads(ctx context.Context, runID string) ([]ObjectInfo, error) {
	if e.store == nil {
		return nil, ErrUploadDisabled
	}
	prefix := runID + "/"
	if e.prefix != "" {
		prefix = e.prefix + "/" + prefix
	}
	return e.store.List(ctx, prefix)
}

// DeleteUploads removes every uploaded export of a run and returns how many
// objects were deleted. Without an object store there is nothing to delete.
func (e *Exporter) DeleteUploads(ctx context.Context, runID string) (int, error) {
	if e.store == nil {
		return 0, nil
	}

	objects, err := e.ListUploads(ctx, runID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, obj := range objects {
		if err := e.store.Delete(ctx, obj.Key); err != nil {
			return deleted, fmt.Errorf("failed to delete uploads of run %s: %w", runID, err)
		}
		deleted++
	}
	return deleted, nil
}

func (e *Exporter) observe(format Format, destination string, err error) {
	if e.recorder != nil {
		e.recorder.ObserveExport(string(format), destination, err)
	}
}

func encode(run *domain.Run, format Format) (Payload, error) {
	if run == nil {
		return Payload{}, fmt.Errorf("run is nil")
	}

	var buf bytes.Buffer
	switch format {
	case FormatCSV:
		if err := WriteCSV(&buf, run.Series); err != nil {
			return Payload{}, err
		}
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(NewDocument(run)); err != nil {
			return Payload{}, fmt.Errorf("failed to encode json: %w", err)
		}
	case FormatMsgpack:
		data, err := msgpack.Marshal(NewDocument(run))
		if err != nil {
			return Payload{}, fmt.Errorf("failed to encode msgpack: %w", err)
		}
		buf.Write(data)
	default:
		return Payload{}, fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}

	return Payload{
		Data:        buf.Bytes(),
		ContentType: format.ContentType(),
		Filename:    format.Filename(),
	}, nil
}
