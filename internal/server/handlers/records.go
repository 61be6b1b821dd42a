package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
	"git.home.luguber.info/inful/svcerr/internal/logfields"
	"git.home.luguber.info/inful/svcerr/internal/observability"
	"git.home.luguber.info/inful/svcerr/internal/server/responses"
	"git.home.luguber.info/inful/svcerr/internal/sink"
)

// DefaultMaxBodyBytes bounds the size of an ingest request.
const DefaultMaxBodyBytes = 1 << 20

// RecordHandlers accepts error records over HTTP and forwards them to a sink.
type RecordHandlers struct {
	sink         sink.Sink
	maxBody      int64
	logger       *slog.Logger
	errorAdapter *errors.HTTPErrorAdapter
}

// NewRecordHandlers creates record handlers delivering to s.
func NewRecordHandlers(s sink.Sink, logger *slog.Logger) *RecordHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordHandlers{
		sink:         s,
		maxBody:      DefaultMaxBodyBytes,
		logger:       logger,
		errorAdapter: errors.NewHTTPErrorAdapter(logger),
	}
}

// HandleIngest accepts a single record or a JSON array of records. Records
// without a request id inherit the id of the ingest request.
func (h *RecordHandlers) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.errorAdapter.WriteErrorResponse(w, r, methodNotAllowed(r, http.MethodPost))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.New(errors.KindValidation).
			Field("body").
			Message("request body too large or unreadable").
			WithContext(r.Context()).
			Build())
		return
	}

	records, err := decodeRecords(body)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.New(errors.KindValidation).
			Field("body").
			Message(err.Error()).
			WithContext(r.Context()).
			Build())
		return
	}

	requestID := observability.GetContext(r.Context()).RequestID
	for i := range records {
		if records[i].RequestID == nil && requestID != "" {
			records[i].RequestID = &requestID
		}
		if err := h.sink.Emit(r.Context(), records[i]); err != nil {
			h.errorAdapter.WriteErrorResponse(w, r, errors.Wrap(err))
			return
		}
	}

	observability.NewLogBuilder(r.Context()).Logger(h.logger).
		Attrs(logfields.Count(len(records))).
		Debug("Ingested records")

	resp := &responses.IngestResponse{Status: "accepted", Accepted: len(records), RequestID: requestID}
	if err := writeJSON(w, http.StatusAccepted, resp); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, encodeFailure(r, err))
	}
}

// HandleCodes lists the known error codes and their severities.
func (h *RecordHandlers) HandleCodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorAdapter.WriteErrorResponse(w, r, methodNotAllowed(r, http.MethodGet))
		return
	}

	all := errors.Codes()
	resp := &responses.CodesResponse{Codes: make([]responses.CodeEntry, 0, len(all))}
	for _, c := range all {
		resp.Codes = append(resp.Codes, responses.CodeEntry{Code: string(c), Severity: c.Severity().String()})
	}

	if err := writeJSONPretty(w, r, http.StatusOK, resp); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, encodeFailure(r, err))
	}
}

type decodeError string

func (e decodeError) Error() string { return string(e) }

func decodeRecords(body []byte) ([]errors.Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, decodeError("request body is empty")
	}

	var records []errors.Record
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, decodeError("invalid record array: " + err.Error())
		}
	} else {
		var rec errors.Record
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return nil, decodeError("invalid record: " + err.Error())
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, decodeError("no records in request")
	}
	for i := range records {
		if err := canonicalize(&records[i]); err != nil {
			return nil, decodeError(fmt.Sprintf("record %d: %v", i, err))
		}
	}
	return records, nil
}

// canonicalize rejects unknown kinds and codes and derives severity from
// the code table, ignoring whatever severity the client sent.
func canonicalize(rec *errors.Record) error {
	if rec.Kind == "" || rec.Code == "" {
		return decodeError("record requires kind and code")
	}
	kind, err := errors.ParseKind(rec.Kind)
	if err != nil {
		return err
	}
	code, err := errors.ParseCode(string(rec.Code))
	if err != nil {
		return err
	}
	rec.Kind = kind.String()
	rec.Code = code
	rec.Severity = code.Severity()
	return nil
}
